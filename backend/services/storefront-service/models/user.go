package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a registered customer or back-office operator. Bonus is the loyalty
// point balance and never goes negative.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	Address      string    `gorm:"type:text" json:"address"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	Bonus        int64     `gorm:"not null;check:chk_users_bonus_non_negative,bonus >= 0" json:"bonus"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Cart    *Cart    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Cards   []Card   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders  []Order  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews []Review `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
