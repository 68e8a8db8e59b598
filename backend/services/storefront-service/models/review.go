package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusUnverified ReviewStatus = "unverified"
	ReviewStatusPublished  ReviewStatus = "published"
)

func (s ReviewStatus) Valid() bool {
	return s == ReviewStatusUnverified || s == ReviewStatusPublished
}

// Review is a store review. UserID is nil for guests and for authors whose
// account was deleted.
type Review struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    *uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	Rating    int          `gorm:"not null;check:chk_reviews_rating_range,rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string       `gorm:"type:text;not null" json:"comment"`
	Status    ReviewStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// ReviewView adds the author display name; guests show as "Guest".
type ReviewView struct {
	ID         uuid.UUID    `json:"id"`
	UserID     *uuid.UUID   `json:"user_id"`
	AuthorName string       `json:"author_name"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment"`
	Status     ReviewStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}
