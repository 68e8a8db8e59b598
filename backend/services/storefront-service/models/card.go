package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card is a stored-value payment instrument owned by one user.
type Card struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CardNumber string          `gorm:"type:varchar(19);not null" json:"-"`
	Balance    decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_cards_balance_non_negative,balance >= 0" json:"balance"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// MaskedNumber keeps only the last four digits.
func (c Card) MaskedNumber() string {
	digits := strings.ReplaceAll(c.CardNumber, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func (c Card) MarshalJSON() ([]byte, error) {
	type alias Card
	return json.Marshal(struct {
		alias
		CardNumber string `json:"card_number"`
	}{alias: alias(c), CardNumber: c.MaskedNumber()})
}
