// Package loyalty holds the bonus-point arithmetic shared by the checkout
// preview and the checkout commit.
package loyalty

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// PointValue is the currency value of one redeemed point.
	PointValue = decimal.RequireFromString("0.10")
	// CashbackRate is the share of the pre-discount subtotal returned as points.
	CashbackRate = decimal.RequireFromString("0.20")

	pointsPerUnit = decimal.NewFromInt(10)
)

var (
	ErrNegativeRedemption = errors.New("bonus points to redeem must not be negative")
	ErrBonusOverLimit     = errors.New("bonus points exceed the order limit")
	ErrInsufficientBonus  = errors.New("bonus points exceed the available balance")
	ErrNegativeSubtotal   = errors.New("subtotal must not be negative")
)

// Quote is the result of applying a redemption to a subtotal.
type Quote struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	MaxRedeemable  int64           `json:"max_redeemable"`
	PointsRedeemed int64           `json:"points_redeemed"`
	Discount       decimal.Decimal `json:"discount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	PointsEarned   int64           `json:"points_earned"`
	BalanceBefore  int64           `json:"balance_before"`
	BalanceAfter   int64           `json:"balance_after"`
}

// MaxRedeemable is floor(subtotal x 10): points can cover at most the whole subtotal.
func MaxRedeemable(subtotal decimal.Decimal) int64 {
	if subtotal.IsNegative() {
		return 0
	}
	return subtotal.Mul(pointsPerUnit).Floor().IntPart()
}

// Earned is round(subtotal x 0.2 x 10), half away from zero, always on the
// pre-discount subtotal.
func Earned(subtotal decimal.Decimal) int64 {
	if subtotal.IsNegative() {
		return 0
	}
	return subtotal.Mul(CashbackRate).Mul(pointsPerUnit).Round(0).IntPart()
}

// Discount converts points to currency.
func Discount(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).Mul(PointValue)
}

// Compute validates the requested redemption against the order limit and the
// user's balance and prices the order. A request above either bound is rejected,
// never clamped.
func Compute(subtotal decimal.Decimal, requested, balance int64) (Quote, error) {
	if subtotal.IsNegative() {
		return Quote{}, ErrNegativeSubtotal
	}
	if requested < 0 {
		return Quote{}, ErrNegativeRedemption
	}

	limit := MaxRedeemable(subtotal)
	if requested > limit {
		return Quote{}, fmt.Errorf("%w: requested %d, max %d", ErrBonusOverLimit, requested, limit)
	}
	if requested > balance {
		return Quote{}, fmt.Errorf("%w: requested %d, balance %d", ErrInsufficientBonus, requested, balance)
	}

	discount := Discount(requested)
	final := subtotal.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	earned := Earned(subtotal)

	return Quote{
		Subtotal:       subtotal,
		MaxRedeemable:  limit,
		PointsRedeemed: requested,
		Discount:       discount,
		FinalAmount:    final,
		PointsEarned:   earned,
		BalanceBefore:  balance,
		BalanceAfter:   balance + earned - requested,
	}, nil
}
