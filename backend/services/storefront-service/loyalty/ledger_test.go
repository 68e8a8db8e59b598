package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeRedemptionWithinLimits(t *testing.T) {
	q, err := Compute(dec("50.00"), 100, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(500), q.MaxRedeemable)
	assert.Equal(t, int64(100), q.PointsRedeemed)
	assert.True(t, dec("10.00").Equal(q.Discount), q.Discount.String())
	assert.True(t, dec("40.00").Equal(q.FinalAmount), q.FinalAmount.String())
	assert.Equal(t, int64(100), q.PointsEarned)
	assert.Equal(t, int64(100), q.BalanceAfter)
}

func TestComputeRejectsOverOrderLimit(t *testing.T) {
	_, err := Compute(dec("5.00"), 1000, 1000)
	assert.ErrorIs(t, err, ErrBonusOverLimit)
}

func TestComputeRejectsOverBalance(t *testing.T) {
	_, err := Compute(dec("100.00"), 300, 299)
	assert.ErrorIs(t, err, ErrInsufficientBonus)
}

func TestComputeRejectsNegative(t *testing.T) {
	_, err := Compute(dec("10.00"), -1, 100)
	assert.ErrorIs(t, err, ErrNegativeRedemption)

	_, err = Compute(dec("-1.00"), 0, 100)
	assert.ErrorIs(t, err, ErrNegativeSubtotal)
}

func TestComputeFullRedemptionFloorsAtZero(t *testing.T) {
	q, err := Compute(dec("12.34"), 123, 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(123), q.MaxRedeemable)
	assert.True(t, dec("0.04").Equal(q.FinalAmount), q.FinalAmount.String())
	assert.False(t, q.FinalAmount.IsNegative())
}

func TestEarnedRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"0.00":   0,
		"0.25":   1,  // 0.5
		"0.24":   0,  // 0.48
		"1.99":   4,  // 3.98
		"100.00": 200,
		"33.33":  67, // 66.66
	}
	for subtotal, want := range cases {
		assert.Equal(t, want, Earned(dec(subtotal)), subtotal)
	}
}

func TestMaxRedeemableFloors(t *testing.T) {
	assert.Equal(t, int64(199), MaxRedeemable(dec("19.99")))
	assert.Equal(t, int64(0), MaxRedeemable(dec("0.09")))
	assert.Equal(t, int64(0), MaxRedeemable(dec("-5")))
}

func TestBalanceNeverNegative(t *testing.T) {
	for _, subtotal := range []string{"0.01", "1.00", "7.77", "1000.00"} {
		for _, balance := range []int64{0, 1, 50, 10000} {
			limit := MaxRedeemable(dec(subtotal))
			req := limit
			if balance < req {
				req = balance
			}
			q, err := Compute(dec(subtotal), req, balance)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, q.BalanceAfter, int64(0))
			assert.False(t, q.FinalAmount.IsNegative())
		}
	}
}
