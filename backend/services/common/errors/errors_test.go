package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	cause := stderrors.New("update returned 0 rows")
	err := fmt.Errorf("debit card: %w", apperrors.ErrInsufficientFunds.Wrap(cause))

	assert.True(t, stderrors.Is(err, apperrors.ErrInsufficientFunds))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, stderrors.Is(err, apperrors.ErrInsufficientStock))
	assert.Nil(t, apperrors.ErrInsufficientFunds.Err, "sentinel must not be mutated")
}

func TestWithMessage(t *testing.T) {
	err := apperrors.ErrNotFound.WithMessage("order %s not found", "abc")

	assert.Equal(t, "order abc not found", err.Message)
	assert.Equal(t, "Not found", apperrors.ErrNotFound.Message)
	assert.True(t, stderrors.Is(err, apperrors.ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.ErrPaymentInstrumentNotFound, http.StatusBadRequest},
		{apperrors.ErrEmptyCart, http.StatusBadRequest},
		{apperrors.ErrBonusOverLimit, http.StatusBadRequest},
		{apperrors.ErrInsufficientFunds, http.StatusPaymentRequired},
		{fmt.Errorf("line 2: %w", apperrors.ErrInsufficientStock), http.StatusPaymentRequired},
		{apperrors.ErrConcurrentModification, http.StatusConflict},
		{apperrors.ErrInvalidStateForDeletion, http.StatusBadRequest},
		{stderrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperrors.HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestSentinelsSharingAReasonStayDistinct(t *testing.T) {
	err := fmt.Errorf("login: %w", apperrors.ErrInvalidCredentials.WithMessage("bad password"))

	assert.True(t, stderrors.Is(err, apperrors.ErrInvalidCredentials))
	assert.False(t, stderrors.Is(err, apperrors.ErrUnauthorized))
	assert.False(t, stderrors.Is(apperrors.ErrUnauthorized, apperrors.ErrInvalidCredentials))
	assert.Equal(t, apperrors.ErrUnauthorized.Reason, apperrors.ErrInvalidCredentials.Reason)
}
