package payment

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	t.Run("GeneratesReference", func(t *testing.T) {
		before := time.Now().UTC()
		tx, err := NewTransaction("", 7, 42, 50000000, "VND", MethodVNPay, "course-42")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, tx.ID)
		assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), tx.Reference)
		assert.Equal(t, StatusPending, tx.Status)
		assert.Equal(t, int64(50000000), tx.Amount)
		assert.Equal(t, MethodVNPay, tx.Method)
		assert.Nil(t, tx.PaidAt)
		assert.WithinDuration(t, before, tx.CreatedAt, time.Second)
	})

	t.Run("KeepsPreBoundReference", func(t *testing.T) {
		tx, err := NewTransaction("ORDER20240115", 7, 42, 100, "VND", MethodVNPay, "")
		require.NoError(t, err)
		assert.Equal(t, "ORDER20240115", tx.Reference)
	})

	t.Run("References are unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			ref := NewReference()
			_, dup := seen[ref]
			require.False(t, dup)
			seen[ref] = struct{}{}
		}
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		testCases := []struct {
			name     string
			userID   int64
			courseID int64
			amount   int64
			currency string
			method   Method
			field    string
		}{
			{"ZeroAmount", 1, 1, 0, "VND", MethodVNPay, "amount"},
			{"NegativeAmount", 1, 1, -100, "VND", MethodVNPay, "amount"},
			{"NoUser", 0, 1, 100, "VND", MethodVNPay, "user_id"},
			{"NoCourse", 1, 0, 100, "VND", MethodVNPay, "course_id"},
			{"BadCurrency", 1, 1, 100, "DONG", MethodVNPay, "currency"},
			{"BadMethod", 1, 1, 100, "VND", Method("CASH"), "method"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				tx, err := NewTransaction("", tc.userID, tc.courseID, tc.amount, tc.currency, tc.method, "")
				assert.Nil(t, tx)

				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tc.field, vErr.Field)
				assert.True(t, errors.Is(err, &ValidationError{}))
			})
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusSuccess.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestOutcome_Codes(t *testing.T) {
	testCases := []struct {
		outcome Outcome
		code    string
		message string
	}{
		{OutcomeConfirmed, "00", "Confirm Success"},
		{OutcomeUnknownOrder, "01", "Order not found"},
		{OutcomeAlreadyProcessed, "02", "Order already confirmed"},
		{OutcomeAmountMismatch, "04", "Invalid amount"},
		{OutcomeInvalidSignature, "97", "Invalid signature"},
		{OutcomeInternalError, "99", "Unknown error"},
		{Outcome("SOMETHING_NEW"), "99", "Unknown error"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.outcome), func(t *testing.T) {
			assert.Equal(t, tc.code, tc.outcome.Code())
			assert.Equal(t, tc.message, tc.outcome.Message())
		})
	}
}

func TestErrTransactionNotFound_Is(t *testing.T) {
	err := error(ErrTransactionNotFound{Reference: "abc"})

	assert.True(t, errors.Is(err, ErrTransactionNotFound{}))
	assert.True(t, errors.Is(err, ErrTransactionNotFound{Reference: "abc"}))
	assert.False(t, errors.Is(err, ErrTransactionNotFound{Reference: "xyz"}))
	assert.False(t, errors.Is(err, ErrDuplicateReference{}))
	assert.Equal(t, "payment transaction not found: abc", err.Error())
}
