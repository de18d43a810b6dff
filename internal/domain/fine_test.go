package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFine(amount string) *Fine {
	loan := &Loan{ID: "loan-1", UserID: "u1", DueOn: testNow}
	return NewFine(loan, decimal.RequireFromString(amount), 3, day(3))
}

func TestFine_Pay(t *testing.T) {
	t.Run("Underpayment changes nothing", func(t *testing.T) {
		f := newTestFine("3.00")
		err := f.Pay(decimal.RequireFromString("2.99"), "cash", day(4))
		assert.True(t, errors.Is(err, ErrInvalidAmount))
		assert.False(t, f.Paid)
		assert.Nil(t, f.PaidOn)
		assert.Empty(t, f.TransactionRef)
		assert.Equal(t, "3.00", f.Amount.StringFixed(2))
	})

	t.Run("Exact amount settles", func(t *testing.T) {
		f := newTestFine("3.00")
		require.NoError(t, f.Pay(decimal.RequireFromString("3"), "card", day(4)))
		assert.True(t, f.Paid)
		assert.Equal(t, "card", f.PaymentMethod)
		assert.True(t, strings.HasPrefix(f.TransactionRef, "TXN-"))
		assert.Equal(t, FineStatusPaid, f.StatusAt(day(100)))
	})

	t.Run("Second payment fails", func(t *testing.T) {
		f := newTestFine("3.00")
		require.NoError(t, f.Pay(decimal.RequireFromString("5"), "cash", day(4)))
		ref := f.TransactionRef

		err := f.Pay(decimal.RequireFromString("5"), "cash", day(5))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, ref, f.TransactionRef)
	})
}

func TestFine_ApplyDiscount(t *testing.T) {
	f := newTestFine("8.00")
	require.NoError(t, f.ApplyDiscount(decimal.NewFromInt(25)))
	assert.Equal(t, "6.00", f.Amount.StringFixed(2))
	assert.Contains(t, f.Reason, "25% discount applied")

	err := f.ApplyDiscount(decimal.NewFromInt(101))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	err = f.ApplyDiscount(decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Equal(t, "6.00", f.Amount.StringFixed(2))

	require.NoError(t, f.Pay(f.Amount, "cash", day(4)))
	err = f.ApplyDiscount(decimal.NewFromInt(10))
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestFine_ApplyDiscountKeepsFractionalCents(t *testing.T) {
	f := newTestFine("3.33")
	require.NoError(t, f.ApplyDiscount(decimal.NewFromInt(10)))
	assert.True(t, decimal.RequireFromString("2.997").Equal(f.Amount), f.Amount.String())
}

func TestFine_AddLateSurcharge(t *testing.T) {
	f := newTestFine("3.00")
	assert.True(t, f.AddLateSurcharge(4, decimal.RequireFromString("0.25")))
	assert.Equal(t, "4.00", f.Amount.StringFixed(2))
	assert.Contains(t, f.Reason, "surcharge")

	require.NoError(t, f.Pay(f.Amount, "cash", day(4)))
	assert.False(t, f.AddLateSurcharge(4, decimal.RequireFromString("0.25")))
	assert.Equal(t, "4.00", f.Amount.StringFixed(2))
}

func TestFine_OverdueForPayment(t *testing.T) {
	f := newTestFine("3.00")
	assert.False(t, f.IsOverdueForPayment(day(3+PaymentGraceDays)))
	assert.Equal(t, FineStatusPending, f.StatusAt(day(3+PaymentGraceDays)))
	assert.True(t, f.IsOverdueForPayment(day(4+PaymentGraceDays)))
	assert.Equal(t, FineStatusOverdue, f.StatusAt(day(4+PaymentGraceDays)))
}

func TestFine_Receipt(t *testing.T) {
	f := newTestFine("3.00")
	_, err := f.Receipt()
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	require.NoError(t, f.Pay(decimal.RequireFromString("3"), "cash", day(4)))
	receipt, err := f.Receipt()
	require.NoError(t, err)
	assert.Contains(t, receipt, f.TransactionRef)
	assert.Contains(t, receipt, "Amount: 3.00")
	assert.Contains(t, receipt, "Paid on: 2024-03-05")
}
