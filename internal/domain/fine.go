package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-circulation/internal/utils"
)

type FineStatus string

const (
	FineStatusPending FineStatus = "PENDING"
	FineStatusOverdue FineStatus = "OVERDUE"
	FineStatusPaid    FineStatus = "PAID"
)

var hundred = decimal.NewFromInt(100)

type Fine struct {
	ID             string          `json:"id"`
	LoanID         string          `json:"loan_id"`
	UserID         string          `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	GeneratedOn    time.Time       `json:"generated_on"`
	Paid           bool            `json:"paid"`
	PaidOn         *time.Time      `json:"paid_on,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
}

// NewFine creates an unpaid fine for a late return.
func NewFine(loan *Loan, amount decimal.Decimal, daysLate int, now time.Time) *Fine {
	return &Fine{
		ID:          uuid.NewString(),
		LoanID:      loan.ID,
		UserID:      loan.UserID,
		Amount:      amount,
		Reason:      fmt.Sprintf("Late return: %d day(s) past due %s", daysLate, utils.FormatDate(loan.DueOn)),
		GeneratedOn: now,
	}
}

// Pay settles the fine. Paying less than owed changes nothing.
func (f *Fine) Pay(amount decimal.Decimal, method string, now time.Time) error {
	if f.Paid {
		return fmt.Errorf("%w: fine %s is already paid", ErrInvalidTransition, f.ID)
	}
	if amount.LessThan(f.Amount) {
		return fmt.Errorf("%w: paid %s, owed %s", ErrInvalidAmount, amount.StringFixed(2), f.Amount.StringFixed(2))
	}
	paidOn := now
	f.Paid = true
	f.PaidOn = &paidOn
	f.PaymentMethod = method
	f.TransactionRef = fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
	return nil
}

// ApplyDiscount reduces the owed amount by exactly amount*pct/100. No cent
// rounding happens here.
func (f *Fine) ApplyDiscount(pct decimal.Decimal) error {
	if f.Paid {
		return fmt.Errorf("%w: fine %s is already paid", ErrInvalidTransition, f.ID)
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount %s%% outside 0..100", ErrInvalidAmount, pct.String())
	}
	discount := f.Amount.Mul(pct).Div(hundred)
	f.Amount = f.Amount.Sub(discount)
	f.Reason += fmt.Sprintf(" (%s%% discount applied)", pct.String())
	return nil
}

// AddLateSurcharge adds days*rate to an unpaid fine. It reports whether
// the fine changed.
func (f *Fine) AddLateSurcharge(days int, rate decimal.Decimal) bool {
	if f.Paid || days <= 0 || !rate.IsPositive() {
		return false
	}
	f.Amount = f.Amount.Add(rate.Mul(decimal.NewFromInt(int64(days))))
	f.Reason += fmt.Sprintf(" (late payment surcharge: %d day(s))", days)
	return true
}

// IsOverdueForPayment reports whether the fine stayed unpaid past the grace period.
func (f *Fine) IsOverdueForPayment(now time.Time) bool {
	return !f.Paid && utils.DaysBetween(f.GeneratedOn, now) > PaymentGraceDays
}

func (f *Fine) StatusAt(now time.Time) FineStatus {
	switch {
	case f.Paid:
		return FineStatusPaid
	case f.IsOverdueForPayment(now):
		return FineStatusOverdue
	default:
		return FineStatusPending
	}
}

// Receipt renders a payment receipt. Unpaid fines have no receipt.
func (f *Fine) Receipt() (string, error) {
	if !f.Paid {
		return "", fmt.Errorf("%w: fine %s is not paid", ErrInvalidTransition, f.ID)
	}
	var b strings.Builder
	b.WriteString("PAYMENT RECEIPT\n")
	fmt.Fprintf(&b, "Transaction: %s\n", f.TransactionRef)
	fmt.Fprintf(&b, "Fine: %s\n", f.ID)
	fmt.Fprintf(&b, "Loan: %s\n", f.LoanID)
	fmt.Fprintf(&b, "Amount: %s\n", f.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Reason: %s\n", f.Reason)
	fmt.Fprintf(&b, "Method: %s\n", f.PaymentMethod)
	fmt.Fprintf(&b, "Paid on: %s\n", utils.FormatDate(*f.PaidOn))
	return b.String(), nil
}
