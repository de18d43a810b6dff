package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-circulation/internal/utils"
)

type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusOverdue   LoanStatus = "OVERDUE"
	LoanStatusReturned  LoanStatus = "RETURNED"
	LoanStatusRenewed   LoanStatus = "RENEWED"
	LoanStatusCancelled LoanStatus = "CANCELLED"
)

type Loan struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ResourceID  string     `json:"resource_id"`
	IssuedOn    time.Time  `json:"issued_on"`
	DueOn       time.Time  `json:"due_on"`
	ReturnedOn  *time.Time `json:"returned_on,omitempty"`
	Renewals    int        `json:"renewals"`
	MaxRenewals int        `json:"max_renewals"`
	Status      LoanStatus `json:"status"`
	FineID      string     `json:"fine_id,omitempty"`
}

// ReturnOutcome is what a return produces besides the loan transition.
type ReturnOutcome struct {
	Fine *Fine

	// NotifyUserID is the queue head to tell that the copy is free.
	NotifyUserID string
}

// NewLoan lends r to u. On success the resource is checked out and the
// loan joins the user's active set.
func NewLoan(u *User, r *Resource, now time.Time) (*Loan, error) {
	if !u.Active {
		return nil, fmt.Errorf("%w: user %s is inactive", ErrCapacityExceeded, u.ID)
	}
	if limit := PolicyForUser(u).LoanLimit; len(u.ActiveLoans) >= limit {
		return nil, fmt.Errorf("%w: user %s holds %d of %d loans", ErrCapacityExceeded, u.ID, len(u.ActiveLoans), limit)
	}
	if u.HasPendingFines() {
		return nil, fmt.Errorf("%w: user %s owes %s in fines", ErrCapacityExceeded, u.ID, u.PendingFines.StringFixed(2))
	}
	if err := r.checkOut(now); err != nil {
		return nil, err
	}

	loan := &Loan{
		ID:          uuid.NewString(),
		UserID:      u.ID,
		ResourceID:  r.ID,
		IssuedOn:    now,
		DueOn:       utils.AddDays(now, LoanDuration(u, r)),
		MaxRenewals: DefaultMaxRenewals,
		Status:      LoanStatusActive,
	}
	u.addActiveLoan(loan.ID)
	return loan, nil
}

// IsOpen reports whether the loan still holds the resource. Renewed loans
// are open.
func (l *Loan) IsOpen() bool {
	switch l.Status {
	case LoanStatusActive, LoanStatusRenewed, LoanStatusOverdue:
		return true
	}
	return false
}

// IsOverdue reports whether an open loan is past its due date at now.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && utils.StartOfDay(now).After(l.DueOn)
}

// StatusAt is the status as observed at now. It never mutates the loan.
func (l *Loan) StatusAt(now time.Time) LoanStatus {
	if l.IsOverdue(now) {
		return LoanStatusOverdue
	}
	return l.Status
}

// DaysRemaining until the due date, zero once due or closed.
func (l *Loan) DaysRemaining(now time.Time) int {
	if !l.IsOpen() {
		return 0
	}
	if days := utils.DaysBetween(now, l.DueOn); days > 0 {
		return days
	}
	return 0
}

// DaysLate past the due date, measured to the return date for closed loans.
func (l *Loan) DaysLate(now time.Time) int {
	ref := now
	if l.ReturnedOn != nil {
		ref = *l.ReturnedOn
	}
	if days := utils.DaysBetween(l.DueOn, ref); days > 0 {
		return days
	}
	return 0
}

// Renew extends the loan from today by the min-of-two duration. Overdue
// loans are refused, as are loans without renewals left. Expired queue
// entries are purged first so they never block a renewal.
func (l *Loan) Renew(u *User, r *Resource, now time.Time) error {
	switch l.StatusAt(now) {
	case LoanStatusActive, LoanStatusRenewed:
	default:
		return fmt.Errorf("%w: cannot renew %s loan %s", ErrInvalidTransition, l.StatusAt(now), l.ID)
	}
	if l.Renewals >= l.MaxRenewals {
		return fmt.Errorf("%w: loan %s used %d of %d renewals", ErrInvalidTransition, l.ID, l.Renewals, l.MaxRenewals)
	}
	if r.Queue != nil {
		r.Queue.Purge(now)
	}
	if !PolicyForResource(r).Renewable {
		return fmt.Errorf("%w: resource %s is not renewable", ErrInvalidTransition, r.ID)
	}

	l.Renewals++
	l.DueOn = utils.AddDays(now, LoanDuration(u, r))
	l.Status = LoanStatusRenewed
	return nil
}

// Return closes the loan, releases the resource and assesses any late fine.
// When the copy has a waiting queue, its head is popped for notification.
func (l *Loan) Return(u *User, r *Resource, now time.Time) (ReturnOutcome, error) {
	var out ReturnOutcome
	if !l.IsOpen() {
		return out, fmt.Errorf("%w: cannot return %s loan %s", ErrInvalidTransition, l.Status, l.ID)
	}

	returnedOn := now
	l.ReturnedOn = &returnedOn
	r.checkIn()
	u.removeActiveLoan(l.ID)

	if daysLate := l.DaysLate(now); daysLate > 0 {
		if amount := CalculateFine(r, daysLate); amount.IsPositive() {
			out.Fine = NewFine(l, amount, daysLate, now)
			l.FineID = out.Fine.ID
			u.PendingFines = u.PendingFines.Add(amount)
		}
	}
	l.Status = LoanStatusReturned

	if r.IsPhysical() && r.QueueLen() > 0 {
		if next, ok := r.NextInQueue(now); ok {
			out.NotifyUserID = next
		}
	}
	return out, nil
}
