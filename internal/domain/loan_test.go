package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestUser(id string, role UserRole) *User {
	return &User{ID: id, Name: id, Role: role, Active: true}
}

func day(n int) time.Time {
	return testNow.AddDate(0, 0, n)
}

func TestNewLoan(t *testing.T) {
	t.Run("Due date uses the shorter duration", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("e1", "Go", "Pike", ResourceTypeDigital)

		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), loan.DueOn)
		assert.Equal(t, LoanStatusActive, loan.Status)
		assert.Equal(t, DefaultMaxRenewals, loan.MaxRenewals)
		assert.Equal(t, []string{loan.ID}, u.ActiveLoans)
		assert.Equal(t, []string{loan.ID}, u.LoanHistory)
		assert.Equal(t, 1, r.Downloads)
		assert.Equal(t, 1, r.TimesLoaned)
	})

	t.Run("Physical copy is checked out", func(t *testing.T) {
		u := newTestUser("u1", UserRoleFaculty)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)

		_, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		assert.False(t, r.Available)

		other := newTestUser("u2", UserRoleStudent)
		_, err = NewLoan(other, r, testNow)
		assert.True(t, errors.Is(err, ErrResourceUnavailable))
		assert.Empty(t, other.ActiveLoans)
	})

	t.Run("Loan limit", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		for i := 0; i < 3; i++ {
			_, err := NewLoan(u, NewResource(fmt.Sprintf("r%d", i), "T", "A", ResourceTypePhysical), testNow)
			require.NoError(t, err)
		}
		r := NewResource("r9", "T", "A", ResourceTypePhysical)
		_, err := NewLoan(u, r, testNow)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
		assert.Len(t, u.ActiveLoans, 3)
		assert.True(t, r.Available)
	})

	t.Run("Pending fines block borrowing", func(t *testing.T) {
		u := newTestUser("u1", UserRoleLibrarian)
		u.PendingFines = decimal.NewFromFloat(0.5)
		_, err := NewLoan(u, NewResource("r1", "T", "A", ResourceTypePhysical), testNow)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
	})

	t.Run("Inactive user", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		u.Active = false
		_, err := NewLoan(u, NewResource("r1", "T", "A", ResourceTypePhysical), testNow)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
	})

	t.Run("Damaged copy cannot be lent", func(t *testing.T) {
		r := NewResource("r1", "T", "A", ResourceTypePhysical)
		r.Condition = ConditionDamaged
		_, err := NewLoan(newTestUser("u1", UserRoleStudent), r, testNow)
		assert.True(t, errors.Is(err, ErrResourceUnavailable))
		assert.True(t, r.Available)
	})

	t.Run("Download limit", func(t *testing.T) {
		r := NewResource("e1", "Go", "Pike", ResourceTypeDigital)
		r.Downloads = r.DownloadLimit
		_, err := NewLoan(newTestUser("u1", UserRoleStudent), r, testNow)
		assert.True(t, errors.Is(err, ErrResourceUnavailable))
	})
}

func TestLoan_Renew(t *testing.T) {
	t.Run("At most two renewals", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		require.NoError(t, loan.Renew(u, r, day(4)))
		assert.Equal(t, LoanStatusRenewed, loan.Status)
		assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), loan.DueOn)

		require.NoError(t, loan.Renew(u, r, day(5)))
		assert.Equal(t, 2, loan.Renewals)
		assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), loan.DueOn)

		err = loan.Renew(u, r, day(6))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, 2, loan.Renewals)
		assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), loan.DueOn)
	})

	t.Run("Queue blocks renewal", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		_, err = r.Reserve("u2", 2, day(1))
		require.NoError(t, err)

		err = loan.Renew(u, r, day(2))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, LoanStatusActive, loan.Status)
	})

	t.Run("Expired queue entry does not block renewal", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		_, err = r.Reserve("u2", 2, testNow)
		require.NoError(t, err)

		require.NoError(t, loan.Renew(u, r, day(3)))
		assert.Equal(t, LoanStatusRenewed, loan.Status)
		assert.Zero(t, r.QueueLen())
	})

	t.Run("Overdue loan cannot renew", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("e1", "Go", "Pike", ResourceTypeDigital)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		err = loan.Renew(u, r, day(9))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("Returned loan cannot renew", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("a1", "Odyssey", "Homer", ResourceTypeAudio)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		_, err = loan.Return(u, r, day(1))
		require.NoError(t, err)

		err = loan.Renew(u, r, day(2))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})
}

func TestLoan_Return(t *testing.T) {
	t.Run("On time", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		out, err := loan.Return(u, r, day(7))
		require.NoError(t, err)
		assert.Nil(t, out.Fine)
		assert.Empty(t, out.NotifyUserID)
		assert.Equal(t, LoanStatusReturned, loan.Status)
		assert.True(t, r.Available)
		assert.Empty(t, u.ActiveLoans)
		assert.Equal(t, []string{loan.ID}, u.LoanHistory)
	})

	t.Run("Late physical copy", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		out, err := loan.Return(u, r, day(10))
		require.NoError(t, err)
		require.NotNil(t, out.Fine)
		assert.Equal(t, "3.00", out.Fine.Amount.StringFixed(2))
		assert.Equal(t, loan.ID, out.Fine.LoanID)
		assert.Equal(t, out.Fine.ID, loan.FineID)
		assert.Equal(t, "3.00", u.PendingFines.StringFixed(2))
		assert.Equal(t, 3, loan.DaysLate(day(30)))
	})

	t.Run("Late damaged copy", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		r.Condition = ConditionDamaged

		out, err := loan.Return(u, r, day(10))
		require.NoError(t, err)
		require.NotNil(t, out.Fine)
		assert.Equal(t, "8.00", out.Fine.Amount.StringFixed(2))
	})

	t.Run("Late digital copy has no fine", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("e1", "Go", "Pike", ResourceTypeDigital)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		out, err := loan.Return(u, r, day(20))
		require.NoError(t, err)
		assert.Nil(t, out.Fine)
		assert.True(t, u.PendingFines.IsZero())
	})

	t.Run("Renewed loan can be returned", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("a1", "Odyssey", "Homer", ResourceTypeAudio)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		require.NoError(t, loan.Renew(u, r, day(1)))

		_, err = loan.Return(u, r, day(2))
		assert.NoError(t, err)
	})

	t.Run("Second return fails", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("a1", "Odyssey", "Homer", ResourceTypeAudio)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)
		_, err = loan.Return(u, r, day(2))
		require.NoError(t, err)

		_, err = loan.Return(u, r, day(3))
		assert.True(t, errors.Is(err, ErrInvalidTransition))
	})

	t.Run("Queue head is surfaced", func(t *testing.T) {
		u := newTestUser("u1", UserRoleStudent)
		r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		require.NoError(t, err)

		_, err = r.Reserve("low", 1, day(1))
		require.NoError(t, err)
		_, err = r.Reserve("high", 3, day(1).Add(time.Hour))
		require.NoError(t, err)

		out, err := loan.Return(u, r, day(2))
		require.NoError(t, err)
		assert.Equal(t, "high", out.NotifyUserID)
		assert.Equal(t, 1, r.QueueLen())
	})
}

func TestLoan_Projections(t *testing.T) {
	u := newTestUser("u1", UserRoleStudent)
	r := NewResource("r1", "Dune", "Herbert", ResourceTypePhysical)
	loan, err := NewLoan(u, r, testNow)
	require.NoError(t, err)

	assert.Equal(t, LoanStatusActive, loan.StatusAt(day(7)))
	assert.Equal(t, 2, loan.DaysRemaining(day(5)))
	assert.Equal(t, 0, loan.DaysLate(day(5)))

	assert.Equal(t, LoanStatusOverdue, loan.StatusAt(day(8)))
	assert.Equal(t, 0, loan.DaysRemaining(day(8)))
	assert.Equal(t, 1, loan.DaysLate(day(8)))

	// reads never change the stored status
	assert.Equal(t, LoanStatusActive, loan.Status)
}

func TestLoanLimitHoldsAcrossIssueAndReturn(t *testing.T) {
	u := newTestUser("u1", UserRoleStudent)
	limit := PolicyForUser(u).LoanLimit
	var loans []*Loan
	var resources []*Resource

	for i := 0; i < 6; i++ {
		r := NewResource(fmt.Sprintf("r%d", i), "T", "A", ResourceTypePhysical)
		loan, err := NewLoan(u, r, testNow)
		if err == nil {
			loans = append(loans, loan)
			resources = append(resources, r)
		}
		assert.LessOrEqual(t, len(u.ActiveLoans), limit)
	}
	require.Len(t, loans, limit)

	_, err := loans[0].Return(u, resources[0], day(1))
	require.NoError(t, err)
	assert.Len(t, u.ActiveLoans, limit-1)
	assert.True(t, u.CanBorrow())
}
