package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserRole string

const (
	UserRoleStudent   UserRole = "STUDENT"
	UserRoleFaculty   UserRole = "FACULTY"
	UserRoleLibrarian UserRole = "LIBRARIAN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleStudent, UserRoleFaculty, UserRoleLibrarian:
		return true
	}
	return false
}

type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Role         UserRole        `json:"role"`
	Coordinator  bool            `json:"coordinator"` // faculty only
	Active       bool            `json:"active"`
	ActiveLoans  []string        `json:"active_loans"`
	LoanHistory  []string        `json:"loan_history"`
	PendingFines decimal.Decimal `json:"pending_fines"`
	RegisteredOn time.Time       `json:"registered_on"`
}

// HasActiveLoan reports whether loanID is in the user's active set.
func (u *User) HasActiveLoan(loanID string) bool {
	for _, id := range u.ActiveLoans {
		if id == loanID {
			return true
		}
	}
	return false
}

func (u *User) addActiveLoan(loanID string) {
	if u.HasActiveLoan(loanID) {
		return
	}
	u.ActiveLoans = append(u.ActiveLoans, loanID)
	u.LoanHistory = append(u.LoanHistory, loanID)
}

func (u *User) removeActiveLoan(loanID string) {
	kept := u.ActiveLoans[:0]
	for _, id := range u.ActiveLoans {
		if id != loanID {
			kept = append(kept, id)
		}
	}
	u.ActiveLoans = kept
}

// HasPendingFines reports whether the user owes anything.
func (u *User) HasPendingFines() bool {
	return u.PendingFines.IsPositive()
}

// CanBorrow reports whether the user may take one more loan.
func (u *User) CanBorrow() bool {
	return u.Active && len(u.ActiveLoans) < PolicyForUser(u).LoanLimit && !u.HasPendingFines()
}

// SettleFines reduces the pending total by amount, never below zero.
func (u *User) SettleFines(amount decimal.Decimal) {
	u.PendingFines = u.PendingFines.Sub(amount)
	if u.PendingFines.IsNegative() {
		u.PendingFines = decimal.Zero
	}
}

// HasPermission reports whether the user's role grants p.
func (u *User) HasPermission(p Permission) bool {
	return PolicyForUser(u).HasPermission(p)
}
