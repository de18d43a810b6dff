package repository

import (
	"context"
	"errors"

	"library-circulation/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ResourceRepository persists resources together with their reservation
// queue entries.
type ResourceRepository interface {
	Create(ctx context.Context, resource *domain.Resource) error
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	Update(ctx context.Context, resource *domain.Resource) error
	ListWithQueues(ctx context.Context) ([]*domain.Resource, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	ListByUser(ctx context.Context, userID string) ([]domain.Loan, error)
	ListOpen(ctx context.Context) ([]domain.Loan, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Update(ctx context.Context, res *domain.Reservation) error
	ListLive(ctx context.Context) ([]domain.Reservation, error)
}

type FineRepository interface {
	Create(ctx context.Context, fine *domain.Fine) error
	GetByID(ctx context.Context, id string) (*domain.Fine, error)
	GetByLoanID(ctx context.Context, loanID string) (*domain.Fine, error)
	Update(ctx context.Context, fine *domain.Fine) error
	ListUnpaid(ctx context.Context) ([]domain.Fine, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}

// Store groups every repository a circulation deployment needs.
type Store struct {
	Users         UserRepository
	Resources     ResourceRepository
	Loans         LoanRepository
	Reservations  ReservationRepository
	Fines         FineRepository
	Notifications NotificationRepository
}
