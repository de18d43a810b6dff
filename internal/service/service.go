package service

import (
	"context"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain"
)

// ReturnResult is everything a loan return produces.
type ReturnResult struct {
	Loan         *domain.Loan `json:"loan"`
	Fine         *domain.Fine `json:"fine,omitempty"`
	NotifyUserID string       `json:"notify_user_id,omitempty"`
}

// SweepResult counts what an expiry sweep cleaned up.
type SweepResult struct {
	PurgedQueueEntries  int `json:"purged_queue_entries"`
	ExpiredReservations int `json:"expired_reservations"`
}

type CirculationService interface {
	IssueLoan(ctx context.Context, userID, resourceID string) (*domain.Loan, error)
	ReturnLoan(ctx context.Context, loanID string) (*ReturnResult, error)
	RenewLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	ListUserLoans(ctx context.Context, userID string) ([]domain.Loan, error)
	ListOverdueLoans(ctx context.Context) ([]domain.Loan, error)

	RequestReservation(ctx context.Context, userID, resourceID string) (*domain.Reservation, error)
	ConfirmReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	CompleteReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
	QueuePosition(ctx context.Context, resourceID, userID string) (int, error)

	SweepExpired(ctx context.Context) (*SweepResult, error)
}

type FineService interface {
	PayFine(ctx context.Context, fineID string, amount decimal.Decimal, method string) (*domain.Fine, error)
	ApplyDiscount(ctx context.Context, fineID string, pct decimal.Decimal) (*domain.Fine, error)
	AddLateSurcharge(ctx context.Context, fineID string, days int, rate decimal.Decimal) (*domain.Fine, error)
	GetFine(ctx context.Context, fineID string) (*domain.Fine, error)
	ListUnpaid(ctx context.Context) ([]domain.Fine, error)
	ListOverdueForPayment(ctx context.Context) ([]domain.Fine, error)
	Receipt(ctx context.Context, fineID string) (string, error)
}

type CatalogService interface {
	RegisterUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	SetUserActive(ctx context.Context, id string, active bool) (*domain.User, error)
	AddResource(ctx context.Context, resource *domain.Resource) error
	GetResource(ctx context.Context, id string) (*domain.Resource, error)
	UpdateCondition(ctx context.Context, id string, condition domain.ResourceCondition) (*domain.Resource, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	Send(ctx context.Context, userID, title, message string, attrs map[string]string) error
}
