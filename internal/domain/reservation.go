package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusExpired   ReservationStatus = "EXPIRED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

const (
	ReservationWindow  = 48 * time.Hour
	ConfirmationWindow = 24 * time.Hour
)

type Reservation struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	ResourceID    string            `json:"resource_id"`
	CreatedAt     time.Time         `json:"created_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
	Status        ReservationStatus `json:"status"`
	Priority      int               `json:"priority"`
	QueueToken    string            `json:"queue_token,omitempty"`
	QueuePosition int               `json:"queue_position"`
	Note          string            `json:"note,omitempty"`
}

// NewReservation queues u for r. A resource that cannot take the
// reservation yields an already cancelled record with the refusal in Note.
func NewReservation(u *User, r *Resource, now time.Time) *Reservation {
	res := &Reservation{
		ID:         uuid.NewString(),
		UserID:     u.ID,
		ResourceID: r.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ReservationWindow),
		Status:     ReservationStatusPending,
		Priority:   PolicyForUser(u).Priority,
	}

	token, err := r.Reserve(u.ID, res.Priority, now)
	if err != nil {
		res.Status = ReservationStatusCancelled
		res.Note = err.Error()
		return res
	}
	res.QueueToken = token
	res.QueuePosition = r.Queue.Position(u.ID, now)
	return res
}

// IsLive reports whether the reservation is Pending or Confirmed.
func (r *Reservation) IsLive() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusConfirmed
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// StatusAt is the status as observed at now, without mutating.
func (r *Reservation) StatusAt(now time.Time) ReservationStatus {
	if r.IsLive() && r.IsExpired(now) {
		return ReservationStatusExpired
	}
	return r.Status
}

// Confirm accepts a pending reservation and opens the pickup window.
// Confirming after the window closed expires the reservation.
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != ReservationStatusPending {
		return fmt.Errorf("%w: cannot confirm %s reservation %s", ErrInvalidTransition, r.Status, r.ID)
	}
	if r.IsExpired(now) {
		r.Status = ReservationStatusExpired
		return fmt.Errorf("reservation %s: %w", r.ID, ErrReservationExpired)
	}
	r.Status = ReservationStatusConfirmed
	r.ExpiresAt = now.Add(ConfirmationWindow)
	return nil
}

// Cancel withdraws the reservation. Only a completed reservation refuses;
// cancelling a closed reservation again changes nothing.
func (r *Reservation) Cancel() error {
	switch r.Status {
	case ReservationStatusCompleted:
		return fmt.Errorf("%w: reservation %s is completed", ErrInvalidTransition, r.ID)
	case ReservationStatusPending, ReservationStatusConfirmed:
		r.Status = ReservationStatusCancelled
	}
	return nil
}

// Complete fulfils a confirmed reservation within its pickup window.
func (r *Reservation) Complete(now time.Time) error {
	if r.Status != ReservationStatusConfirmed {
		return fmt.Errorf("%w: cannot complete %s reservation %s", ErrInvalidTransition, r.Status, r.ID)
	}
	if r.IsExpired(now) {
		r.Status = ReservationStatusExpired
		return fmt.Errorf("reservation %s: %w", r.ID, ErrReservationExpired)
	}
	r.Status = ReservationStatusCompleted
	return nil
}

// Expire moves a live reservation past its window to Expired and reports
// whether it did.
func (r *Reservation) Expire(now time.Time) bool {
	if r.IsLive() && r.IsExpired(now) {
		r.Status = ReservationStatusExpired
		return true
	}
	return false
}

// HoursRemaining in the current window, zero once closed.
func (r *Reservation) HoursRemaining(now time.Time) int {
	if r.StatusAt(now) != r.Status || !r.IsLive() {
		return 0
	}
	return int(r.ExpiresAt.Sub(now).Hours())
}

// Summary is a one-line text for the reserving user.
func (r *Reservation) Summary(now time.Time) string {
	switch r.StatusAt(now) {
	case ReservationStatusPending:
		return fmt.Sprintf("Reservation pending at queue position %d, %d hour(s) left", r.QueuePosition, r.HoursRemaining(now))
	case ReservationStatusConfirmed:
		return fmt.Sprintf("Reservation confirmed, pick up within %d hour(s)", r.HoursRemaining(now))
	case ReservationStatusCompleted:
		return "Reservation completed"
	case ReservationStatusExpired:
		return "Reservation expired"
	default:
		if r.Note != "" {
			return "Reservation cancelled: " + r.Note
		}
		return "Reservation cancelled"
	}
}
