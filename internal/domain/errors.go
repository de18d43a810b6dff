package domain

import (
	"errors"
	"fmt"
)

// Circulation error classes. Callers classify with errors.Is; the wrapped
// message carries the detail.
var (
	ErrCapacityExceeded    = errors.New("borrowing capacity exceeded")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidInput        = errors.New("invalid input")
)

var (
	ErrReservationExpired = fmt.Errorf("reservation expired: %w", ErrInvalidTransition)
	ErrQueueFull          = errors.New("reservation queue is full")
	ErrAlreadyQueued      = errors.New("user already in reservation queue")
	ErrResourceAvailable  = errors.New("resource is available, borrow it instead")
	ErrNotReservable      = errors.New("resource type does not accept reservations")
)
