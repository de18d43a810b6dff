package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"library-circulation/internal/repository"
)

// NewStore wires every Postgres repository onto one connection pool.
func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(db),
		Resources:     NewResourceRepository(db),
		Loans:         NewLoanRepository(db),
		Reservations:  NewReservationRepository(db),
		Fines:         NewFineRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// notFound maps sql.ErrNoRows onto repository.ErrNotFound.
func notFound(err error, kind, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return err
}

func expectOneRow(result sql.Result, kind, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	}
	return nil
}
