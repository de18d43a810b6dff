package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, user_id, resource_id, created_at, expires_at, status, priority, queue_token, note`

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	query := `INSERT INTO reservations (` + reservationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, res.ID, res.UserID, res.ResourceID, res.CreatedAt, res.ExpiresAt,
		res.Status, res.Priority, res.QueueToken, res.Note)
	return err
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&res.ID, &res.UserID, &res.ResourceID, &res.CreatedAt,
		&res.ExpiresAt, &res.Status, &res.Priority, &res.QueueToken, &res.Note)
	if err != nil {
		return nil, notFound(err, "reservation", id)
	}
	return res, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	query := `UPDATE reservations SET expires_at=$1, status=$2, note=$3 WHERE id=$4`
	result, err := r.db.ExecContext(ctx, query, res.ExpiresAt, res.Status, res.Note, res.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result, "reservation", res.ID)
}

func (r *reservationRepository) ListLive(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status IN ($1, $2) ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.ResourceID, &res.CreatedAt, &res.ExpiresAt,
			&res.Status, &res.Priority, &res.QueueToken, &res.Note); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
