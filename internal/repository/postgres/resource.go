package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type resourceRepository struct {
	db *sql.DB
}

// NewResourceRepository stores resources in the resources table and their
// reservation queues in reservation_queue_entries, ordered by position.
func NewResourceRepository(db *sql.DB) repository.ResourceRepository {
	return &resourceRepository{db: db}
}

const resourceColumns = `id, title, author, category, type, available, condition, times_loaned, last_loaned_on, downloads, download_limit`

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	logger.EnterMethod("resourceRepository.Create", "type", res.Type)
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.IsPhysical() && res.Queue == nil {
		res.Queue = domain.NewReservationQueue()
	}

	query := `INSERT INTO resources (` + resourceColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	logger.DatabaseCall("INSERT", "resources", "resourceID", res.ID)
	_, err := r.db.ExecContext(ctx, query, res.ID, res.Title, res.Author, res.Category, res.Type, res.Available,
		res.Condition, res.TimesLoaned, res.LastLoanedOn, res.Downloads, res.DownloadLimit)
	logger.DatabaseResult("INSERT", 1, err, "resourceID", res.ID)
	if err != nil {
		logger.ExitMethodWithError("resourceRepository.Create", err, "resourceID", res.ID)
		return err
	}
	logger.ExitMethod("resourceRepository.Create", "resourceID", res.ID)
	return nil
}

func scanResource(row interface{ Scan(...any) error }) (*domain.Resource, error) {
	res := &domain.Resource{}
	err := row.Scan(&res.ID, &res.Title, &res.Author, &res.Category, &res.Type, &res.Available,
		&res.Condition, &res.TimesLoaned, &res.LastLoanedOn, &res.Downloads, &res.DownloadLimit)
	return res, err
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	res, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "resource", id)
	}
	if res.IsPhysical() {
		if err := r.loadQueue(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (r *resourceRepository) loadQueue(ctx context.Context, res *domain.Resource) error {
	query := `SELECT user_id, priority, enqueued_at, expires_at FROM reservation_queue_entries
	          WHERE resource_id = $1 ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, res.ID)
	if err != nil {
		return fmt.Errorf("failed to load queue for %s: %w", res.ID, err)
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		var e domain.QueueEntry
		if err := rows.Scan(&e.UserID, &e.Priority, &e.EnqueuedAt, &e.ExpiresAt); err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	res.Queue = domain.RestoreReservationQueue(entries)
	return nil
}

// Update writes the resource row and replaces its queue entries in one
// transaction.
func (r *resourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE resources SET title=$1, author=$2, category=$3, available=$4, condition=$5,
	          times_loaned=$6, last_loaned_on=$7, downloads=$8, download_limit=$9 WHERE id=$10`
	result, err := tx.ExecContext(ctx, query, res.Title, res.Author, res.Category, res.Available, res.Condition,
		res.TimesLoaned, res.LastLoanedOn, res.Downloads, res.DownloadLimit, res.ID)
	if err != nil {
		return err
	}
	if err := expectOneRow(result, "resource", res.ID); err != nil {
		return err
	}

	if res.Queue != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_queue_entries WHERE resource_id = $1`, res.ID); err != nil {
			return err
		}
		insert := `INSERT INTO reservation_queue_entries (resource_id, position, user_id, priority, enqueued_at, expires_at)
		           VALUES ($1, $2, $3, $4, $5, $6)`
		for i, e := range res.Queue.Entries() {
			if _, err := tx.ExecContext(ctx, insert, res.ID, i+1, e.UserID, e.Priority, e.EnqueuedAt, e.ExpiresAt); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *resourceRepository) ListWithQueues(ctx context.Context) ([]*domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE type = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, domain.ResourceTypePhysical)
	if err != nil {
		return nil, err
	}
	var resources []*domain.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		resources = append(resources, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, res := range resources {
		if err := r.loadQueue(ctx, res); err != nil {
			return nil, err
		}
	}
	return resources, nil
}
