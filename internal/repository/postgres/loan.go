package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type loanRepository struct {
	db *sql.DB
}

func NewLoanRepository(db *sql.DB) repository.LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, user_id, resource_id, issued_on, due_on, returned_on, renewals, max_renewals, status, fine_id`

func scanLoan(row interface{ Scan(...any) error }, l *domain.Loan) error {
	return row.Scan(&l.ID, &l.UserID, &l.ResourceID, &l.IssuedOn, &l.DueOn, &l.ReturnedOn,
		&l.Renewals, &l.MaxRenewals, &l.Status, &l.FineID)
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	query := `INSERT INTO loans (` + loanColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "loans", "loanID", l.ID)
	_, err := r.db.ExecContext(ctx, query, l.ID, l.UserID, l.ResourceID, l.IssuedOn, l.DueOn, l.ReturnedOn,
		l.Renewals, l.MaxRenewals, l.Status, l.FineID)
	logger.DatabaseResult("INSERT", 1, err, "loanID", l.ID)
	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	l := &domain.Loan{}
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	if err := scanLoan(r.db.QueryRowContext(ctx, query, id), l); err != nil {
		return nil, notFound(err, "loan", id)
	}
	return l, nil
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	query := `UPDATE loans SET due_on=$1, returned_on=$2, renewals=$3, status=$4, fine_id=$5 WHERE id=$6`
	logger.DatabaseCall("UPDATE", "loans", "loanID", l.ID, "status", l.Status)
	result, err := r.db.ExecContext(ctx, query, l.DueOn, l.ReturnedOn, l.Renewals, l.Status, l.FineID, l.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "loanID", l.ID)
		return err
	}
	return expectOneRow(result, "loan", l.ID)
}

func (r *loanRepository) query(ctx context.Context, query string, args ...any) ([]domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		var l domain.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *loanRepository) ListByUser(ctx context.Context, userID string) ([]domain.Loan, error) {
	return r.query(ctx, `SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY issued_on, id`, userID)
}

// ListOpen returns loans that still hold their resource. Overdue is derived
// on read, so stored statuses are only ACTIVE and RENEWED.
func (r *loanRepository) ListOpen(ctx context.Context) ([]domain.Loan, error) {
	return r.query(ctx, `SELECT `+loanColumns+` FROM loans WHERE status IN ($1, $2, $3) ORDER BY issued_on, id`,
		domain.LoanStatusActive, domain.LoanStatusRenewed, domain.LoanStatusOverdue)
}
