package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type fineRepository struct {
	db *sql.DB
}

func NewFineRepository(db *sql.DB) repository.FineRepository {
	return &fineRepository{db: db}
}

const fineColumns = `id, loan_id, user_id, amount, reason, generated_on, paid, paid_on, payment_method, transaction_ref`

func scanFine(row interface{ Scan(...any) error }, f *domain.Fine) error {
	return row.Scan(&f.ID, &f.LoanID, &f.UserID, &f.Amount, &f.Reason, &f.GeneratedOn,
		&f.Paid, &f.PaidOn, &f.PaymentMethod, &f.TransactionRef)
}

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	query := `INSERT INTO fines (` + fineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "fines", "fineID", f.ID, "amount", f.Amount.StringFixed(2))
	_, err := r.db.ExecContext(ctx, query, f.ID, f.LoanID, f.UserID, f.Amount, f.Reason, f.GeneratedOn,
		f.Paid, f.PaidOn, f.PaymentMethod, f.TransactionRef)
	logger.DatabaseResult("INSERT", 1, err, "fineID", f.ID)
	return err
}

func (r *fineRepository) GetByID(ctx context.Context, id string) (*domain.Fine, error) {
	f := &domain.Fine{}
	query := `SELECT ` + fineColumns + ` FROM fines WHERE id = $1`
	if err := scanFine(r.db.QueryRowContext(ctx, query, id), f); err != nil {
		return nil, notFound(err, "fine", id)
	}
	return f, nil
}

func (r *fineRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Fine, error) {
	f := &domain.Fine{}
	query := `SELECT ` + fineColumns + ` FROM fines WHERE loan_id = $1 LIMIT 1`
	if err := scanFine(r.db.QueryRowContext(ctx, query, loanID), f); err != nil {
		return nil, notFound(err, "fine for loan", loanID)
	}
	return f, nil
}

func (r *fineRepository) Update(ctx context.Context, f *domain.Fine) error {
	query := `UPDATE fines SET amount=$1, reason=$2, paid=$3, paid_on=$4, payment_method=$5, transaction_ref=$6 WHERE id=$7`
	result, err := r.db.ExecContext(ctx, query, f.Amount, f.Reason, f.Paid, f.PaidOn, f.PaymentMethod, f.TransactionRef, f.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result, "fine", f.ID)
}

func (r *fineRepository) ListUnpaid(ctx context.Context) ([]domain.Fine, error) {
	query := `SELECT ` + fineColumns + ` FROM fines WHERE paid = FALSE ORDER BY generated_on`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []domain.Fine
	for rows.Next() {
		var f domain.Fine
		if err := scanFine(rows, &f); err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}
