package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// textArray never yields NULL, so NOT NULL array columns accept empty sets.
func textArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	logger.EnterMethod("userRepository.Create", "role", u.Role)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.RegisteredOn.IsZero() {
		u.RegisteredOn = time.Now().UTC()
	}

	query := `INSERT INTO users (id, name, email, role, coordinator, active, active_loans, loan_history, pending_fines, registered_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "users", "userID", u.ID)
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.Role, u.Coordinator, u.Active,
		textArray(u.ActiveLoans), textArray(u.LoanHistory), u.PendingFines, u.RegisteredOn)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	if err != nil {
		logger.ExitMethodWithError("userRepository.Create", err, "userID", u.ID)
		return err
	}
	logger.ExitMethod("userRepository.Create", "userID", u.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, role, coordinator, active, active_loans, loan_history, pending_fines, registered_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Coordinator, &u.Active,
		pq.Array(&u.ActiveLoans), pq.Array(&u.LoanHistory), &u.PendingFines, &u.RegisteredOn)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name=$1, email=$2, role=$3, coordinator=$4, active=$5, active_loans=$6, loan_history=$7, pending_fines=$8 WHERE id=$9`
	result, err := r.db.ExecContext(ctx, query, u.Name, u.Email, u.Role, u.Coordinator, u.Active,
		textArray(u.ActiveLoans), textArray(u.LoanHistory), u.PendingFines, u.ID)
	if err != nil {
		return err
	}
	return expectOneRow(result, "user", u.ID)
}
