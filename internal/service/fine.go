package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
)

type fineService struct {
	fineRepo repository.FineRepository
	userRepo repository.UserRepository
	now      func() time.Time
	locks    *keyedMutex
	log      *slog.Logger
}

func NewFineService(fineRepo repository.FineRepository, userRepo repository.UserRepository, opts ...Option) FineService {
	o := applyOptions(opts)
	return &fineService{
		fineRepo: fineRepo,
		userRepo: userRepo,
		now:      o.now,
		locks:    o.locks,
		log:      logger.WithService("fines"),
	}
}

// adjust runs change against a fine and its owner under the owner's lock.
// change returns how much the user's pending balance moves.
func (s *fineService) adjust(ctx context.Context, fineID string, change func(*domain.Fine) (decimal.Decimal, error)) (*domain.Fine, error) {
	peek, err := s.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(userKey(peek.UserID))()

	fine, err := s.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, fine.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	delta, err := change(fine)
	if err != nil {
		return nil, err
	}
	if err := s.fineRepo.Update(ctx, fine); err != nil {
		return nil, fmt.Errorf("failed to update fine: %w", err)
	}
	if delta.IsZero() {
		return fine, nil
	}
	if delta.IsNegative() {
		user.SettleFines(delta.Neg())
	} else {
		user.PendingFines = user.PendingFines.Add(delta)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return fine, nil
}

func (s *fineService) PayFine(ctx context.Context, fineID string, amount decimal.Decimal, method string) (*domain.Fine, error) {
	fine, err := s.adjust(ctx, fineID, func(f *domain.Fine) (decimal.Decimal, error) {
		if err := f.Pay(amount, method, s.now()); err != nil {
			return decimal.Zero, err
		}
		return f.Amount.Neg(), nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "Payment refused", "fine_id", fineID, "amount", amount.StringFixed(2), "error", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "Fine paid", "fine_id", fineID, "user_id", fine.UserID, "transaction_ref", fine.TransactionRef)
	return fine, nil
}

func (s *fineService) ApplyDiscount(ctx context.Context, fineID string, pct decimal.Decimal) (*domain.Fine, error) {
	fine, err := s.adjust(ctx, fineID, func(f *domain.Fine) (decimal.Decimal, error) {
		before := f.Amount
		if err := f.ApplyDiscount(pct); err != nil {
			return decimal.Zero, err
		}
		return f.Amount.Sub(before), nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "Discount refused", "fine_id", fineID, "percent", pct.String(), "error", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "Fine discounted", "fine_id", fineID, "percent", pct.String(), "amount", fine.Amount.StringFixed(2))
	return fine, nil
}

func (s *fineService) AddLateSurcharge(ctx context.Context, fineID string, days int, rate decimal.Decimal) (*domain.Fine, error) {
	return s.adjust(ctx, fineID, func(f *domain.Fine) (decimal.Decimal, error) {
		before := f.Amount
		f.AddLateSurcharge(days, rate)
		return f.Amount.Sub(before), nil
	})
}

func (s *fineService) GetFine(ctx context.Context, fineID string) (*domain.Fine, error) {
	return s.fineRepo.GetByID(ctx, fineID)
}

func (s *fineService) ListUnpaid(ctx context.Context) ([]domain.Fine, error) {
	return s.fineRepo.ListUnpaid(ctx)
}

// ListOverdueForPayment returns unpaid fines older than the grace period.
func (s *fineService) ListOverdueForPayment(ctx context.Context) ([]domain.Fine, error) {
	unpaid, err := s.fineRepo.ListUnpaid(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var overdue []domain.Fine
	for _, f := range unpaid {
		if f.IsOverdueForPayment(now) {
			overdue = append(overdue, f)
		}
	}
	return overdue, nil
}

func (s *fineService) Receipt(ctx context.Context, fineID string) (string, error) {
	fine, err := s.fineRepo.GetByID(ctx, fineID)
	if err != nil {
		return "", err
	}
	return fine.Receipt()
}
