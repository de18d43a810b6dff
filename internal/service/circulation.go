package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/logger"
	"library-circulation/internal/repository"
	"library-circulation/internal/utils"
)

type circulationService struct {
	userRepo        repository.UserRepository
	resourceRepo    repository.ResourceRepository
	loanRepo        repository.LoanRepository
	reservationRepo repository.ReservationRepository
	fineRepo        repository.FineRepository
	noteRepo        repository.NotificationRepository
	now             func() time.Time
	locks           *keyedMutex
	log             *slog.Logger
}

func NewCirculationService(
	userRepo repository.UserRepository,
	resourceRepo repository.ResourceRepository,
	loanRepo repository.LoanRepository,
	reservationRepo repository.ReservationRepository,
	fineRepo repository.FineRepository,
	noteRepo repository.NotificationRepository,
	opts ...Option,
) CirculationService {
	o := applyOptions(opts)
	return &circulationService{
		userRepo:        userRepo,
		resourceRepo:    resourceRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		fineRepo:        fineRepo,
		noteRepo:        noteRepo,
		now:             o.now,
		locks:           o.locks,
		log:             logger.WithService("circulation"),
	}
}

func (s *circulationService) loadParties(ctx context.Context, userID, resourceID string) (*domain.User, *domain.Resource, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load resource: %w", err)
	}
	return user, res, nil
}

// lockLoan takes the resource and user locks of a loan and re-reads it
// under them.
func (s *circulationService) lockLoan(ctx context.Context, loanID string) (*domain.Loan, func(), error) {
	peek, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load loan: %w", err)
	}
	unlockResource := s.locks.lock(resourceKey(peek.ResourceID))
	unlockUser := s.locks.lock(userKey(peek.UserID))
	unlock := func() {
		unlockUser()
		unlockResource()
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("failed to load loan: %w", err)
	}
	return loan, unlock, nil
}

func (s *circulationService) IssueLoan(ctx context.Context, userID, resourceID string) (*domain.Loan, error) {
	defer s.locks.lock(resourceKey(resourceID))()
	defer s.locks.lock(userKey(userID))()

	user, res, err := s.loadParties(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}

	loan, err := domain.NewLoan(user, res, s.now())
	if err != nil {
		s.log.WarnContext(ctx, "Loan refused", "user_id", userID, "resource_id", resourceID, "error", err)
		return nil, err
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.InfoContext(ctx, "Loan issued",
		"loan_id", loan.ID,
		"user_id", userID,
		"resource_id", resourceID,
		"due_on", utils.FormatDate(loan.DueOn))
	return loan, nil
}

func (s *circulationService) ReturnLoan(ctx context.Context, loanID string) (*ReturnResult, error) {
	loan, unlock, err := s.lockLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, res, err := s.loadParties(ctx, loan.UserID, loan.ResourceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out, err := loan.Return(user, res, now)
	if err != nil {
		s.log.WarnContext(ctx, "Return refused", "loan_id", loanID, "error", err)
		return nil, err
	}

	if out.Fine != nil {
		if err := s.saveReturnFine(ctx, loan, user, &out); err != nil {
			return nil, err
		}
	}
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}
	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	result := &ReturnResult{Loan: loan, Fine: out.Fine, NotifyUserID: out.NotifyUserID}
	if out.NotifyUserID != "" {
		s.notify(ctx, out.NotifyUserID, "Reservation Available",
			fmt.Sprintf("%q has been returned and is waiting for you", res.Title),
			map[string]string{
				"type":        domain.NotificationTypeReservationReady,
				"resource_id": res.ID,
			})
	}

	args := []any{"loan_id", loanID, "user_id", loan.UserID, "resource_id", loan.ResourceID}
	if out.Fine != nil {
		args = append(args, "fine_id", out.Fine.ID, "fine_amount", out.Fine.Amount.StringFixed(2))
	}
	s.log.InfoContext(ctx, "Loan returned", args...)
	return result, nil
}

// saveReturnFine stores the late fine of a return. A fine left behind by an
// earlier attempt on the same loan is reused so a retried return never bills
// twice.
func (s *circulationService) saveReturnFine(ctx context.Context, loan *domain.Loan, user *domain.User, out *domain.ReturnOutcome) error {
	existing, err := s.fineRepo.GetByLoanID(ctx, loan.ID)
	switch {
	case err == nil:
		user.PendingFines = user.PendingFines.Sub(out.Fine.Amount).Add(existing.Amount)
		loan.FineID = existing.ID
		out.Fine = existing
		s.log.WarnContext(ctx, "Reusing fine from earlier return attempt", "loan_id", loan.ID, "fine_id", existing.ID)
		return nil
	case errors.Is(err, repository.ErrNotFound):
		if err := s.fineRepo.Create(ctx, out.Fine); err != nil {
			return fmt.Errorf("failed to save fine: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up fine: %w", err)
	}
}

func (s *circulationService) RenewLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, unlock, err := s.lockLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, res, err := s.loadParties(ctx, loan.UserID, loan.ResourceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if res.Queue != nil {
		if purged := res.Queue.Purge(now); purged > 0 {
			if err := s.resourceRepo.Update(ctx, res); err != nil {
				return nil, fmt.Errorf("failed to update resource: %w", err)
			}
		}
	}

	if err := loan.Renew(user, res, now); err != nil {
		s.log.WarnContext(ctx, "Renewal refused", "loan_id", loanID, "error", err)
		return nil, err
	}
	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	s.log.InfoContext(ctx, "Loan renewed", "loan_id", loanID, "renewals", loan.Renewals, "due_on", utils.FormatDate(loan.DueOn))
	return loan, nil
}

func (s *circulationService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	loan.Status = loan.StatusAt(s.now())
	return loan, nil
}

func (s *circulationService) ListUserLoans(ctx context.Context, userID string) ([]domain.Loan, error) {
	loans, err := s.loanRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range loans {
		loans[i].Status = loans[i].StatusAt(now)
	}
	return loans, nil
}

func (s *circulationService) ListOverdueLoans(ctx context.Context) ([]domain.Loan, error) {
	open, err := s.loanRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var overdue []domain.Loan
	for _, l := range open {
		if l.IsOverdue(now) {
			l.Status = domain.LoanStatusOverdue
			overdue = append(overdue, l)
		}
	}
	return overdue, nil
}

func (s *circulationService) RequestReservation(ctx context.Context, userID, resourceID string) (*domain.Reservation, error) {
	defer s.locks.lock(resourceKey(resourceID))()

	user, res, err := s.loadParties(ctx, userID, resourceID)
	if err != nil {
		return nil, err
	}

	reservation := domain.NewReservation(user, res, s.now())
	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}
	// a refused enqueue may still have purged expired entries
	if res.Queue != nil {
		if err := s.resourceRepo.Update(ctx, res); err != nil {
			return nil, fmt.Errorf("failed to update resource: %w", err)
		}
	}
	if reservation.Status == domain.ReservationStatusCancelled {
		s.log.InfoContext(ctx, "Reservation cancelled on creation", "reservation_id", reservation.ID, "reason", reservation.Note)
		return reservation, nil
	}

	s.log.InfoContext(ctx, "Reservation queued",
		"reservation_id", reservation.ID,
		"user_id", userID,
		"resource_id", resourceID,
		"position", reservation.QueuePosition)
	return reservation, nil
}

// transitionReservation loads a reservation under its resource lock, applies
// step, persists the outcome and drops the queue entry once the reservation
// is closed. A step that fails but still changed the status is persisted.
func (s *circulationService) transitionReservation(ctx context.Context, reservationID, action string, step func(*domain.Reservation, time.Time) error) (*domain.Reservation, error) {
	peek, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	defer s.locks.lock(resourceKey(peek.ResourceID))()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	before := reservation.Status
	stepErr := step(reservation, now)
	if reservation.Status != before {
		if err := s.reservationRepo.Update(ctx, reservation); err != nil {
			return nil, fmt.Errorf("failed to update reservation: %w", err)
		}
		if !reservation.IsLive() {
			if err := s.dropQueueEntry(ctx, reservation); err != nil {
				return nil, err
			}
		}
	}
	if stepErr != nil {
		s.log.WarnContext(ctx, "Reservation "+action+" refused", "reservation_id", reservationID, "status", reservation.Status, "error", stepErr)
		return reservation, stepErr
	}

	s.fillQueuePosition(ctx, reservation, now)
	s.log.InfoContext(ctx, "Reservation "+action, "reservation_id", reservationID, "status", reservation.Status)
	return reservation, nil
}

func (s *circulationService) dropQueueEntry(ctx context.Context, reservation *domain.Reservation) error {
	res, err := s.resourceRepo.GetByID(ctx, reservation.ResourceID)
	if err != nil {
		return fmt.Errorf("failed to load resource: %w", err)
	}
	if res.Queue == nil || !res.Queue.Cancel(reservation.UserID) {
		return nil
	}
	if err := s.resourceRepo.Update(ctx, res); err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (s *circulationService) fillQueuePosition(ctx context.Context, reservation *domain.Reservation, now time.Time) {
	reservation.QueuePosition = 0
	if !reservation.IsLive() {
		return
	}
	res, err := s.resourceRepo.GetByID(ctx, reservation.ResourceID)
	if err != nil || res.Queue == nil {
		return
	}
	reservation.QueuePosition = res.Queue.Position(reservation.UserID, now)
}

func (s *circulationService) ConfirmReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return s.transitionReservation(ctx, reservationID, "confirmed", func(r *domain.Reservation, now time.Time) error {
		return r.Confirm(now)
	})
}

func (s *circulationService) CancelReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return s.transitionReservation(ctx, reservationID, "cancelled", func(r *domain.Reservation, _ time.Time) error {
		return r.Cancel()
	})
}

func (s *circulationService) CompleteReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	return s.transitionReservation(ctx, reservationID, "completed", func(r *domain.Reservation, now time.Time) error {
		return r.Complete(now)
	})
}

func (s *circulationService) GetReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	reservation.Status = reservation.StatusAt(now)
	s.fillQueuePosition(ctx, reservation, now)
	return reservation, nil
}

// QueuePosition reports the 1-based rank of userID, or 0. Entries found
// expired while answering are purged and persisted.
func (s *circulationService) QueuePosition(ctx context.Context, resourceID, userID string) (int, error) {
	defer s.locks.lock(resourceKey(resourceID))()

	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	if res.Queue == nil {
		return 0, nil
	}
	if purged := res.Queue.Purge(s.now()); purged > 0 {
		if err := s.resourceRepo.Update(ctx, res); err != nil {
			return 0, fmt.Errorf("failed to update resource: %w", err)
		}
	}
	return res.Queue.Position(userID, s.now()), nil
}

// SweepExpired purges expired queue entries on every physical copy and
// moves live reservations past their window to Expired.
func (s *circulationService) SweepExpired(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{}
	now := s.now()

	resources, err := s.resourceRepo.ListWithQueues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	for _, listed := range resources {
		purged, err := s.purgeQueue(ctx, listed.ID, now)
		if err != nil {
			return result, err
		}
		result.PurgedQueueEntries += purged
	}

	live, err := s.reservationRepo.ListLive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list reservations: %w", err)
	}
	for _, r := range live {
		if !r.IsExpired(now) {
			continue
		}
		reservation, err := s.transitionReservation(ctx, r.ID, "expired", func(res *domain.Reservation, at time.Time) error {
			res.Expire(at)
			return nil
		})
		if err != nil {
			return result, err
		}
		if reservation.Status == domain.ReservationStatusExpired {
			result.ExpiredReservations++
		}
	}

	if result.PurgedQueueEntries > 0 || result.ExpiredReservations > 0 {
		s.log.InfoContext(ctx, "Expiry sweep finished",
			"purged_queue_entries", result.PurgedQueueEntries,
			"expired_reservations", result.ExpiredReservations)
	}
	return result, nil
}

func (s *circulationService) purgeQueue(ctx context.Context, resourceID string, now time.Time) (int, error) {
	defer s.locks.lock(resourceKey(resourceID))()

	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if res.Queue == nil {
		return 0, nil
	}
	purged := res.Queue.Purge(now)
	if purged > 0 {
		if err := s.resourceRepo.Update(ctx, res); err != nil {
			return 0, fmt.Errorf("failed to update resource: %w", err)
		}
	}
	return purged, nil
}

// notify records a notification. Failures are logged, not returned.
func (s *circulationService) notify(ctx context.Context, userID, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedOn:  s.now(),
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		s.log.ErrorContext(ctx, "Failed to record notification", "user_id", userID, "title", title, "error", err)
	}
}
