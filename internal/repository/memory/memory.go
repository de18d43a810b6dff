// Package memory keeps circulation records in process memory. Every
// repository hands out copies, so callers must Update to persist changes.
// A resource's reservation queue is shared by reference with its stored
// record: the queue is owned by the resource and serializes itself.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

// NewStore returns a store backed entirely by memory.
func NewStore() *repository.Store {
	return &repository.Store{
		Users:         NewUserRepository(),
		Resources:     NewResourceRepository(),
		Loans:         NewLoanRepository(),
		Reservations:  NewReservationRepository(),
		Fines:         NewFineRepository(),
		Notifications: NewNotificationRepository(),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
}

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.ActiveLoans = append([]string(nil), u.ActiveLoans...)
	c.LoanHistory = append([]string(nil), u.LoanHistory...)
	return &c
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	r.users[u.ID] = cloneUser(u)
	return nil
}

type resourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource
}

func NewResourceRepository() repository.ResourceRepository {
	return &resourceRepository{resources: make(map[string]*domain.Resource)}
}

func cloneResource(res *domain.Resource) *domain.Resource {
	c := *res
	if res.LastLoanedOn != nil {
		t := *res.LastLoanedOn
		c.LastLoanedOn = &t
	}
	return &c
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if _, ok := r.resources[res.ID]; ok {
		return fmt.Errorf("resource %s already exists", res.ID)
	}
	if res.IsPhysical() && res.Queue == nil {
		res.Queue = domain.NewReservationQueue()
	}
	r.resources[res.ID] = cloneResource(res)
	return nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resources[id]
	if !ok {
		return nil, notFound("resource", id)
	}
	return cloneResource(res), nil
}

func (r *resourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.resources[res.ID]; !ok {
		return notFound("resource", res.ID)
	}
	r.resources[res.ID] = cloneResource(res)
	return nil
}

func (r *resourceRepository) ListWithQueues(ctx context.Context) ([]*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Resource
	for _, res := range r.resources {
		if res.Queue != nil {
			out = append(out, cloneResource(res))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type loanRepository struct {
	mu    sync.RWMutex
	loans map[string]domain.Loan
}

func NewLoanRepository() repository.LoanRepository {
	return &loanRepository{loans: make(map[string]domain.Loan)}
}

func (r *loanRepository) Create(ctx context.Context, l *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, ok := r.loans[l.ID]; ok {
		return fmt.Errorf("loan %s already exists", l.ID)
	}
	r.loans[l.ID] = *l
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	return &l, nil
}

func (r *loanRepository) Update(ctx context.Context, l *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return notFound("loan", l.ID)
	}
	r.loans[l.ID] = *l
	return nil
}

func (r *loanRepository) list(keep func(domain.Loan) bool) []domain.Loan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Loan
	for _, l := range r.loans {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedOn.Equal(out[j].IssuedOn) {
			return out[i].ID < out[j].ID
		}
		return out[i].IssuedOn.Before(out[j].IssuedOn)
	})
	return out
}

func (r *loanRepository) ListByUser(ctx context.Context, userID string) ([]domain.Loan, error) {
	return r.list(func(l domain.Loan) bool { return l.UserID == userID }), nil
}

func (r *loanRepository) ListOpen(ctx context.Context) ([]domain.Loan, error) {
	return r.list(func(l domain.Loan) bool { return l.IsOpen() }), nil
}

type reservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]domain.Reservation
}

func NewReservationRepository() repository.ReservationRepository {
	return &reservationRepository{reservations: make(map[string]domain.Reservation)}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if _, ok := r.reservations[res.ID]; ok {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}
	r.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.reservations[id]
	if !ok {
		return nil, notFound("reservation", id)
	}
	return &res, nil
}

func (r *reservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[res.ID]; !ok {
		return notFound("reservation", res.ID)
	}
	r.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) ListLive(ctx context.Context) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Reservation
	for _, res := range r.reservations {
		if res.IsLive() {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fineRepository struct {
	mu    sync.RWMutex
	fines map[string]domain.Fine
}

func NewFineRepository() repository.FineRepository {
	return &fineRepository{fines: make(map[string]domain.Fine)}
}

func (r *fineRepository) Create(ctx context.Context, f *domain.Fine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if _, ok := r.fines[f.ID]; ok {
		return fmt.Errorf("fine %s already exists", f.ID)
	}
	r.fines[f.ID] = *f
	return nil
}

func (r *fineRepository) GetByID(ctx context.Context, id string) (*domain.Fine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fines[id]
	if !ok {
		return nil, notFound("fine", id)
	}
	return &f, nil
}

func (r *fineRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Fine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.fines {
		if f.LoanID == loanID {
			return &f, nil
		}
	}
	return nil, notFound("fine for loan", loanID)
}

func (r *fineRepository) Update(ctx context.Context, f *domain.Fine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fines[f.ID]; !ok {
		return notFound("fine", f.ID)
	}
	r.fines[f.ID] = *f
	return nil
}

func (r *fineRepository) ListUnpaid(ctx context.Context) ([]domain.Fine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Fine
	for _, f := range r.fines {
		if !f.Paid {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedOn.Before(out[j].GeneratedOn) })
	return out, nil
}

type notificationRepository struct {
	mu    sync.RWMutex
	notes []domain.Notification
}

func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.notes = append(r.notes, *n)
	return nil
}

// List returns the user's notifications newest first.
func (r *notificationRepository) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var mine []domain.Notification
	for i := len(r.notes) - 1; i >= 0; i-- {
		if r.notes[i].UserID == userID {
			mine = append(mine, r.notes[i])
		}
	}
	count := int32(len(mine))
	if offset < 0 {
		offset = 0
	}
	if offset >= count {
		return nil, count, nil
	}
	end := offset + limit
	if limit <= 0 || end > count {
		end = count
	}
	return mine[offset:end], count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id && r.notes[i].UserID == userID {
			r.notes[i].IsRead = true
			return nil
		}
	}
	return notFound("notification", id)
}
