package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/memory"
	"library-circulation/internal/service"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	ctx   context.Context
	store *repository.Store
	svc   *service.Services
	clock *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{t: testNow}
	store := memory.NewStore()
	return &harness{
		ctx:   context.Background(),
		store: store,
		svc:   service.New(store, service.WithClock(clock.Now)),
		clock: clock,
	}
}

func (h *harness) user(t *testing.T, id string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Name: "User " + id, Email: id + "@library.test", Role: role}
	require.NoError(t, h.svc.Catalog.RegisterUser(h.ctx, u))
	return u
}

func (h *harness) resource(t *testing.T, id string, typ domain.ResourceType) *domain.Resource {
	t.Helper()
	r := &domain.Resource{ID: id, Title: "Title " + id, Author: "Author", Type: typ}
	require.NoError(t, h.svc.Catalog.AddResource(h.ctx, r))
	return r
}

func (h *harness) day(n int) {
	h.clock.Advance(time.Duration(n) * 24 * time.Hour)
}

// flakyLoans fails the next failUpdates loan updates.
type flakyLoans struct {
	repository.LoanRepository
	failUpdates int
}

func (r *flakyLoans) Update(ctx context.Context, l *domain.Loan) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return errors.New("connection reset")
	}
	return r.LoanRepository.Update(ctx, l)
}

// withFlakyLoans rebuilds the services over a loan store that can be told
// to fail updates.
func (h *harness) withFlakyLoans() *flakyLoans {
	loans := &flakyLoans{LoanRepository: h.store.Loans}
	h.store.Loans = loans
	h.svc = service.New(h.store, service.WithClock(h.clock.Now))
	return loans
}
