package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/config"
	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
	"library-circulation/internal/repository/memory"
	"library-circulation/internal/service"
)

type testEnv struct {
	ctx    context.Context
	now    time.Time
	store  *repository.Store
	svc    *service.Services
	runner *JobRunner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ctx:   context.Background(),
		now:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		store: memory.NewStore(),
	}
	env.svc = service.New(env.store, service.WithClock(func() time.Time { return env.now }))
	env.runner = NewJobRunner(env.svc, &config.Config{})

	require.NoError(t, env.svc.Catalog.RegisterUser(env.ctx, &domain.User{ID: "s1", Name: "Student", Role: domain.UserRoleStudent}))
	require.NoError(t, env.svc.Catalog.RegisterUser(env.ctx, &domain.User{ID: "s2", Name: "Waiting", Role: domain.UserRoleStudent}))
	require.NoError(t, env.svc.Catalog.AddResource(env.ctx, &domain.Resource{ID: "book-1", Title: "Dune", Type: domain.ResourceTypePhysical}))
	return env
}

func (e *testEnv) notes(t *testing.T, userID string) []domain.Notification {
	t.Helper()
	notes, _, err := e.store.Notifications.List(e.ctx, userID, 50, 0)
	require.NoError(t, err)
	return notes
}

func TestJobRunner_SweepExpired(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Circulation.IssueLoan(env.ctx, "s1", "book-1")
	require.NoError(t, err)
	r, err := env.svc.Circulation.RequestReservation(env.ctx, "s2", "book-1")
	require.NoError(t, err)

	env.now = env.now.Add(domain.ReservationWindow + time.Hour)
	env.runner.SweepExpired()

	stored, err := env.store.Reservations.GetByID(env.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusExpired, stored.Status)

	res, err := env.store.Resources.GetByID(env.ctx, "book-1")
	require.NoError(t, err)
	assert.Zero(t, res.QueueLen())
}

func TestJobRunner_SendOverdueReminders(t *testing.T) {
	env := newTestEnv(t)
	loan, err := env.svc.Circulation.IssueLoan(env.ctx, "s1", "book-1")
	require.NoError(t, err)

	env.runner.SendOverdueReminders()
	assert.Empty(t, env.notes(t, "s1"))

	env.now = env.now.AddDate(0, 0, 9)
	env.runner.SendOverdueReminders()

	notes := env.notes(t, "s1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Loan Overdue", notes[0].Title)
	assert.Equal(t, domain.NotificationTypeLoanOverdue, notes[0].Attributes["type"])
	assert.Equal(t, loan.ID, notes[0].Attributes["loan_id"])
	assert.Contains(t, notes[0].Message, "2024-03-08")
}

func TestJobRunner_FlagOverdueFines(t *testing.T) {
	env := newTestEnv(t)
	loan, err := env.svc.Circulation.IssueLoan(env.ctx, "s1", "book-1")
	require.NoError(t, err)
	env.now = env.now.AddDate(0, 0, 10)
	result, err := env.svc.Circulation.ReturnLoan(env.ctx, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Fine)

	env.runner.FlagOverdueFines()
	assert.Empty(t, env.notes(t, "s1"))

	env.now = env.now.AddDate(0, 0, domain.PaymentGraceDays+1)
	env.runner.FlagOverdueFines()

	notes := env.notes(t, "s1")
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationTypeFineOverdue, notes[0].Attributes["type"])
	assert.Equal(t, result.Fine.ID, notes[0].Attributes["fine_id"])
	assert.Contains(t, notes[0].Message, "3.00")
}

func TestJobRunner_Run(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Known", func(t *testing.T) {
		for _, name := range env.runner.JobNames() {
			assert.NoError(t, env.runner.Run(name))
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, env.runner.Run("purge-everything"))
	})

	t.Run("PanicIsRecovered", func(t *testing.T) {
		assert.NotPanics(t, func() {
			env.runner.runWithRecovery("boom", func() { panic("boom") })
		})
	})
}
