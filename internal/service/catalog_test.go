package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/internal/domain"
)

func TestCatalogService_RegisterUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h := newHarness(t)
		u := &domain.User{Name: "Ada", Email: "ada@library.test", Role: domain.UserRoleStudent, Coordinator: true}
		require.NoError(t, h.svc.Catalog.RegisterUser(h.ctx, u))
		assert.NotEmpty(t, u.ID)

		got, err := h.svc.Catalog.GetUser(h.ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
		assert.False(t, got.Coordinator)
		assert.Equal(t, testNow, got.RegisteredOn)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		h := newHarness(t)
		err := h.svc.Catalog.RegisterUser(h.ctx, &domain.User{Name: "X", Role: "ADMIN"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCatalogService_AddResource(t *testing.T) {
	t.Run("PhysicalDefaults", func(t *testing.T) {
		h := newHarness(t)
		r := h.resource(t, "book-1", domain.ResourceTypePhysical)
		assert.True(t, r.Available)
		assert.Equal(t, domain.ConditionGood, r.Condition)

		got, err := h.svc.Catalog.GetResource(h.ctx, "book-1")
		require.NoError(t, err)
		assert.NotNil(t, got.Queue)
	})

	t.Run("DigitalLimit", func(t *testing.T) {
		h := newHarness(t)
		r := h.resource(t, "ebook-1", domain.ResourceTypeDigital)
		assert.Equal(t, domain.DefaultDownloadLimit, r.DownloadLimit)
	})

	t.Run("UnknownType", func(t *testing.T) {
		h := newHarness(t)
		err := h.svc.Catalog.AddResource(h.ctx, &domain.Resource{Title: "T", Type: "SCROLL"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestCatalogService_UpdateCondition(t *testing.T) {
	h := newHarness(t)
	h.user(t, "s1", domain.UserRoleStudent)
	h.resource(t, "book-1", domain.ResourceTypePhysical)

	updated, err := h.svc.Catalog.UpdateCondition(h.ctx, "book-1", domain.ConditionDamaged)
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionDamaged, updated.Condition)

	_, err = h.svc.Circulation.IssueLoan(h.ctx, "s1", "book-1")
	assert.ErrorIs(t, err, domain.ErrResourceUnavailable)

	_, err = h.svc.Catalog.UpdateCondition(h.ctx, "book-1", "SHREDDED")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
