package service

import "library-circulation/internal/repository"

// Services bundles every service built over one store. They share record
// locks, so a fine payment and a loan issue for the same user serialize.
type Services struct {
	Circulation  CirculationService
	Fine         FineService
	Catalog      CatalogService
	Notification NotificationService
}

func New(store *repository.Store, opts ...Option) *Services {
	shared := append([]Option{withLocks(newKeyedMutex())}, opts...)
	circulation := NewCirculationService(
		store.Users,
		store.Resources,
		store.Loans,
		store.Reservations,
		store.Fines,
		store.Notifications,
		shared...,
	)
	return &Services{
		Circulation:  circulation,
		Fine:         NewFineService(store.Fines, store.Users, shared...),
		Catalog:      NewCatalogService(store.Users, store.Resources, shared...),
		Notification: NewNotificationService(store.Notifications, opts...),
	}
}
