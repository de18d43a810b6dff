package service

import (
	"context"
	"time"

	"library-circulation/internal/domain"
	"library-circulation/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
	now      func() time.Time
}

func NewNotificationService(noteRepo repository.NotificationRepository, opts ...Option) NotificationService {
	o := applyOptions(opts)
	return &notificationService{noteRepo: noteRepo, now: o.now}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.noteRepo.List(ctx, userID, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	return s.noteRepo.MarkAsRead(ctx, notificationID, userID)
}

// Send records a notification for userID.
func (s *notificationService) Send(ctx context.Context, userID, title, message string, attrs map[string]string) error {
	return s.noteRepo.Create(ctx, &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
		CreatedOn:  s.now(),
	})
}
