package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/realtime"
	"github.com/clubratings/club-ratings/repositories"
)

type NotificationService interface {
	// NotifyFrom создаёт уведомление для targetID о действии actorID.
	// Собственные действия пользователя уведомлений не порождают.
	NotifyFrom(ctx context.Context, actorID, targetID string, kind models.NotificationType, message string, payload interface{}) error
	List(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, notificationID int) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, notificationID int) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	hub              *realtime.Hub
	logger           *slog.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	hub *realtime.Hub,
	logger *slog.Logger,
) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

func (s *notificationService) NotifyFrom(ctx context.Context, actorID, targetID string, kind models.NotificationType, message string, payload interface{}) error {
	if actorID == targetID {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	notification := &models.Notification{
		UserID:  targetID,
		Type:    kind,
		Message: message,
		Payload: raw,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if s.hub != nil {
		s.hub.Push(targetID, realtime.Event{
			Type:    "notification",
			Payload: notification,
		})
	}
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, onlyUnread bool, limit int) ([]models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, onlyUnread, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, notificationID int) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID string, notificationID int) error {
	err := s.notificationRepo.Delete(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.DeleteAll(ctx, userID)
}
