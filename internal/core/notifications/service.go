package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

type notificationService struct {
	client Client
	logger *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(client Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{client: client, logger: logger}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]Notification, error) {
	if userID <= 0 {
		return nil, ErrInvalidID
	}
	var list []Notification
	if err := s.client.Get(ctx, fmt.Sprintf("/users/%d/notifications", userID), nil, &list); err != nil {
		return nil, fmt.Errorf("list notifications of user %d: %w", userID, err)
	}
	return list, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidID
	}
	if err := s.client.Patch(ctx, fmt.Sprintf("/users/%d/notifications/read-all", userID), nil, nil); err != nil {
		return fmt.Errorf("mark notifications of user %d read: %w", userID, err)
	}
	s.logger.Debug("notifications marked read", "user_id", userID)
	return nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID int64) error {
	if notificationID <= 0 {
		return ErrInvalidID
	}
	if err := s.client.Patch(ctx, fmt.Sprintf("/notifications/%d/read", notificationID), nil, nil); err != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, err)
	}
	return nil
}
