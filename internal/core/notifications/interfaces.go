package notifications

import (
	"context"
	"net/url"
)

// Client is the part of the API client the notification service uses.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Patch(ctx context.Context, path string, in, out any) error
}

// Service defines the notification operations of the Welog API.
type Service interface {
	List(ctx context.Context, userID int64) ([]Notification, error)
	MarkAllRead(ctx context.Context, userID int64) error
	MarkRead(ctx context.Context, notificationID int64) error
}
