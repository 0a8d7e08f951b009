package notifications

import (
	"Welog/internal/blogapi"
	"Welog/internal/core/users"
)

// Type is the event that produced a notification.
type Type string

const (
	TypeLike    Type = "LIKE"
	TypeComment Type = "COMMENT"
	TypeFollow  Type = "FOLLOW"
)

// PostRef is the post a notification points at, if any.
type PostRef struct {
	Title string `json:"title"`
	ID    int64  `json:"id"`
}

// Notification is an entry of a user's inbox.
type Notification struct {
	CreatedAt blogapi.Time `json:"createdAt"`
	Sender    *users.User  `json:"sender"`
	Recipient *users.User  `json:"recipient,omitempty"`
	Post      *PostRef     `json:"post,omitempty"`
	Type      Type         `json:"type"`
	Message   string       `json:"message"`
	ID        int64        `json:"id"`
	Read      bool         `json:"read"`
}

// Icon returns a short symbol for the notification type.
func (n *Notification) Icon() string {
	switch n.Type {
	case TypeLike:
		return "♥"
	case TypeComment:
		return "💬"
	case TypeFollow:
		return "+"
	}
	return "•"
}
