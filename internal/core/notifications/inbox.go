package notifications

import (
	"context"
	"strconv"
)

// badgeCap is the largest unread count shown as a number.
const badgeCap = 99

// Inbox is the notifications view of one user, loaded when the view opens.
// It is not refreshed in the background.
type Inbox struct {
	Items []Notification
}

// Open fetches the inbox of userID.
func Open(ctx context.Context, svc Service, userID int64) (*Inbox, error) {
	items, err := svc.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Inbox{Items: items}, nil
}

// UnreadCount returns the number of unread items.
func (b *Inbox) UnreadCount() int {
	n := 0
	for _, item := range b.Items {
		if !item.Read {
			n++
		}
	}
	return n
}

// Badge returns the unread count as displayed: "" when zero, "99+" above 99.
func (b *Inbox) Badge() string {
	n := b.UnreadCount()
	switch {
	case n == 0:
		return ""
	case n > badgeCap:
		return strconv.Itoa(badgeCap) + "+"
	}
	return strconv.Itoa(n)
}

// MarkAllRead asks the server to mark everything read and, only once it has,
// marks the local items read.
func (b *Inbox) MarkAllRead(ctx context.Context, svc Service, userID int64) error {
	if err := svc.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	for i := range b.Items {
		b.Items[i].Read = true
	}
	return nil
}

// MarkRead marks one item read on the server and then locally.
func (b *Inbox) MarkRead(ctx context.Context, svc Service, notificationID int64) error {
	if err := svc.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	for i := range b.Items {
		if b.Items[i].ID == notificationID {
			b.Items[i].Read = true
		}
	}
	return nil
}
