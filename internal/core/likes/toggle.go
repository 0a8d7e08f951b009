package likes

import (
	"context"
	"fmt"
)

// Phase is the position of a Toggle in its round trip.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Toggle is the like button of one post for one viewer. The button flips
// before the request is sent; a failure inverts exactly the delta that was
// applied. Likes are never re-fetched after a toggle.
type Toggle struct {
	Liked bool
	Count int
	Phase Phase
	// delta is what Begin added to Count, so Rollback can undo it even when
	// the count was clamped at zero.
	delta int
}

// NewToggle creates an idle toggle showing the given state.
func NewToggle(liked bool, count int) *Toggle {
	if count < 0 {
		count = 0
	}
	return &Toggle{Liked: liked, Count: count}
}

// Begin applies the optimistic flip and reports whether the request to send
// is a like (true) or an unlike (false).
func (t *Toggle) Begin() (like bool, err error) {
	if t.Phase == Pending {
		return false, ErrInFlight
	}
	like = !t.Liked
	before := t.Count
	t.Liked = like
	if like {
		t.Count++
	} else if t.Count > 0 {
		t.Count--
	}
	t.delta = t.Count - before
	t.Phase = Pending
	return like, nil
}

// Commit keeps the optimistic state.
func (t *Toggle) Commit() error {
	if t.Phase != Pending {
		return ErrNotPending
	}
	t.delta = 0
	t.Phase = Committed
	return nil
}

// Rollback inverts the delta applied by Begin.
func (t *Toggle) Rollback() error {
	if t.Phase != Pending {
		return ErrNotPending
	}
	t.Liked = !t.Liked
	t.Count -= t.delta
	t.delta = 0
	t.Phase = RolledBack
	return nil
}

// Run drives one round trip: Begin, then like or unlike, then Commit or Rollback.
func (t *Toggle) Run(ctx context.Context, like, unlike func(ctx context.Context) error) error {
	doLike, err := t.Begin()
	if err != nil {
		return err
	}
	call := unlike
	if doLike {
		call = like
	}
	if err := call(ctx); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}

// RunFor toggles postID for userID through svc.
func (t *Toggle) RunFor(ctx context.Context, svc Service, postID, userID int64) error {
	if userID <= 0 {
		return ErrNotAuthenticated
	}
	return t.Run(ctx,
		func(ctx context.Context) error { return svc.Like(ctx, postID, userID) },
		func(ctx context.Context) error { return svc.Unlike(ctx, postID, userID) },
	)
}
