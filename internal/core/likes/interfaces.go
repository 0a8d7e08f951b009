package likes

import (
	"context"
	"net/url"

	"Welog/internal/core/users"
)

// Client is the part of the API client the like service uses.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, in, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
}

// Service defines the like operations of the Welog API.
// A like is the relation between a post and a user; it has no identity of its own.
type Service interface {
	Like(ctx context.Context, postID, userID int64) error
	Unlike(ctx context.Context, postID, userID int64) error

	// ListLikers returns the users who liked the post.
	ListLikers(ctx context.Context, postID int64) ([]users.User, error)

	// HasLiked reports whether userID appears among the post's likers.
	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
}
