package comments

import (
	"context"
	"net/url"
)

// Client is the part of the API client the comment service uses.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
}

// Service defines the comment operations of the Welog API
type Service interface {
	// ListRoots returns the post's root comments with their nested replies.
	ListRoots(ctx context.Context, postID int64) ([]*Comment, error)

	// ListFlat returns every comment of the post without nesting.
	ListFlat(ctx context.Context, postID int64) ([]*Comment, error)

	// CreateOnPost adds a root comment, or a reply when parentID is set.
	CreateOnPost(ctx context.Context, postID int64, content string, parentID *int64) (*Comment, error)

	Create(ctx context.Context, req CreateRequest) (*Comment, error)
	Get(ctx context.Context, id int64) (*Comment, error)
	Update(ctx context.Context, id int64, content string) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}
