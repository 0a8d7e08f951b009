package posts

import (
	"context"
	"net/url"

	"Welog/internal/blogapi"
)

// Client is the part of the API client the post service uses.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, query url.Values, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
	Multipart(ctx context.Context, method, path string, form *blogapi.Form, out any) error
}

// CoverProcessor shrinks cover images before they are uploaded.
type CoverProcessor interface {
	// PrepareCover returns the bytes to upload and their content type.
	PrepareCover(data []byte) ([]byte, string, error)
}

// Service defines the post operations of the Welog API
type Service interface {
	List(ctx context.Context, page, size int) (*blogapi.Page[Post], error)

	// Search matches posts by title. Queries shorter than MinSearchLength are rejected.
	Search(ctx context.Context, query string, page, size int) (*blogapi.Page[Post], error)

	Get(ctx context.Context, id int64) (*Post, error)

	// Create validates the draft, fills a missing excerpt and creates the post.
	Create(ctx context.Context, draft Draft) (*Post, error)

	// CreateWithCover creates the post and then uploads its cover image.
	// A failed upload is reported alongside the created post.
	CreateWithCover(ctx context.Context, draft Draft, cover *blogapi.File) (*Post, error)

	Update(ctx context.Context, id int64, req UpdateRequest) (*Post, error)
	Delete(ctx context.Context, id int64) error
	UploadCoverImage(ctx context.Context, id int64, cover *blogapi.File) (*Post, error)
}
