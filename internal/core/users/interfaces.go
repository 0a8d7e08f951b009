package users

import (
	"context"
	"net/url"

	"Welog/internal/blogapi"
)

// Client is the part of the API client the user service uses.
type Client interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string, query url.Values, out any) error
	Multipart(ctx context.Context, method, path string, form *blogapi.Form, out any) error
}

// Service defines the user operations of the Welog API
type Service interface {
	Get(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, patch Patch) (*User, error)

	// UpdateMe updates the signed-in user's profile, optionally replacing the photo.
	UpdateMe(ctx context.Context, req UpdateMeRequest) (*User, error)

	List(ctx context.Context, page, size int) (*blogapi.Page[User], error)
	DeleteUser(ctx context.Context, id int64) error
}
