package auth

import (
	"context"
	"net/url"

	"Welog/internal/core/users"
)

// Client is the part of the API client the auth service uses.
type Client interface {
	Post(ctx context.Context, path string, query url.Values, in, out any) error
}

// Service signs users in and registers new accounts.
type Service interface {
	SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	SignUp(ctx context.Context, req SignUpRequest) (*users.User, error)
}
