package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"Welog/internal/blogapi"
	"Welog/internal/core/users"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authService struct {
	client Client
	logger *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(client Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{client: client, logger: logger}
}

// SignIn exchanges credentials for a bearer token. A 401 from the backend is a
// credentials error, not an expired session.
func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return nil, ErrEmailRequired
	}
	if req.Password == "" {
		return nil, ErrPasswordRequired
	}

	var resp SignInResponse
	if err := s.client.Post(ctx, "/auth/signin", nil, req, &resp); err != nil {
		if errors.Is(err, blogapi.ErrUnauthorized) {
			return nil, fmt.Errorf("sign in: %w: %w", ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}

	s.logger.Info("user signed in", "user_id", resp.ID)
	return &resp, nil
}

// SignUp registers a new account. The caller signs in separately.
func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*users.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateSignUp(req); err != nil {
		return nil, err
	}

	var user users.User
	if err := s.client.Post(ctx, "/auth/signup", nil, req, &user); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info("account registered", "user_id", user.ID)
	return &user, nil
}

func validateSignUp(req SignUpRequest) error {
	if req.Name == "" {
		return ErrNameRequired
	}
	if req.Email == "" {
		return ErrEmailRequired
	}
	if n := len(req.Email); n < MinEmailLength || n > MaxEmailLength {
		return &InvalidEmailError{
			Email:  req.Email,
			Reason: fmt.Sprintf("must be between %d and %d characters", MinEmailLength, MaxEmailLength),
		}
	}
	if !emailRegex.MatchString(req.Email) {
		return &InvalidEmailError{Email: req.Email, Reason: "malformed address"}
	}
	if req.Password == "" {
		return ErrPasswordRequired
	}
	if n := len(req.Password); n < MinPasswordLength || n > MaxPasswordLength {
		return &WeakPasswordError{
			Reason: fmt.Sprintf("must be between %d and %d characters", MinPasswordLength, MaxPasswordLength),
		}
	}
	if req.Password != req.PasswordConfirm {
		return ErrPasswordMismatch
	}
	return nil
}
