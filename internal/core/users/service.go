package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"Welog/internal/blogapi"
)

// Email addresses are checked loosely; the backend has the final say.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type userService struct {
	client Client
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(client Client, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		client: client,
		logger: logger,
	}
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}

	var user User
	if err := s.client.Get(ctx, userPath(id), nil, &user); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("get user %d", id), err)
	}
	return &user, nil
}

// Update applies a partial update to a user
func (s *userService) Update(ctx context.Context, id int64, patch Patch) (*User, error) {
	if id <= 0 {
		return nil, ErrInvalidUserID
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var user User
	if err := s.client.Patch(ctx, userPath(id), patch, &user); err != nil {
		return nil, wrapNotFound(fmt.Sprintf("update user %d", id), err)
	}
	return &user, nil
}

// UpdateMe sends the profile form as multipart so a photo can ride along
func (s *userService) UpdateMe(ctx context.Context, req UpdateMeRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !emailRegex.MatchString(email) {
		return nil, &InvalidEmailError{Email: email}
	}

	form := &blogapi.Form{
		Fields: map[string]string{"name": name, "email": email},
	}
	if req.Photo != nil {
		photo := *req.Photo
		photo.Field = "photo"
		form.Files = append(form.Files, photo)
	}

	var user User
	if err := s.client.Multipart(ctx, http.MethodPatch, "/users/updateMe", form, &user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", user.ID, "photo", req.Photo != nil)
	return &user, nil
}

// List returns one page of users
func (s *userService) List(ctx context.Context, page, size int) (*blogapi.Page[User], error) {
	var result blogapi.Page[User]
	if err := s.client.Get(ctx, "/users", blogapi.PageQuery(page, size), &result); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &result, nil
}

// DeleteUser removes an account
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidUserID
	}
	if err := s.client.Delete(ctx, userPath(id), nil, nil); err != nil {
		return wrapNotFound(fmt.Sprintf("delete user %d", id), err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

func validatePatch(patch Patch) error {
	if patch.Empty() {
		return ErrEmptyPatch
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrNameRequired
	}
	if patch.Email != nil && !emailRegex.MatchString(strings.TrimSpace(*patch.Email)) {
		return &InvalidEmailError{Email: *patch.Email}
	}
	return nil
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}

// wrapNotFound tags a 404 with ErrUserNotFound while keeping the API error matchable.
func wrapNotFound(op string, err error) error {
	if errors.Is(err, blogapi.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrUserNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
