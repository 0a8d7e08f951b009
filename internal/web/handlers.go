package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"Welog/internal/blogapi"
	"Welog/internal/core/auth"
	"Welog/internal/core/comments"
	"Welog/internal/core/likes"
	"Welog/internal/core/notifications"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
	"Welog/internal/session"
)

// Deps are the services the pages call.
type Deps struct {
	Auth          auth.Service
	Posts         posts.Service
	Users         users.Service
	Comments      comments.Service
	Likes         likes.Service
	Notifications notifications.Service
	Templates     *Templates
	Logger        *slog.Logger
	// MaxCommentLevel is the deepest comment level that offers a reply form.
	MaxCommentLevel int
	// PageSize is the number of posts per list page.
	PageSize int
}

// Handlers provides the HTTP handlers of the Welog pages.
type Handlers struct {
	auth          auth.Service
	posts         posts.Service
	users         users.Service
	comments      comments.Service
	likes         likes.Service
	notifications notifications.Service
	templates     *Templates
	logger        *slog.Logger
	maxLevel      int
	pageSize      int
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pageSize := d.PageSize
	if pageSize <= 0 {
		pageSize = 12
	}
	return &Handlers{
		auth:          d.Auth,
		posts:         d.Posts,
		users:         d.Users,
		comments:      d.Comments,
		likes:         d.Likes,
		notifications: d.Notifications,
		templates:     d.Templates,
		logger:        logger,
		maxLevel:      d.MaxCommentLevel,
		pageSize:      pageSize,
	}
}

// Page is embedded in every page's data.
type Page struct {
	Viewer *users.User
	Title  string
	// Error is the inline error banner, "" when the last action succeeded.
	Error string
	// Notice is a one-line confirmation, e.g. after saving a draft.
	Notice string
}

func (h *Handlers) page(r *http.Request, title string) Page {
	p := Page{Title: title}
	if s := session.FromContext(r.Context()); s != nil {
		p.Viewer = s.User()
	}
	return p
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.templates.Render(w, status, name, data); err != nil {
		h.logger.Error("failed to render page", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// state returns the session of the request. LoadSession always installs one.
func state(r *http.Request) *session.State {
	return session.FromContext(r.Context())
}

// seeOther finishes a successful form post.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// ErrorPageData is the data of error.html.
type ErrorPageData struct {
	Page
	Status  int
	Message string
}

// fail answers a request whose upstream call failed. An expired session goes
// back to the login page; the session hook has already cleared it.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, blogapi.ErrSessionExpired) {
		seeOther(w, r, "/login?expired=1")
		return
	}

	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	data := ErrorPageData{Page: h.page(r, http.StatusText(status)), Status: status, Message: message}
	h.render(w, r, status, "error.html", data)
}

// classify maps an error to the status and message shown to the user.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, blogapi.ErrNotFound), posts.IsNotFound(err),
		errors.Is(err, users.ErrUserNotFound), comments.IsNotFound(err):
		return http.StatusNotFound, "We couldn't find what you were looking for."
	case errors.Is(err, blogapi.ErrForbidden), errors.Is(err, comments.ErrNotAuthorized),
		errors.Is(err, comments.ErrReplyNotAllowed):
		return http.StatusForbidden, "You don't have permission to do that."
	case errors.Is(err, blogapi.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again."
	case errors.Is(err, blogapi.ErrBadRequest), errors.Is(err, blogapi.ErrConflict),
		errors.Is(err, blogapi.ErrPayloadTooLarge):
		return http.StatusBadRequest, messageFor(err)
	case isValidation(err):
		return http.StatusUnprocessableEntity, messageFor(err)
	case errors.Is(err, blogapi.ErrServer):
		return http.StatusBadGateway, "The blog service is having trouble. Please try again later."
	}
	var apiErr *blogapi.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, messageFor(err)
	}
	return http.StatusBadGateway, "The blog service could not be reached. Please try again later."
}

func isValidation(err error) bool {
	return posts.IsValidationError(err) ||
		comments.IsValidationError(err) ||
		auth.IsValidationError(err) ||
		users.IsValidationError(err) ||
		errors.Is(err, notifications.ErrInvalidID)
}

// messageFor returns the inline message of a failed action: the backend's
// own message when it sent one, the validation error text, or a generic line.
func messageFor(err error) string {
	if msg := blogapi.Message(err); msg != "" {
		return msg
	}
	var valErr *posts.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	if isValidation(err) {
		return capitalize(err.Error())
	}
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, comments.ErrInFlight), errors.Is(err, likes.ErrInFlight):
		return "Please wait for the previous request to finish."
	case errors.Is(err, blogapi.ErrPayloadTooLarge):
		return "That file is too large."
	}
	return "Something went wrong. Please try again."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// idParam parses a positive integer route parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// pageParam parses the 0-based ?page= query value.
func pageParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// localPath accepts only same-site absolute paths as redirect targets.
func localPath(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
