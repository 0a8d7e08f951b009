package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"Welog/internal/session"
)

// SessionMiddleware loads the client state of every request into a
// session.State and carries it in the request context.
type SessionMiddleware struct {
	backend session.Backend
	logger  *slog.Logger
}

// NewSessionMiddleware creates a session middleware over backend.
func NewSessionMiddleware(backend session.Backend, logger *slog.Logger) *SessionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionMiddleware{backend: backend, logger: logger}
}

// LoadSession opens the client store and initialises the session. A store
// that cannot be opened is a server error; a stored session that fails the
// consistency checks is cleared by session.Init and the request continues
// anonymously.
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, err := m.backend.Open(w, r)
		if err != nil {
			m.logger.Error("failed to open client state", "path", r.URL.Path, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		state, err := session.Init(r.Context(), store, m.logger)
		if err != nil {
			m.logger.Error("failed to initialise session", "path", r.URL.Path, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), state)))
	})
}

// RequireAuth redirects anonymous clients to the login page, remembering the
// page they asked for. It must run after LoadSession.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := session.FromContext(r.Context())
		if state == nil || !state.Authenticated() {
			http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginURL returns the login page URL that comes back to r after sign-in.
// Only GET requests are remembered; form posts return to the home page.
func LoginURL(r *http.Request) string {
	if r.Method != http.MethodGet || r.URL.Path == "/login" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(r.URL.RequestURI())
}
