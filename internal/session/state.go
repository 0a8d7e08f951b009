package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"Welog/internal/blogapi"
	"Welog/internal/core/auth"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
)

// MaxRecentSearches is how many recent search queries are remembered.
const MaxRecentSearches = 5

// ErrNotAuthenticated is returned when an operation needs a signed-in user.
var ErrNotAuthenticated = errors.New("not signed in")

// State is the session of one client for the duration of a request. It is
// created by Init and is not safe for concurrent use.
type State struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	user   *users.User
	token  string
}

// Init loads the persisted session from store. A stored user that cannot be
// decoded, a token without a user, or a token whose exp has passed tears the
// persisted session down and yields an anonymous State.
func Init(ctx context.Context, store Store, logger *slog.Logger) (*State, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &State{store: store, logger: logger, now: time.Now}

	token, hasToken, err := store.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	raw, hasUser, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !hasToken && !hasUser {
		return s, nil
	}

	var user users.User
	switch {
	case !hasToken || !hasUser:
		logger.Info("discarding partial session", "has_token", hasToken, "has_user", hasUser)
	case json.Unmarshal([]byte(raw), &user) != nil:
		logger.Warn("discarding session with unreadable user record")
	case tokenExpired(token, s.now()):
		logger.Info("discarding session with expired token", "user_id", user.ID)
	default:
		s.token = token
		s.user = &user
		return s, nil
	}

	if err := s.clear(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// tokenExpired reads exp without verifying the signature; the backend does
// the verification. Tokens that are not JWTs or carry no exp never expire here.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Token returns the bearer token, "" when anonymous.
func (s *State) Token() string { return s.token }

// User returns the signed-in user, nil when anonymous.
func (s *State) User() *users.User { return s.user }

// Authenticated reports whether a user is signed in.
func (s *State) Authenticated() bool { return s.user != nil && s.token != "" }

// UserID returns the signed-in user's id, 0 when anonymous.
func (s *State) UserID() int64 {
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

// Login persists the token from a successful sign-in, fetches the full user
// record with it and persists that too. If the user cannot be fetched the
// token is removed again and the State stays anonymous.
func (s *State) Login(ctx context.Context, signIn *auth.SignInResponse, fetchUser func(ctx context.Context, id int64) (*users.User, error)) (*users.User, error) {
	if signIn == nil || signIn.Token == "" {
		return nil, auth.ErrMissingToken
	}
	if err := s.store.Set(ctx, KeyToken, signIn.Token); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}

	user, err := fetchUser(blogapi.WithToken(ctx, signIn.Token), signIn.ID)
	if err != nil {
		if rbErr := s.store.Delete(ctx, KeyToken); rbErr != nil {
			s.logger.Error("failed to roll back token after login failure", "error", rbErr)
		}
		return nil, fmt.Errorf("fetching signed-in user: %w", err)
	}
	if err := s.putUser(ctx, user); err != nil {
		_ = s.store.Delete(ctx, KeyToken)
		return nil, err
	}

	s.token = signIn.Token
	s.user = user
	s.logger.Info("user signed in", "user_id", user.ID)
	return user, nil
}

// Logout forgets the token and user.
func (s *State) Logout(ctx context.Context) error {
	if s.user != nil {
		s.logger.Info("user signed out", "user_id", s.user.ID)
	}
	return s.clear(ctx)
}

func (s *State) clear(ctx context.Context) error {
	s.token = ""
	s.user = nil
	if err := s.store.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	if err := s.store.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	return nil
}

// UpdateUser merges patch into the held user and persists the result.
func (s *State) UpdateUser(ctx context.Context, patch users.Patch) error {
	if s.user == nil {
		return ErrNotAuthenticated
	}
	updated := patch.Apply(*s.user)
	if err := s.putUser(ctx, &updated); err != nil {
		return err
	}
	s.user = &updated
	return nil
}

func (s *State) putUser(ctx context.Context, u *users.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	return nil
}

// SaveDraft remembers an unsaved post, stamping it with the current time.
func (s *State) SaveDraft(ctx context.Context, d posts.Draft) error {
	d.SavedAt = s.now().UTC()
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	return s.store.Set(ctx, KeyPostDraft, string(raw))
}

// LoadDraft returns the saved draft, nil when there is none. An unreadable
// draft is dropped.
func (s *State) LoadDraft(ctx context.Context) (*posts.Draft, error) {
	raw, ok, err := s.store.Get(ctx, KeyPostDraft)
	if err != nil || !ok {
		return nil, err
	}
	var d posts.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		s.logger.Warn("dropping unreadable post draft", "error", err)
		return nil, s.store.Delete(ctx, KeyPostDraft)
	}
	return &d, nil
}

// ClearDraft forgets the saved draft.
func (s *State) ClearDraft(ctx context.Context) error {
	return s.store.Delete(ctx, KeyPostDraft)
}

// RecentSearches returns remembered queries, newest first.
func (s *State) RecentSearches(ctx context.Context) []string {
	raw, ok, err := s.store.Get(ctx, KeyRecentSearches)
	if err != nil || !ok {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// PushRecentSearch moves query to the front of the recent searches, dropping
// duplicates and keeping at most MaxRecentSearches.
func (s *State) PushRecentSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	list := []string{query}
	for _, q := range s.RecentSearches(ctx) {
		if q != query && len(list) < MaxRecentSearches {
			list = append(list, q)
		}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, KeyRecentSearches, string(raw))
}

// ClearRecentSearches forgets every recent search.
func (s *State) ClearRecentSearches(ctx context.Context) error {
	return s.store.Delete(ctx, KeyRecentSearches)
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the State carried by ctx, nil if there is none.
func FromContext(ctx context.Context) *State {
	s, _ := ctx.Value(contextKey{}).(*State)
	return s
}

// TokenFromContext returns the bearer token of the State in ctx. It is the
// blogapi.Config.Token hook.
func TokenFromContext(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.token
	}
	return ""
}

// Expire is the blogapi.Config.OnUnauthorized hook: the backend rejected the
// token, so the session carried by ctx is torn down.
func Expire(ctx context.Context) {
	s := FromContext(ctx)
	if s == nil {
		return
	}
	if err := s.Logout(ctx); err != nil {
		s.logger.Warn("failed to clear expired session", "error", err)
	}
}
