package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Welog/internal/blogapi"
	"Welog/internal/core/auth"
	"Welog/internal/core/posts"
	"Welog/internal/core/users"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ada@example.com",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func seed(t *testing.T, store Store, token string, user any) {
	t.Helper()
	ctx := context.Background()
	if token != "" {
		require.NoError(t, store.Set(ctx, KeyToken, token))
	}
	switch u := user.(type) {
	case string:
		require.NoError(t, store.Set(ctx, KeyUser, u))
	case *users.User:
		raw, err := json.Marshal(u)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, KeyUser, string(raw)))
	}
}

func assertCleared(t *testing.T, store Store) {
	t.Helper()
	_, hasToken, _ := store.Get(context.Background(), KeyToken)
	_, hasUser, _ := store.Get(context.Background(), KeyUser)
	assert.False(t, hasToken, "token should be removed")
	assert.False(t, hasUser, "user should be removed")
}

var ada = &users.User{ID: 7, Name: "Ada", Email: "ada@example.com", Roles: []string{users.RoleUser}}

func TestInit(t *testing.T) {
	tests := []struct {
		name     string
		token    func(t *testing.T) string
		user     any
		wantAuth bool
	}{
		{name: "empty store", token: func(*testing.T) string { return "" }, user: nil, wantAuth: false},
		{name: "valid session", token: func(t *testing.T) string { return signedToken(t, time.Now().Add(time.Hour)) }, user: ada, wantAuth: true},
		{name: "opaque token is kept", token: func(*testing.T) string { return "opaque-token" }, user: ada, wantAuth: true},
		{name: "expired token", token: func(t *testing.T) string { return signedToken(t, time.Now().Add(-time.Minute)) }, user: ada, wantAuth: false},
		{name: "unreadable user", token: func(*testing.T) string { return "opaque-token" }, user: "{not json", wantAuth: false},
		{name: "token without user", token: func(*testing.T) string { return "opaque-token" }, user: nil, wantAuth: false},
		{name: "user without token", token: func(*testing.T) string { return "" }, user: ada, wantAuth: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemory()
			seed(t, store, tt.token(t), tt.user)

			s, err := Init(context.Background(), store, nil)

			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, s.Authenticated())
			if tt.wantAuth {
				assert.Equal(t, int64(7), s.UserID())
				return
			}
			assert.Nil(t, s.User())
			assert.Empty(t, s.Token())
			assertCleared(t, store)
		})
	}
}

func TestLogin(t *testing.T) {
	store := NewMemory()
	s, err := Init(context.Background(), store, nil)
	require.NoError(t, err)

	var tokenSeen string
	fetch := func(ctx context.Context, id int64) (*users.User, error) {
		assert.Equal(t, int64(7), id)
		tokenSeen = blogapiToken(ctx)
		return ada, nil
	}

	user, err := s.Login(context.Background(), &auth.SignInResponse{Token: "tok", ID: 7}, fetch)

	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "tok", tokenSeen, "user is fetched with the new token")
	assert.True(t, s.Authenticated())

	again, err := Init(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.User().Name)
	assert.Equal(t, "tok", again.Token())
}

func TestLogin_FetchFailureRollsBackToken(t *testing.T) {
	store := NewMemory()
	s, err := Init(context.Background(), store, nil)
	require.NoError(t, err)

	_, err = s.Login(context.Background(), &auth.SignInResponse{Token: "tok", ID: 7},
		func(context.Context, int64) (*users.User, error) { return nil, blogapi.ErrServer })

	assert.ErrorIs(t, err, blogapi.ErrServer)
	assert.False(t, s.Authenticated())
	assertCleared(t, store)
}

func TestLogin_MissingToken(t *testing.T) {
	s, err := Init(context.Background(), NewMemory(), nil)
	require.NoError(t, err)

	_, err = s.Login(context.Background(), &auth.SignInResponse{ID: 7}, nil)
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestLogoutAndExpire(t *testing.T) {
	store := NewMemory()
	seed(t, store, "tok", ada)
	s, err := Init(context.Background(), store, nil)
	require.NoError(t, err)
	require.True(t, s.Authenticated())

	ctx := NewContext(context.Background(), s)
	assert.Equal(t, "tok", TokenFromContext(ctx))

	Expire(ctx)

	assert.False(t, s.Authenticated())
	assert.Empty(t, TokenFromContext(ctx))
	assertCleared(t, store)

	Expire(context.Background())
}

func TestUpdateUser(t *testing.T) {
	store := NewMemory()
	seed(t, store, "tok", ada)
	s, err := Init(context.Background(), store, nil)
	require.NoError(t, err)

	name := "Ada L."
	require.NoError(t, s.UpdateUser(context.Background(), users.Patch{Name: &name}))

	assert.Equal(t, "Ada L.", s.User().Name)
	assert.Equal(t, "ada@example.com", s.User().Email, "unset fields are kept")
	reloaded, err := Init(context.Background(), store, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", reloaded.User().Name)

	anon, err := Init(context.Background(), NewMemory(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, anon.UpdateUser(context.Background(), users.Patch{Name: &name}), ErrNotAuthenticated)
}

func TestDrafts(t *testing.T) {
	store := NewMemory()
	s, err := Init(context.Background(), store, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	d, err := s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, s.SaveDraft(ctx, posts.Draft{Title: "Hello", Content: "Body text here"}))
	d, err = s.LoadDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Hello", d.Title)
	assert.Equal(t, 2024, d.SavedAt.Year())

	raw, _, _ := store.Get(ctx, KeyPostDraft)
	assert.Contains(t, raw, `"timestamp"`)

	require.NoError(t, s.ClearDraft(ctx))
	d, err = s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)

	require.NoError(t, store.Set(ctx, KeyPostDraft, "garbage"))
	d, err = s.LoadDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, d)
	_, ok, _ := store.Get(ctx, KeyPostDraft)
	assert.False(t, ok, "unreadable draft is dropped")
}

func TestRecentSearches(t *testing.T) {
	s, err := Init(context.Background(), NewMemory(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, q := range []string{"go", "rust", " go ", "", "zig", "java", "c", "lisp"} {
		require.NoError(t, s.PushRecentSearch(ctx, q))
	}

	assert.Equal(t, []string{"lisp", "c", "java", "zig", "go"}, s.RecentSearches(ctx))

	require.NoError(t, s.ClearRecentSearches(ctx))
	assert.Empty(t, s.RecentSearches(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	assert.Empty(t, TokenFromContext(context.Background()))
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Second)), now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Hour)), now))
	assert.False(t, tokenExpired("not-a-jwt", now))
}

// blogapiToken reads the token the State attached for the user fetch by
// sending a request through a client whose transport records it.
func blogapiToken(ctx context.Context) string {
	var seen string
	client, err := blogapi.New(blogapi.Config{
		BaseURL: "http://welog.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			return nil, errors.New("recorded")
		})},
	})
	if err != nil {
		return ""
	}
	_ = client.Get(ctx, "/users/7", nil, nil)
	return seen
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
