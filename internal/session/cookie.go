package session

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// MinCookieSecretLength is the shortest accepted cookie signing secret.
const MinCookieSecretLength = 32

const (
	stateCookie  = "welog_state"
	clientCookie = "welog_client"
	clientIDKey  = "id"
	draftCookie  = "welog_draft"

	// draftChunkSize keeps each draft cookie, attributes included, under the
	// 4096 bytes browsers accept.
	draftChunkSize = 3800
	maxDraftChunks = 16
)

// ErrValueTooLarge is returned when a value does not fit in the cookies that
// carry it.
var ErrValueTooLarge = errors.New("value too large for cookie storage")

// ErrWeakSecret is returned when the cookie secret is too short to sign with.
var ErrWeakSecret = fmt.Errorf("cookie secret must be at least %d bytes", MinCookieSecretLength)

// CookieOptions tunes the cookies written by the backends.
type CookieOptions struct {
	Secret string
	// MaxAge in seconds; 0 uses 30 days.
	MaxAge int
	Secure bool
}

func newCookieStore(opts CookieOptions) (*sessions.CookieStore, error) {
	if len(opts.Secret) < MinCookieSecretLength {
		return nil, ErrWeakSecret
	}
	store := sessions.NewCookieStore([]byte(opts.Secret))
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * 60 * 60
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// CookieStore keeps the client state in signed cookies. It is the default
// backend. The post draft lives in its own compressed cookies, split into
// chunks, so the state cookie stays small.
type CookieStore struct {
	cookies *sessions.CookieStore
	drafts  *draftCookies
}

// NewCookieStore creates the signed-cookie backend.
func NewCookieStore(opts CookieOptions) (*CookieStore, error) {
	cookies, err := newCookieStore(opts)
	if err != nil {
		return nil, err
	}
	return &CookieStore{cookies: cookies, drafts: newDraftCookies(opts.Secret, cookies.Options)}, nil
}

// Open implements Backend. A cookie that no longer verifies is replaced by an
// empty state.
func (c *CookieStore) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	sess, err := c.cookies.Get(r, stateCookie)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("opening state cookie: %w", err)
	}
	return &cookieState{session: sess, drafts: c.drafts, w: w, r: r}, nil
}

type cookieState struct {
	session *sessions.Session
	drafts  *draftCookies
	w       http.ResponseWriter
	r       *http.Request

	// draft caches the draft cookies once read or written in this request.
	draft     string
	hasDraft  bool
	draftRead bool
}

func (s *cookieState) Get(_ context.Context, key string) (string, bool, error) {
	if key == KeyPostDraft {
		s.loadDraft()
		return s.draft, s.hasDraft, nil
	}
	v, ok := s.session.Values[key].(string)
	return v, ok, nil
}

func (s *cookieState) Set(_ context.Context, key, value string) error {
	if key == KeyPostDraft {
		s.loadDraft()
		if err := s.drafts.write(s.w, s.r, value); err != nil {
			return err
		}
		s.draft, s.hasDraft = value, true
		return nil
	}
	s.session.Values[key] = value
	return s.save()
}

func (s *cookieState) Delete(_ context.Context, key string) error {
	if key == KeyPostDraft {
		s.loadDraft()
		if !s.hasDraft {
			return nil
		}
		s.drafts.clear(s.w, s.r)
		s.draft, s.hasDraft = "", false
		return nil
	}
	if _, ok := s.session.Values[key]; !ok {
		return nil
	}
	delete(s.session.Values, key)
	return s.save()
}

func (s *cookieState) loadDraft() {
	if s.draftRead {
		return
	}
	s.draft, s.hasDraft = s.drafts.read(s.r)
	s.draftRead = true
}

// save rewrites the cookie; only the latest Set-Cookie for it is kept.
func (s *cookieState) save() error {
	dropSetCookie(s.w.Header(), stateCookie)
	return s.session.Save(s.r, s.w)
}

func dropSetCookie(h http.Header, name string) {
	var kept []string
	for _, c := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(c, name+"=") {
			kept = append(kept, c)
		}
	}
	h.Del("Set-Cookie")
	for _, c := range kept {
		h.Add("Set-Cookie", c)
	}
}

// draftCookies spreads one gzip-compressed, signed value over the numbered
// cookies welog_draft.0, welog_draft.1 and so on.
type draftCookies struct {
	codec   *securecookie.SecureCookie
	options sessions.Options
}

func newDraftCookies(secret string, options *sessions.Options) *draftCookies {
	codec := securecookie.New([]byte(secret), nil).
		MaxLength(0).
		MaxAge(options.MaxAge).
		SetSerializer(securecookie.NopEncoder{})
	return &draftCookies{codec: codec, options: *options}
}

func chunkName(i int) string {
	return fmt.Sprintf("%s.%d", draftCookie, i)
}

// read reassembles the value from the request. Missing, tampered or
// truncated chunks read as no value.
func (d *draftCookies) read(r *http.Request) (string, bool) {
	var encoded strings.Builder
	for i := 0; i < maxDraftChunks; i++ {
		c, err := r.Cookie(chunkName(i))
		if err != nil {
			break
		}
		encoded.WriteString(c.Value)
	}
	if encoded.Len() == 0 {
		return "", false
	}

	var packed []byte
	if err := d.codec.Decode(draftCookie, encoded.String(), &packed); err != nil {
		return "", false
	}
	zr, err := gzip.NewReader(bytes.NewReader(packed))
	if err != nil {
		return "", false
	}
	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// write replaces the value. It returns ErrValueTooLarge, leaving the
// response untouched, when the value needs more than maxDraftChunks cookies.
func (d *draftCookies) write(w http.ResponseWriter, r *http.Request, value string) error {
	var packed bytes.Buffer
	zw := gzip.NewWriter(&packed)
	if _, err := zw.Write([]byte(value)); err != nil {
		return fmt.Errorf("compressing draft: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing draft: %w", err)
	}
	encoded, err := d.codec.Encode(draftCookie, packed.Bytes())
	if err != nil {
		return fmt.Errorf("encoding draft cookie: %w", err)
	}

	n := (len(encoded) + draftChunkSize - 1) / draftChunkSize
	if n > maxDraftChunks {
		return ErrValueTooLarge
	}
	d.dropPending(w)
	for i := 0; i < n; i++ {
		chunk := encoded[i*draftChunkSize : min((i+1)*draftChunkSize, len(encoded))]
		http.SetCookie(w, sessions.NewCookie(chunkName(i), chunk, &d.options))
	}
	d.expire(w, r, n)
	return nil
}

func (d *draftCookies) clear(w http.ResponseWriter, r *http.Request) {
	d.dropPending(w)
	d.expire(w, r, 0)
}

// expire removes the chunks from index from on that the browser still holds.
func (d *draftCookies) expire(w http.ResponseWriter, r *http.Request, from int) {
	gone := d.options
	gone.MaxAge = -1
	for i := from; i < maxDraftChunks; i++ {
		if _, err := r.Cookie(chunkName(i)); err != nil {
			return
		}
		http.SetCookie(w, sessions.NewCookie(chunkName(i), "", &gone))
	}
}

// dropPending forgets draft cookies already queued on the response.
func (d *draftCookies) dropPending(w http.ResponseWriter) {
	for i := 0; i < maxDraftChunks; i++ {
		dropSetCookie(w.Header(), chunkName(i))
	}
}

// ClientBackend keeps only a random client id in a signed cookie and the
// state itself in a server-side ClientStore.
type ClientBackend struct {
	cookies *sessions.CookieStore
	store   ClientStore
}

// NewClientBackend creates a backend over store.
func NewClientBackend(store ClientStore, opts CookieOptions) (*ClientBackend, error) {
	if store == nil {
		return nil, errors.New("client store is required")
	}
	cookies, err := newCookieStore(opts)
	if err != nil {
		return nil, err
	}
	return &ClientBackend{cookies: cookies, store: store}, nil
}

// Open implements Backend, issuing a client id on first contact.
func (b *ClientBackend) Open(w http.ResponseWriter, r *http.Request) (Store, error) {
	sess, err := b.cookies.Get(r, clientCookie)
	if err != nil && sess == nil {
		return nil, fmt.Errorf("opening client cookie: %w", err)
	}
	id, _ := sess.Values[clientIDKey].(string)
	if _, parseErr := uuid.Parse(id); parseErr != nil {
		id = uuid.NewString()
		sess.Values[clientIDKey] = id
		if err := sess.Save(r, w); err != nil {
			return nil, fmt.Errorf("saving client cookie: %w", err)
		}
	}
	return Scope(b.store, id), nil
}
