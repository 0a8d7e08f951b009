// Package session holds the signed-in user, the bearer token and the small
// client-side conveniences (post draft, recent searches) of one browser.
package session

import (
	"context"
	"net/http"
	"sync"
)

// Keys of the persisted client state.
const (
	KeyToken          = "token"
	KeyUser           = "user"
	KeyPostDraft      = "postDraft"
	KeyRecentSearches = "recentSearches"
)

// Store is the key/value state of one client.
type Store interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend opens the Store of the client making a request.
type Backend interface {
	Open(w http.ResponseWriter, r *http.Request) (Store, error)
}

// ClientStore keeps the state of many clients, keyed by client id.
type ClientStore interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
}

// Scope narrows a ClientStore to one client.
func Scope(cs ClientStore, clientID string) Store {
	return scoped{store: cs, clientID: clientID}
}

type scoped struct {
	store    ClientStore
	clientID string
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.clientID, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.clientID, key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.clientID, key)
}

// MemoryStore keeps client state in process memory. It is meant for tests and
// the CLI; state is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	clients map[string]map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clients: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.clients[clientID][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clients[clientID] == nil {
		m.clients[clientID] = make(map[string]string)
	}
	m.clients[clientID][key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, clientID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients[clientID], key)
	return nil
}

// NewMemory returns a standalone single-client store.
func NewMemory() Store {
	return Scope(NewMemoryStore(), "local")
}
