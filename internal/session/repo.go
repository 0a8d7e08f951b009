package session

import (
	"context"
	"errors"
	"time"
)

// ErrStateNotFound is returned by a ClientStateRepository for a missing key.
var ErrStateNotFound = errors.New("client state not found")

// ClientStateRepository is durable storage for client state.
type ClientStateRepository interface {
	// Get returns ErrStateNotFound when the key is absent.
	Get(ctx context.Context, clientID, key string) (string, error)
	Upsert(ctx context.Context, clientID, key, value string) error
	Delete(ctx context.Context, clientID, key string) error
	// DeleteIdle removes clients not written since before.
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)
}

// RepoStore adapts a ClientStateRepository to ClientStore.
type RepoStore struct {
	repo ClientStateRepository
}

// NewRepoStore creates a RepoStore.
func NewRepoStore(repo ClientStateRepository) *RepoStore {
	return &RepoStore{repo: repo}
}

func (s *RepoStore) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	v, err := s.repo.Get(ctx, clientID, key)
	if errors.Is(err, ErrStateNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RepoStore) Set(ctx context.Context, clientID, key, value string) error {
	return s.repo.Upsert(ctx, clientID, key, value)
}

func (s *RepoStore) Delete(ctx context.Context, clientID, key string) error {
	return s.repo.Delete(ctx, clientID, key)
}
