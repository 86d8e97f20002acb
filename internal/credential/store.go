package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Store is the single owner of the current credential pair. Reads are served from memory;
// every write goes through the backend before it becomes visible.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	profile string
	pair    Pair
}

// Open creates a store for profile and loads whatever the backend already holds.
func Open(ctx context.Context, backend Backend, profile string) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("credential store: backend is nil")
	}
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return nil, fmt.Errorf("credential store: profile is empty")
	}
	s := &Store{backend: backend, profile: profile}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Profile returns the key this store persists under.
func (s *Store) Profile() string { return s.profile }

// Get returns the credential of the given kind and whether it is present.
func (s *Store) Get(kind Kind) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := s.pair.get(kind)
	return v, v != ""
}

// Pair returns a copy of both credentials.
func (s *Store) Pair() Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

// Set overwrites one credential and persists the result before returning.
func (s *Store) Set(ctx context.Context, kind Kind, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, s.pair.with(kind, value))
}

// SetPair overwrites both credentials in a single backend write.
func (s *Store) SetPair(ctx context.Context, pair Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, pair)
}

func (s *Store) saveLocked(ctx context.Context, next Pair) error {
	if next.Empty() {
		return s.clearLocked(ctx)
	}
	if err := s.backend.Save(ctx, s.profile, next); err != nil {
		return fmt.Errorf("credential store: persist: %w", err)
	}
	s.pair = next
	return nil
}

// Clear removes both credentials. Calling it on an empty store is a no-op that still
// asks the backend to delete, so stale durable state is never left behind.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

func (s *Store) clearLocked(ctx context.Context) error {
	s.pair = Pair{}
	if err := s.backend.Delete(ctx, s.profile); err != nil {
		return fmt.Errorf("credential store: delete: %w", err)
	}
	return nil
}

// Reload replaces the in-memory pair with what the backend holds.
func (s *Store) Reload(ctx context.Context) error {
	pair, err := s.backend.Load(ctx, s.profile)
	if err != nil {
		return fmt.Errorf("credential store: load: %w", err)
	}
	s.mu.Lock()
	changed := pair != s.pair
	s.pair = pair
	s.mu.Unlock()
	if changed {
		log.WithField("profile", s.profile).Debug("credential store reloaded")
	}
	return nil
}

// Token implements oauth2.TokenSource over the current access credential.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair.Access == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{
		AccessToken:  s.pair.Access,
		RefreshToken: s.pair.Refresh,
		TokenType:    "Bearer",
	}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)
