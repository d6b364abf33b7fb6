package usecase

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// memKeyStore is a minimal in-memory ports.KeyStore for service tests.
type memKeyStore struct {
	mu       sync.Mutex
	keys     map[string]domain.APIKey
	insertFn func(ctx context.Context, key domain.APIKey) error
}

func newMemKeyStore(keys ...domain.APIKey) *memKeyStore {
	s := &memKeyStore{keys: make(map[string]domain.APIKey)}
	for _, k := range keys {
		s.keys[k.Key] = k
	}
	return s
}

func (s *memKeyStore) Load(context.Context) (map[string]domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.keys), nil
}

func (s *memKeyStore) Get(_ context.Context, key string) (domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	return k, nil
}

func (s *memKeyStore) Track(_ context.Context, key string, at time.Time) (domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	if !k.Active {
		return domain.APIKey{}, domain.ErrInactive
	}
	k.UsageCount++
	k.LastUsed = &at
	s.keys[key] = k
	return k, nil
}

func (s *memKeyStore) Insert(ctx context.Context, key domain.APIKey) error {
	if s.insertFn != nil {
		if err := s.insertFn(ctx, key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key.Key]; ok {
		return domain.ErrConflict
	}
	s.keys[key.Key] = key
	return nil
}

func (s *memKeyStore) Toggle(_ context.Context, key string) (domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[key]
	if !ok {
		return domain.APIKey{}, domain.ErrNotFound
	}
	k.Active = !k.Active
	s.keys[key] = k
	return k, nil
}

func (s *memKeyStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.keys, key)
	return nil
}

type stubProvider struct {
	lookupFn func(ctx context.Context, kind domain.QueryKind, term string) (domain.ProviderPayload, error)
	calls    int
}

func (p *stubProvider) Lookup(ctx context.Context, kind domain.QueryKind, term string) (domain.ProviderPayload, error) {
	p.calls++
	if p.lookupFn != nil {
		return p.lookupFn(ctx, kind, term)
	}
	return domain.ProviderPayload{}, &domain.ProviderError{Category: domain.ProviderOutage, Message: "API retornou status 503"}
}
