// Package filestore keeps the key mapping in a single JSON document.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// Store serializes every load-mutate-save cycle behind one mutex. Writes go
// to a temp file in the same directory and are renamed into place.
type Store struct {
	path string
	seed func() []domain.APIKey

	mu sync.Mutex
}

// New returns a store backed by path. seed supplies the bootstrap mapping
// written when the file does not exist yet.
func New(path string, seed func() []domain.APIKey) *Store {
	return &Store{path: path, seed: seed}
}

func (s *Store) Load(ctx context.Context) (map[string]domain.APIKey, error) {
	var out map[string]domain.APIKey
	err := s.view(ctx, func(keys map[string]domain.APIKey) error {
		out = maps.Clone(keys)
		return nil
	})
	return out, err
}

func (s *Store) Get(ctx context.Context, key string) (domain.APIKey, error) {
	var out domain.APIKey
	err := s.view(ctx, func(keys map[string]domain.APIKey) error {
		k, ok := keys[key]
		if !ok {
			return domain.ErrNotFound
		}
		out = k
		return nil
	})
	return out, err
}

func (s *Store) Track(ctx context.Context, key string, at time.Time) (domain.APIKey, error) {
	var out domain.APIKey
	err := s.update(ctx, func(keys map[string]domain.APIKey) error {
		k, ok := keys[key]
		if !ok {
			return domain.ErrNotFound
		}
		if !k.Active {
			return domain.ErrInactive
		}
		used := at.UTC()
		k.UsageCount++
		k.LastUsed = &used
		keys[key] = k
		out = k
		return nil
	})
	return out, err
}

func (s *Store) Insert(ctx context.Context, key domain.APIKey) error {
	return s.update(ctx, func(keys map[string]domain.APIKey) error {
		if _, ok := keys[key.Key]; ok {
			return domain.ErrConflict
		}
		keys[key.Key] = key
		return nil
	})
}

func (s *Store) Toggle(ctx context.Context, key string) (domain.APIKey, error) {
	var out domain.APIKey
	err := s.update(ctx, func(keys map[string]domain.APIKey) error {
		k, ok := keys[key]
		if !ok {
			return domain.ErrNotFound
		}
		k.Active = !k.Active
		keys[key] = k
		out = k
		return nil
	})
	return out, err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(keys map[string]domain.APIKey) error {
		if _, ok := keys[key]; !ok {
			return domain.ErrNotFound
		}
		delete(keys, key)
		return nil
	})
}

func (s *Store) view(ctx context.Context, fn func(map[string]domain.APIKey) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.readLocked()
	if err != nil {
		return err
	}
	return fn(keys)
}

// update persists only when fn succeeds.
func (s *Store) update(ctx context.Context, fn func(map[string]domain.APIKey) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.readLocked()
	if err != nil {
		return err
	}
	if err := fn(keys); err != nil {
		return err
	}
	return s.writeLocked(keys)
}

func (s *Store) readLocked() (map[string]domain.APIKey, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.seedLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("read key store: %w", err)
	}

	var raw map[string]entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode key store %s: %w", s.path, err)
	}
	keys := make(map[string]domain.APIKey, len(raw))
	for k, e := range raw {
		keys[k] = e.apiKey(k)
	}
	return keys, nil
}

// entry is the on-disk record. A missing active flag means active and a
// missing role means user.
type entry struct {
	Owner      string      `json:"owner"`
	Role       domain.Role `json:"role"`
	Active     *bool       `json:"active"`
	UsageCount int64       `json:"usageCount"`
	LastUsed   *time.Time  `json:"lastUsed"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func (e entry) apiKey(key string) domain.APIKey {
	k := domain.APIKey{
		Key:        key,
		Owner:      e.Owner,
		Role:       e.Role,
		Active:     e.Active == nil || *e.Active,
		UsageCount: e.UsageCount,
		LastUsed:   e.LastUsed,
		CreatedAt:  e.CreatedAt,
	}
	if k.Role == "" {
		k.Role = domain.RoleUser
	}
	return k
}

func (s *Store) seedLocked() (map[string]domain.APIKey, error) {
	keys := make(map[string]domain.APIKey)
	if s.seed != nil {
		for _, k := range s.seed() {
			keys[k.Key] = k
		}
	}
	if err := s.writeLocked(keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) writeLocked(keys map[string]domain.APIKey) error {
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create key store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp key store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp key store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp key store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp key store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace key store: %w", err)
	}
	return nil
}
