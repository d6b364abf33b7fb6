package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
	"github.com/atvirokodosprendimai/mutanox/internal/core/ports"
)

const (
	DefaultKeyPrefix = "MutanoX-"
	DefaultTestKey   = "test-key"

	keyRandomBytes = 8
	issueAttempts  = 3
)

type KeyService struct {
	store    ports.KeyStore
	adminKey string
	prefix   string
	now      func() time.Time
	random   io.Reader
}

func NewKeyService(store ports.KeyStore, adminKey, prefix string) *KeyService {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &KeyService{store: store, adminKey: adminKey, prefix: prefix, now: time.Now, random: rand.Reader}
}

// SeedKeys is the bootstrap mapping written when no store exists yet.
func SeedKeys(adminKey, testKey string, at time.Time) []domain.APIKey {
	if testKey == "" {
		testKey = DefaultTestKey
	}
	at = at.UTC()
	return []domain.APIKey{
		{Key: adminKey, Owner: "Admin", Role: domain.RoleAdmin, Active: true, CreatedAt: at},
		{Key: testKey, Owner: "Teste", Role: domain.RoleUser, Active: true, CreatedAt: at},
	}
}

func (s *KeyService) List(ctx context.Context) (map[string]domain.APIKey, error) {
	keys, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	return keys, nil
}

// Issue creates an active key with a fresh random value and zero usage.
func (s *KeyService) Issue(ctx context.Context, owner, role string) (domain.APIKey, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return domain.APIKey{}, domain.NewInputError(domain.ErrInvalidInput, "Owner required")
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.APIKey{}, domain.NewInputError(domain.ErrInvalidInput, "Invalid role")
	}

	for attempt := 0; attempt < issueAttempts; attempt++ {
		token, err := s.generate()
		if err != nil {
			return domain.APIKey{}, err
		}
		key := domain.APIKey{
			Key:       token,
			Owner:     owner,
			Role:      parsedRole,
			Active:    true,
			CreatedAt: s.now().UTC(),
		}
		err = s.store.Insert(ctx, key)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return domain.APIKey{}, fmt.Errorf("insert key: %w", err)
		}
		return key, nil
	}
	return domain.APIKey{}, fmt.Errorf("issue key: %w", domain.ErrConflict)
}

// Toggle flips the active flag. The reserved admin key is not special-cased.
func (s *KeyService) Toggle(ctx context.Context, key string) (domain.APIKey, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.APIKey{}, domain.ErrNotFound
	}
	return s.store.Toggle(ctx, key)
}

func (s *KeyService) Revoke(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrNotFound
	}
	if key == s.adminKey {
		return domain.ErrForbidden
	}
	return s.store.Delete(ctx, key)
}

func (s *KeyService) generate() (string, error) {
	buf := make([]byte, keyRandomBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return s.prefix + hex.EncodeToString(buf), nil
}
