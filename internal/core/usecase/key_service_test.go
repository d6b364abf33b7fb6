package usecase

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

var issuedKeyPattern = regexp.MustCompile(`^MutanoX-[0-9a-f]{16}$`)

func TestSeedKeys(t *testing.T) {
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	keys := SeedKeys("root", "", at)

	require.Len(t, keys, 2)
	assert.Equal(t, domain.APIKey{Key: "root", Owner: "Admin", Role: domain.RoleAdmin, Active: true, CreatedAt: at}, keys[0])
	assert.Equal(t, domain.APIKey{Key: DefaultTestKey, Owner: "Teste", Role: domain.RoleUser, Active: true, CreatedAt: at}, keys[1])
}

func TestKeyServiceIssue(t *testing.T) {
	store := newMemKeyStore()
	svc := NewKeyService(store, "root", "")

	key, err := svc.Issue(context.Background(), "  Carla ", "")
	require.NoError(t, err)
	assert.Regexp(t, issuedKeyPattern, key.Key)
	assert.Equal(t, "Carla", key.Owner)
	assert.Equal(t, domain.RoleUser, key.Role)
	assert.True(t, key.Active)
	assert.Zero(t, key.UsageCount)
	assert.Nil(t, key.LastUsed)

	stored, err := store.Get(context.Background(), key.Key)
	require.NoError(t, err)
	assert.Equal(t, key, stored)
}

func TestKeyServiceIssueAdminRole(t *testing.T) {
	svc := NewKeyService(newMemKeyStore(), "root", "")

	key, err := svc.Issue(context.Background(), "Ops", "admin")
	require.NoError(t, err)
	assert.True(t, key.IsAdmin())
}

func TestKeyServiceIssueValidation(t *testing.T) {
	svc := NewKeyService(newMemKeyStore(), "root", "")

	_, err := svc.Issue(context.Background(), " ", "user")
	var inputErr *domain.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "Owner required", inputErr.Message)

	_, err = svc.Issue(context.Background(), "Carla", "superuser")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKeyServiceIssueRetriesOnCollision(t *testing.T) {
	store := newMemKeyStore(domain.APIKey{Key: "MutanoX-0000000000000000", Owner: "x", Active: true})
	svc := NewKeyService(store, "root", "")
	svc.random = bytes.NewReader(append(make([]byte, keyRandomBytes), bytes.Repeat([]byte{0xab}, keyRandomBytes)...))

	key, err := svc.Issue(context.Background(), "Dani", "")
	require.NoError(t, err)
	assert.Equal(t, "MutanoX-abababababababab", key.Key)
}

func TestKeyServiceIssueStoreFailure(t *testing.T) {
	store := newMemKeyStore()
	store.insertFn = func(context.Context, domain.APIKey) error { return errors.New("disk full") }
	svc := NewKeyService(store, "root", "")

	_, err := svc.Issue(context.Background(), "Dani", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestKeyServiceToggle(t *testing.T) {
	store := newMemKeyStore(domain.APIKey{Key: "k1", Owner: "Eva", Active: true})
	svc := NewKeyService(store, "root", "")

	key, err := svc.Toggle(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, key.Active)

	key, err = svc.Toggle(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, key.Active)

	_, err = svc.Toggle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Toggle(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKeyServiceRevoke(t *testing.T) {
	store := newMemKeyStore(
		domain.APIKey{Key: "root", Owner: "Admin", Role: domain.RoleAdmin, Active: true},
		domain.APIKey{Key: "k1", Owner: "Eva", Active: true},
	)
	svc := NewKeyService(store, "root", "")

	assert.ErrorIs(t, svc.Revoke(context.Background(), "root"), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Revoke(context.Background(), ""), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Revoke(context.Background(), "nope"), domain.ErrNotFound)
	require.NoError(t, svc.Revoke(context.Background(), "k1"))

	keys, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	assert.Contains(t, keys, "root")
}
