package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
	"github.com/atvirokodosprendimai/mutanox/internal/core/ports"
)

type AuthService struct {
	store     ports.KeyStore
	telemetry *Telemetry
	adminKey  string
	now       func() time.Time
}

func NewAuthService(store ports.KeyStore, telemetry *Telemetry, adminKey string) *AuthService {
	return &AuthService{store: store, telemetry: telemetry, adminKey: adminKey, now: time.Now}
}

// Authenticate accepts an existing, active key and records the use. A
// rejected key leaves every counter untouched.
func (s *AuthService) Authenticate(ctx context.Context, key string) (domain.Principal, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	apiKey, err := s.store.Track(ctx, key, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInactive) {
			return domain.Principal{}, domain.ErrUnauthorized
		}
		return domain.Principal{}, err
	}

	s.telemetry.CountRequest()
	return domain.PrincipalFor(apiKey), nil
}

// IsReservedAdmin compares key against the reserved admin key without
// touching the store.
func (s *AuthService) IsReservedAdmin(key string) bool {
	if key == "" || s.adminKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) == 1
}
