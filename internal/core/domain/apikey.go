package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps the admin form value to a role. Empty means user.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: role %q", ErrInvalidInput, raw)
	}
}

// APIKey is one entry of the key store. Key is the map key on the wire, so
// it is not repeated inside the JSON object.
type APIKey struct {
	Key        string     `json:"-"`
	Owner      string     `json:"owner"`
	Role       Role       `json:"role"`
	Active     bool       `json:"active"`
	UsageCount int64      `json:"usageCount"`
	LastUsed   *time.Time `json:"lastUsed"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (k APIKey) IsAdmin() bool {
	return k.Role == RoleAdmin
}

// Principal is the caller identity produced by a successful authentication.
type Principal struct {
	Key     string
	Owner   string
	Role    Role
	IsAdmin bool
}

func PrincipalFor(k APIKey) Principal {
	return Principal{Key: k.Key, Owner: k.Owner, Role: k.Role, IsAdmin: k.IsAdmin()}
}

// MaskKey keeps enough of a key to tell entries apart in logs.
func MaskKey(key string) string {
	if key == "" {
		return "none"
	}
	runes := []rune(key)
	if len(runes) <= 8 {
		return string(runes[:1]) + "***"
	}
	return string(runes[:4]) + "..." + string(runes[len(runes)-4:])
}
