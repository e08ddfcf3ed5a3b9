// Package token implements local JWT validation: signature, expiry with
// clock-skew leeway, token-type enforcement and role-scope checks. Validation
// never leaves the process, so authorized routes add no broker load.
package token

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/autozen/api-gateway/internal/errors"
)

// Type discriminates access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

// Role is a role claim carried by access tokens.
type Role string

const (
	RoleUser        Role = "user"
	RoleCSSEmployee Role = "css_employee"
	RoleCSSAdmin    Role = "css_admin"
)

// Claims is the gateway's JWT claim set.
type Claims struct {
	UserID    string   `json:"user_id,omitempty"`
	TokenType string   `json:"token_type"`
	Roles     []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Payload is the decoded result handed to callers after a successful
// validation. It is created fresh per call and never cached.
type Payload struct {
	UserID    string
	TokenType Type
	Roles     []Role
	ExpiresAt time.Time
}

// HasRole reports whether the payload carries the given role.
func (p *Payload) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Validator verifies tokens against a fixed key and algorithm. It holds no
// mutable state and is safe for concurrent use.
type Validator struct {
	key       interface{}
	algorithm string
	leeway    time.Duration
}

// NewValidator builds a validator for the configured algorithm. keyMaterial
// is a PEM-encoded public key for RS*/ES* algorithms or the raw shared
// secret for HS* algorithms.
func NewValidator(keyMaterial, algorithm string, leeway time.Duration) (*Validator, error) {
	if keyMaterial == "" {
		return nil, fmt.Errorf("token: key material is required")
	}

	var key interface{}
	switch {
	case strings.HasPrefix(algorithm, "RS"):
		parsed, err := jwt.ParseRSAPublicKeyFromPEM([]byte(keyMaterial))
		if err != nil {
			return nil, fmt.Errorf("token: parse RSA public key: %w", err)
		}
		key = parsed
	case strings.HasPrefix(algorithm, "ES"):
		parsed, err := jwt.ParseECPublicKeyFromPEM([]byte(keyMaterial))
		if err != nil {
			return nil, fmt.Errorf("token: parse EC public key: %w", err)
		}
		key = parsed
	case strings.HasPrefix(algorithm, "HS"):
		key = []byte(keyMaterial)
	default:
		return nil, fmt.Errorf("token: unsupported algorithm %q", algorithm)
	}

	return &Validator{key: key, algorithm: algorithm, leeway: leeway}, nil
}

// Validate decodes and verifies the token, enforces the required token type
// and, when requiredRoles is non-empty, requires every listed role to be
// present (AND semantics). Returns Unauthorized for signature/expiry/type
// failures and AccessDenied for missing roles.
func (v *Validator) Validate(tokenString string, requiredType Type, requiredRoles ...Role) (*Payload, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return v.key, nil },
		jwt.WithValidMethods([]string{v.algorithm}),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, errors.InvalidToken(err)
	}
	if !parsed.Valid {
		return nil, errors.InvalidToken(nil)
	}

	if Type(claims.TokenType) != requiredType {
		return nil, errors.Unauthorized("Invalid token type.").
			WithDetails("required_type", string(requiredType))
	}

	payload := &Payload{
		UserID:    claims.UserID,
		TokenType: Type(claims.TokenType),
		Roles:     make([]Role, 0, len(claims.Roles)),
	}
	if payload.UserID == "" {
		payload.UserID = claims.Subject
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	for _, r := range claims.Roles {
		payload.Roles = append(payload.Roles, Role(r))
	}

	for _, required := range requiredRoles {
		if !payload.HasRole(required) {
			return nil, errors.AccessDenied("").WithDetails("required_role", string(required))
		}
	}

	return payload, nil
}
