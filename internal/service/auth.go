// Package service contains the gateway's application layer. Services own
// the local security decisions (token validation, role checks) and delegate
// the actual work to backend adapters reached over the broker.
package service

import (
	"context"

	"github.com/autozen/api-gateway/internal/domain/auth"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/token"
)

// AuthBackend is the broker-facing surface of the Auth Service.
type AuthBackend interface {
	Login(ctx context.Context, req auth.LoginRequest) (*auth.Tokens, error)
	Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.Tokens, error)
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error)
}

type tokenValidator interface {
	Validate(tokenString string, requiredType token.Type, requiredRoles ...token.Role) (*token.Payload, error)
}

// AuthService fronts the Auth Service backend. Refresh tokens are checked
// locally first, so a forged or expired token never crosses the broker.
type AuthService struct {
	backend   AuthBackend
	validator tokenValidator
	logger    *logging.Logger
}

// NewAuthService creates the auth application service.
func NewAuthService(backend AuthBackend, validator tokenValidator, logger *logging.Logger) *AuthService {
	return &AuthService{backend: backend, validator: validator, logger: logger}
}

// Login exchanges credentials for a token pair.
func (s *AuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Tokens, error) {
	tokens, err := s.backend.Login(ctx, req)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("login rejected")
		return nil, err
	}
	s.logger.WithContext(ctx).Info("login succeeded")
	return tokens, nil
}

// Refresh validates the presented refresh token locally, then asks the Auth
// Service to rotate it. The user id extracted from the verified token rides
// along so the backend can match the stored token without re-parsing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.Tokens, error) {
	payload, err := s.validator.Validate(refreshToken, token.TypeRefresh)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("refresh token rejected locally")
		return nil, err
	}

	return s.backend.Refresh(ctx, auth.RefreshRequest{
		RefreshToken: refreshToken,
		UserID:       payload.UserID,
	})
}

// Register creates a user account.
func (s *AuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	user, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"email": user.Email,
	}).Info("user registered")
	return user, nil
}
