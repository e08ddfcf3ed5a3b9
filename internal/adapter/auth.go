package adapter

import (
	"context"

	"github.com/autozen/api-gateway/internal/domain/auth"
	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
)

// Operation tags the Auth Service dispatches on.
const (
	opLogin    = "login"
	opRefresh  = "refresh"
	opRegister = "register"
)

// AuthAdapter bridges auth operations to the Auth Service over the broker.
type AuthAdapter struct {
	rpc        rpcCaller
	routingKey string
	logger     *logging.Logger
}

// NewAuthAdapter creates the Auth Service adapter. routingKey is the
// backend's operation-family key (AUTH.all).
func NewAuthAdapter(rpc rpcCaller, routingKey string, logger *logging.Logger) *AuthAdapter {
	return &AuthAdapter{rpc: rpc, routingKey: routingKey, logger: logger}
}

// Login exchanges credentials for a token pair.
func (a *AuthAdapter) Login(ctx context.Context, req auth.LoginRequest) (*auth.Tokens, error) {
	resp, err := a.rpc.Call(ctx, opLogin, a.routingKey, req.Payload())
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.StatusCode == 401 {
			return nil, errors.Unauthorized(detailOr(resp.ErrorMessage, "Invalid credentials provided."))
		}
		return nil, mapBrokerError(a.logger, opLogin, resp)
	}

	tokens := &auth.Tokens{}
	if err := resp.DecodeBody(tokens); err != nil {
		return nil, errors.Internal("Malformed login response from Auth Service.", err)
	}
	return tokens, nil
}

// Refresh rotates a refresh token into a fresh token pair.
func (a *AuthAdapter) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.Tokens, error) {
	resp, err := a.rpc.Call(ctx, opRefresh, a.routingKey, req.Payload())
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.StatusCode == 401 {
			return nil, errors.Unauthorized(detailOr(resp.ErrorMessage, "Invalid refresh token."))
		}
		return nil, mapBrokerError(a.logger, opRefresh, resp)
	}

	tokens := &auth.Tokens{}
	if err := resp.DecodeBody(tokens); err != nil {
		return nil, errors.Internal("Malformed refresh response from Auth Service.", err)
	}
	return tokens, nil
}

// Register creates a user account.
func (a *AuthAdapter) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	resp, err := a.rpc.Call(ctx, opRegister, a.routingKey, req.Payload())
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.StatusCode == 409 {
			return nil, errors.Conflict(detailOr(resp.ErrorMessage, "User's email or phone number is already registered."))
		}
		return nil, mapBrokerError(a.logger, opRegister, resp)
	}

	user := &auth.RegisterResponse{}
	if err := resp.DecodeBody(user); err != nil {
		return nil, errors.Internal("Malformed register response from Auth Service.", err)
	}
	return user, nil
}
