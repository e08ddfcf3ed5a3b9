// Package adapter translates domain operations into correlated broker RPC
// calls and broker reply envelopes back into domain results or taxonomy
// errors.
package adapter

import (
	"context"

	"github.com/autozen/api-gateway/internal/broker"
	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
	"github.com/autozen/api-gateway/internal/token"
)

// rpcCaller issues one correlated request/response call over the broker.
type rpcCaller interface {
	Call(ctx context.Context, operationType, routingKey string, payload map[string]interface{}) (*broker.Response, error)
}

// tokenValidator checks a token locally before any broker traffic.
type tokenValidator interface {
	Validate(tokenString string, requiredType token.Type, requiredRoles ...token.Role) (*token.Payload, error)
}

// detailOr prefers the backend's error message over the fallback detail.
func detailOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}

// mapBrokerError converts a failed reply envelope into exactly one taxonomy
// error. Codes outside the table become a generic internal error and are
// logged as unexpected.
func mapBrokerError(logger *logging.Logger, operation string, resp *broker.Response) error {
	detail := resp.ErrorMessage

	switch resp.StatusCode {
	case 401:
		return errors.Unauthorized(detail)
	case 403:
		return errors.AccessDenied(detail)
	case 404:
		return errors.NotFound(detail)
	case 409:
		return errors.Conflict(detail)
	default:
		logger.WithFields(map[string]interface{}{
			"operation":     operation,
			"status_code":   resp.StatusCode,
			"error_origin":  resp.ErrorOrigin,
			"error_message": resp.ErrorMessage,
		}).Error("unexpected backend status")
		return errors.Internal("", nil).WithDetails("status_code", resp.StatusCode)
	}
}
