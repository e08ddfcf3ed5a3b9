package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *ServiceError
		wantCode   ErrorCode
		wantStatus int
	}{
		{"unauthorized", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
		{"access denied", AccessDenied(""), CodeAccessDenied, http.StatusForbidden},
		{"not found", NotFound(""), CodeNotFound, http.StatusNotFound},
		{"conflict", Conflict(""), CodeConflict, http.StatusConflict},
		{"source unavailable", SourceUnavailable(""), CodeSourceUnavailable, http.StatusServiceUnavailable},
		{"source timeout", SourceTimeout(""), CodeSourceTimeout, http.StatusGatewayTimeout},
		{"internal", Internal("", nil), CodeInternal, http.StatusInternalServerError},
		{"rate limited", RateLimitExceeded(10, "1s"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestUnauthorized_CustomDetail(t *testing.T) {
	err := Unauthorized("bad creds")
	if err.Message != "bad creds" {
		t.Errorf("Message = %q, want %q", err.Message, "bad creds")
	}
}

func TestWithDetails(t *testing.T) {
	err := Unauthorized("").WithDetails("method", "HS256")
	if err.Details["method"] != "HS256" {
		t.Errorf("Details[method] = %v, want HS256", err.Details["method"])
	}
}

func TestGetServiceError(t *testing.T) {
	se := Conflict("duplicate email")

	if got := GetServiceError(se); got != se {
		t.Errorf("GetServiceError() = %v, want %v", got, se)
	}

	wrapped := fmt.Errorf("adapter: %w", se)
	if got := GetServiceError(wrapped); got != se {
		t.Errorf("GetServiceError(wrapped) = %v, want %v", got, se)
	}

	if got := GetServiceError(stderrors.New("plain")); got != nil {
		t.Errorf("GetServiceError(plain) = %v, want nil", got)
	}

	if got := GetServiceError(nil); got != nil {
		t.Errorf("GetServiceError(nil) = %v, want nil", got)
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	if !stderrors.Is(SourceTimeout("slow backend"), SourceTimeout("")) {
		t.Error("two SourceTimeout errors should match")
	}
	if stderrors.Is(SourceTimeout(""), SourceUnavailable("")) {
		t.Error("timeout should not match unavailable")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("signature is invalid")
	err := InvalidToken(cause)
	if !stderrors.Is(err, cause) {
		t.Error("InvalidToken should wrap its cause")
	}
	if err.Code != CodeUnauthorized {
		t.Errorf("Code = %v, want %v", err.Code, CodeUnauthorized)
	}
}
