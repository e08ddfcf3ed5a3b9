package broker

import (
	"encoding/json"
	"testing"
)

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "explicit success",
			raw:         `{"status_code":200,"success":true,"body":{"access_token":"AT"}}`,
			wantStatus:  200,
			wantSuccess: true,
		},
		{
			name:        "explicit failure",
			raw:         `{"status_code":401,"success":false,"error_message":"bad creds"}`,
			wantStatus:  401,
			wantSuccess: false,
			wantMessage: "bad creds",
		},
		{
			name:        "success derived from status when flag missing",
			raw:         `{"status_code":200,"body":{}}`,
			wantStatus:  200,
			wantSuccess: true,
		},
		{
			name:        "failure derived from status when flag missing",
			raw:         `{"status_code":409}`,
			wantStatus:  409,
			wantSuccess: false,
		},
		{
			name:        "missing status defaults to 500",
			raw:         `{"body":{}}`,
			wantStatus:  500,
			wantSuccess: false,
		},
		{
			name:        "success flag overridden for error status",
			raw:         `{"status_code":500,"success":true}`,
			wantStatus:  500,
			wantSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeResponse() error = %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if resp.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v", resp.Success, tt.wantSuccess)
			}
			if resp.ErrorMessage != tt.wantMessage {
				t.Errorf("ErrorMessage = %q, want %q", resp.ErrorMessage, tt.wantMessage)
			}
		})
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	if _, err := DecodeResponse([]byte("not json")); err == nil {
		t.Fatal("DecodeResponse() should fail on malformed input")
	}
}

func TestDecodeBody(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"status_code":200,"success":true,"body":{"access_token":"AT","refresh_token":"RT"}}`))
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := resp.DecodeBody(&tokens); err != nil {
		t.Fatalf("DecodeBody() error = %v", err)
	}
	if tokens.AccessToken != "AT" || tokens.RefreshToken != "RT" {
		t.Errorf("tokens = %+v, want AT/RT", tokens)
	}
}

func TestDecodeBody_Empty(t *testing.T) {
	resp := &Response{StatusCode: 200, Success: true}
	var target map[string]json.RawMessage
	if err := resp.DecodeBody(&target); err == nil {
		t.Fatal("DecodeBody() should fail without a body")
	}
}
