package broker

import (
	"encoding/json"
	"fmt"
)

// Response is the wire-level reply envelope published by a backend to the
// call's reply queue. Body is kept raw so adapters decode it into their own
// DTOs without intermediate re-encoding.
type Response struct {
	StatusCode   int             `json:"status_code"`
	Body         json.RawMessage `json:"body,omitempty"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	ErrorOrigin  string          `json:"error_origin,omitempty"`
}

// DecodeResponse parses a reply body. Older backends omit the success flag
// and send only status_code/body; success then derives from the status code.
// The invariant success == false for any status >= 400 is always enforced.
func DecodeResponse(data []byte) (*Response, error) {
	var wire struct {
		StatusCode   *int            `json:"status_code"`
		Body         json.RawMessage `json:"body"`
		Success      *bool           `json:"success"`
		ErrorMessage string          `json:"error_message"`
		ErrorOrigin  string          `json:"error_origin"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode broker response: %w", err)
	}

	resp := &Response{
		StatusCode:   500,
		Body:         wire.Body,
		ErrorMessage: wire.ErrorMessage,
		ErrorOrigin:  wire.ErrorOrigin,
	}
	if wire.StatusCode != nil {
		resp.StatusCode = *wire.StatusCode
	}

	if wire.Success != nil {
		resp.Success = *wire.Success
	} else {
		resp.Success = resp.StatusCode < 400
	}
	if resp.StatusCode >= 400 {
		resp.Success = false
	}

	return resp, nil
}

// DecodeBody unmarshals the reply body into target.
func (r *Response) DecodeBody(target interface{}) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("broker response has no body")
	}
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
