// Package auth holds the request and response DTOs for Auth Service
// operations.
package auth

// LoginRequest carries user credentials. Either email or phone number
// identifies the account.
type LoginRequest struct {
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password"`
}

// Payload converts the request into the plain key-value form published to
// the broker.
func (r LoginRequest) Payload() map[string]interface{} {
	payload := map[string]interface{}{"password": r.Password}
	if r.Email != "" {
		payload["email"] = r.Email
	}
	if r.PhoneNumber != "" {
		payload["phone_number"] = r.PhoneNumber
	}
	return payload
}

// Tokens is the pair issued on login and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest asks the Auth Service to rotate a verified refresh token.
// UserID is filled by the gateway from the locally-validated token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id,omitempty"`
}

// Payload converts the request into the broker wire form.
func (r RefreshRequest) Payload() map[string]interface{} {
	payload := map[string]interface{}{"refresh_token": r.RefreshToken}
	if r.UserID != "" {
		payload["user_id"] = r.UserID
	}
	return payload
}

// RegisterRequest carries a new user's registration data.
type RegisterRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// Payload converts the request into the broker wire form.
func (r RegisterRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"first_name":   r.FirstName,
		"last_name":    r.LastName,
		"email":        r.Email,
		"phone_number": r.PhoneNumber,
		"password":     r.Password,
	}
}

// RegisterResponse is the created user's data as reported by the Auth
// Service.
type RegisterResponse struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email,omitempty"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}
