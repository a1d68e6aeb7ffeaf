package session

import (
	"context"
	"encoding/json"
)

// Backend is the remote authentication API the manager talks to.
// integration/salesapi provides the production implementation.
type Backend interface {
	// Login exchanges credentials plus the device identifier for a token and user.
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	// Logout notifies the backend that the bearer token is being abandoned.
	Logout(ctx context.Context, token string) error
	// CurrentUser fetches the profile belonging to the bearer token.
	CurrentUser(ctx context.Context, token string) (*User, error)
	// RequestOTP asks the backend to send a one-time password to the phone.
	// The ack payload is provider-defined and passed through untouched.
	RequestOTP(ctx context.Context, phone string) (json.RawMessage, error)
	// VerifyOTP exchanges a phone/OTP pair plus the device identifier for a
	// token and user.
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error)
}

// LoginRequest is the credential login payload.
type LoginRequest struct {
	Version  string `json:"version"`
	Username string `json:"username"`
	Password string `json:"password"`
	NotifID  string `json:"notif_id"`
}

// VerifyOTPRequest is the OTP verification payload.
type VerifyOTPRequest struct {
	Phone   string `json:"phone"`
	OTP     string `json:"otp"`
	NotifID string `json:"notif_id"`
}

// AuthResult is a successful authentication response. Raw preserves the
// backend's data payload for callers that need fields beyond the typed ones.
type AuthResult struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        *User           `json:"user"`
	Raw         json.RawMessage `json:"-"`
}
