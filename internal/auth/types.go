package auth

import (
	"time"
)

// OperatorClaims represents the JWT claims for an operator
type OperatorClaims struct {
	OperatorID string `json:"operator_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
}

// LoginRequest represents an operator login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // Access token expiry in seconds
	TokenType   string `json:"token_type"` // Always "Bearer"
}

// Config holds authentication configuration
type Config struct {
	JWTSecret           string        `json:"jwt_secret"`
	AccessTokenDuration time.Duration `json:"access_token_duration"`

	// Default operator seeded at startup when none exists
	DefaultUsername string `json:"default_username"`
	DefaultPassword string `json:"-"`
}

// DefaultConfig returns default authentication configuration
func DefaultConfig() Config {
	return Config{
		JWTSecret:           "", // Must be set
		AccessTokenDuration: 12 * time.Hour,
		DefaultUsername:     "operator",
	}
}

// AuthError is a machine-readable authentication failure
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e AuthError) Error() string {
	return e.Message
}

// Common authentication errors
var (
	ErrInvalidCredentials = AuthError{Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
	ErrInvalidToken       = AuthError{Code: "INVALID_TOKEN", Message: "invalid or expired token"}
	ErrTokenExpired       = AuthError{Code: "TOKEN_EXPIRED", Message: "token has expired"}
	ErrUnauthorized       = AuthError{Code: "UNAUTHORIZED", Message: "unauthorized access"}
	ErrForbidden          = AuthError{Code: "FORBIDDEN", Message: "access forbidden"}
)
