package dto

import "time"

type RegistrationRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=20"`
	Password    string `json:"password" binding:"required,min=8,max=20"`
	DisplayName string `json:"display_name" binding:"required,min=3,max=50"`
}

type AuthenticationRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthenticationResponse carries the token pair handed out on registration
// and login.
type AuthenticationResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // Access token expiry in seconds
}

type TokenRefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

type RefreshResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=20"`
}

type AuthorityChangeRequest struct {
	Authority string `json:"authority" binding:"required,oneof=Write Admin"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	Authority     string     `json:"authority"`
	AccountLocked bool       `json:"account_locked"`
	LoginAttempts int        `json:"login_attempts"`
	AutoLockedAt  *time.Time `json:"auto_locked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
