package dto

import "time"

// TokenType is echoed in auth responses.
const TokenType = "Bearer"

// LoginRequest payload for login.
type LoginRequest struct {
	Pseudo   string `json:"pseudo" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// RegisterRequest payload for account creation. Fields may come from the
// query string or a JSON body.
type RegisterRequest struct {
	Pseudo   string `json:"pseudo" query:"pseudo" validate:"required,min=3,max=50"`
	Password string `json:"password" query:"password" validate:"required,min=6,max=72"`
	Admin    bool   `json:"admin" query:"admin"`
}

// ChangePasswordRequest payload for password updates.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	Pseudo    string    `json:"pseudo"`
	Admin     bool      `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// VerifyResponse describes the bearer token of the request.
type VerifyResponse struct {
	Valid   bool   `json:"valid"`
	Pseudo  string `json:"pseudo,omitempty"`
	UserID  int64  `json:"userId,omitempty"`
	Admin   bool   `json:"admin"`
	Message string `json:"message"`
}
