package auth

import (
	"github.com/sweetorder/sweetorder-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the access token and user produced by a successful login.
type LoginResponse struct {
	AccessToken string        `json:"accessToken"`
	TokenType   string        `json:"tokenType"`
	ExpiresIn   int64         `json:"expiresIn"`
	User        users.UserDTO `json:"user"`
}

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Nickname string  `json:"nickname" validate:"required,max=30"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}
