package auth

import (
	"github.com/hannah-myrrh/csu-biolab-alers/internal/users"
)

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted token and the public user profile.
type LoginResponse struct {
	Token string        `json:"token"`
	User  users.Profile `json:"user"`
}

// RegisterRequest carries a self-registration submission. Role defaults to
// student when omitted; only an admin-seeded account can hold the admin role.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterResponse returns the created profile.
type RegisterResponse struct {
	User users.Profile `json:"user"`
}
