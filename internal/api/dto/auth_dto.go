package dto

import "time"

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse reports the outcome of a staff login. Token and
// expiresAt are present on success so a hardened client can send a bearer
// token; a client that only keeps the boolean still works unchanged.
type AdminLoginResponse struct {
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
