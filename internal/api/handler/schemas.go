package handler

import "github.com/gigmarket/account-security/internal/core/domain"

// messageResponse is the envelope for plain outcomes and all errors.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=freelancer client"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string           `json:"token,omitempty"`
	User  *domain.Identity `json:"user,omitempty"`
}

// --- Guarded email actions ---

// emailRequest is not validated by tag: a missing email has its own message.
type emailRequest struct {
	Email string `json:"email"`
}

type actionResponse struct {
	Message        string `json:"message"`
	CooldownActive bool   `json:"cooldownActive,omitempty"`
	RemainingTime  int    `json:"remainingTime,omitempty"`
}

type confirmResetRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type confirmVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}
