package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account is a signed-up business owner. Every row of the system belongs to one.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

// SignUpRequest is the payload of POST /api/auth/signup.
type SignUpRequest struct {
	Email        string `json:"email" validate:"required,email,max=254"`
	Password     string `json:"password" validate:"required,min=6,max=72"`
	FullName     string `json:"full_name" validate:"required,max=120"`
	BusinessName string `json:"business_name" validate:"omitempty,max=120"`
	Phone        string `json:"phone" validate:"omitempty,max=40"`
}

// SignInRequest is the payload of POST /api/auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse carries the bearer token. The same token is set as cookie.
type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   *Account  `json:"account"`
}
