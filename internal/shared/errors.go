package shared

import (
	"fmt"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)
	// ErrSessionNotFound indicates an expired or revoked session.
	ErrSessionNotFound = fmt.Errorf("%w: session expired", httpx.ErrUnauthorized)
	// ErrInvalidToken indicates a malformed, forged or expired token.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", httpx.ErrUnauthorized)
)
