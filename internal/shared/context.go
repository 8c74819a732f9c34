package shared

import (
	"context"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
)

// Principal identifies the signed-in account behind a request.
type Principal struct {
	AccountID uuid.UUID
	SessionID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.AccountID == uuid.Nil {
		return Principal{}, false
	}
	return p, true
}

// RequirePrincipal is PrincipalFromContext returning httpx.ErrUnauthorized when absent.
func RequirePrincipal(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, httpx.ErrUnauthorized
	}
	return p, nil
}
