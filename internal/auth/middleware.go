package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Middleware authenticates requests by bearer token or cookie and stores the
// principal in the request context. The session behind the token must still
// exist, so signing out revokes the token immediately.
func Middleware(sessions *shared.SessionManager, tokens *shared.TokenIssuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := tokens.Parse(sessions.TokenFromRequest(r))
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			sess, err := sessions.Get(r.Context(), principal.SessionID)
			if err != nil {
				if errors.Is(err, shared.ErrSessionNotFound) {
					httpx.RespondError(w, err)
					return
				}
				httpx.Fail(w, r, logger, err)
				return
			}
			if sess.AccountID != principal.AccountID {
				httpx.RespondError(w, shared.ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
