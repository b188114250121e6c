package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/governance/internal/core/domain"
	"github.com/vncsmyrnk/governance/internal/core/ports"
)

type contextKey string

const CallerKey contextKey = "caller"

const accessTokenCookie = "access_token"

// RequireCaller resolves the caller from the access_token cookie or a
// bearer Authorization header and rejects the request when neither holds a
// valid token.
func RequireCaller(verifier ports.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r)
			if token == "" {
				http.Error(w, "Unauthorized: missing access token", http.StatusUnauthorized)
				return
			}

			caller, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func callerFrom(ctx context.Context) (domain.AccountID, bool) {
	caller, ok := ctx.Value(CallerKey).(domain.AccountID)
	return caller, ok && caller != ""
}
