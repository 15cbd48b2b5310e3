package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/govichain/engine/internal/api/types"
	"github.com/govichain/engine/internal/identity"
)

type callerKeyType string

const callerKey callerKeyType = "caller"

// TokenResolver turns a bearer token into a caller identity.
type TokenResolver interface {
	ResolveToken(tokenString string) (identity.Caller, error)
}

// Auth validates a Bearer JWT and places the resolved caller in the request
// context. Requests without a valid credential are rejected with 401.
func Auth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				unauthenticated(w, "missing bearer token")
				return
			}
			tokenStr := strings.TrimSpace(ah[len("Bearer "):])
			caller, err := resolver.ResolveToken(tokenStr)
			if err != nil {
				unauthenticated(w, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCaller returns the caller identity from context. The second return is
// false on unauthenticated requests.
func GetCaller(ctx context.Context) (identity.Caller, bool) {
	c, ok := ctx.Value(callerKey).(identity.Caller)
	return c, ok
}

// WithCaller injects a caller into ctx; used by handler tests.
func WithCaller(ctx context.Context, c identity.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func unauthenticated(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(types.APIResponse{
		Success: false,
		Error:   &types.APIError{Code: "unauthenticated", Message: msg},
	})
}
