package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/webfusionlab/webfusion/internal/service"
)

type contextKeyAuth string

const (
	// AuthPrincipalKey is the context key for the authenticated admin.
	AuthPrincipalKey contextKeyAuth = "auth_principal"

	principalHolderKey contextKeyAuth = "principal_holder"
)

// principalHolder lets Logger, which wraps the whole chain, learn who made
// the request once Authenticate has run.
type principalHolder struct {
	adminID string
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, principalHolderKey, h)
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*service.Principal, error)
}

// Authenticate returns an HTTP middleware that requires a valid bearer token
// in the Authorization header. On success the admin Principal is attached
// to the request context; otherwise a 401 JSON error is returned.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Token não fornecido")
				return
			}

			p, err := tokens.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Token inválido")
				return
			}

			if h, ok := r.Context().Value(principalHolderKey).(*principalHolder); ok {
				h.adminID = p.AdminID
			}
			ctx := context.WithValue(r.Context(), AuthPrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetPrincipal extracts the authenticated admin from the context.
// Returns nil if no principal is present (i.e., unauthenticated request).
func GetPrincipal(ctx context.Context) *service.Principal {
	if p, ok := ctx.Value(AuthPrincipalKey).(*service.Principal); ok {
		return p
	}
	return nil
}

// writeError writes the {"error": "..."} envelope. The handler package has
// its own helpers; middleware cannot import it without a cycle.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
