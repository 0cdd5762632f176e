package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// NamespaceAll is the claim value granting access to every namespace.
const NamespaceAll = "*"

// AuditClaims are the JWT claims accepted by the audit query API. The
// namespace claim scopes which tenant's history the caller may read.
type AuditClaims struct {
	Namespace string `json:"namespace"`
	jwt.RegisteredClaims
}

type namespaceKey struct{}

// Auth validates the Bearer token on incoming requests and stores the
// token's namespace claim in the request context. Tokens are HS256-signed
// with the shared service key.
func Auth(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			claims := &AuditClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				requestID := GetRequestID(r.Context())
				logger.WarnContext(r.Context(), "rejected audit api token",
					"error", err,
					"request_id", requestID,
				)
				writeAuthError(w, "invalid token")
				return
			}
			if claims.Namespace == "" {
				writeAuthError(w, "token missing namespace claim")
				return
			}

			ctx := context.WithValue(r.Context(), namespaceKey{}, claims.Namespace)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetNamespace retrieves the authenticated namespace claim from the context.
func GetNamespace(ctx context.Context) string {
	if ns, ok := ctx.Value(namespaceKey{}).(string); ok {
		return ns
	}
	return ""
}

// NamespaceAllowed reports whether the authenticated caller may read the
// given namespace.
func NamespaceAllowed(ctx context.Context, namespace string) bool {
	claim := GetNamespace(ctx)
	return claim == NamespaceAll || (claim != "" && claim == namespace)
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
