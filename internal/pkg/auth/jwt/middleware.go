/*
Package jwt issues and validates session tokens.

This file contains the middleware that extracts the token header into the request context.
*/
package jwt

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	// ContextTokenKey stores the raw session token found on the request.
	ContextTokenKey contextKey = "session_token"

	// TokenHeader is the header the avatar client sends its token in.
	TokenHeader = "token"
)

// TokenExtractorMiddleware copies the session token from the "token" header
// (or an "Authorization: Bearer" header) into the request context. It never
// rejects a request; handlers decide whether a token is required.
func TokenExtractorMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken reads the raw token from the request headers.
func ExtractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}

	return ""
}

// GetTokenFromContext returns the token stored by TokenExtractorMiddleware, or "".
func GetTokenFromContext(r *http.Request) string {
	token, _ := r.Context().Value(ContextTokenKey).(string)
	return token
}
