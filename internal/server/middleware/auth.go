// Package middleware provides HTTP middleware for bearer-token authentication.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// subjectKey is the context key for storing the authenticated token subject.
const subjectKey ContextKey = "subject"

// ErrNoSubject is returned by GetSubject on unauthenticated requests.
var ErrNoSubject = errors.New("subject not found in request context")

// TokenValidator validates bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (SubjectGetter, error)
}

// SubjectGetter exposes the subject of validated token claims.
type SubjectGetter interface {
	GetSubject() (string, error)
}

// UnauthorizedFunc writes the response for a rejected request.
type UnauthorizedFunc func(w http.ResponseWriter, r *http.Request)

func defaultUnauthorized(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the
// token subject to the request context. A nil onReject writes a plain 401.
func AuthMiddleware(validator TokenValidator, onReject UnauthorizedFunc) func(http.Handler) http.Handler {
	if onReject == nil {
		onReject = defaultUnauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				onReject(w, r)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				onReject(w, r)
				return
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				onReject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>", case-insensitive on the scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// GetSubject extracts the authenticated subject from the request context.
func GetSubject(r *http.Request) (string, error) {
	subject, ok := r.Context().Value(subjectKey).(string)
	if !ok {
		return "", ErrNoSubject
	}
	return subject, nil
}

// WithSubject returns a copy of ctx carrying subject, for tests and internal callers.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}
