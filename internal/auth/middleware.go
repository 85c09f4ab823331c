package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Authorize checks that r carries a token granting scope on docID. The token
// is read from the Authorization header, or from the token query parameter
// for clients that cannot set headers (browser WebSockets).
func (s *Service) Authorize(r *http.Request, docID string, scope Scope) (Claims, error) {
	if s.IsPublic(docID) {
		return Claims{Subject: "anonymous", Document: docID, Scope: ScopeEdit}, nil
	}

	token := r.URL.Query().Get("token")
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Claims{}, ErrInvalidToken
		}
		token = parts[1]
	}
	if token == "" {
		return Claims{}, ErrInvalidToken
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		return Claims{}, err
	}
	if !claims.Allows(docID, scope) {
		return Claims{}, ErrForbidden
	}
	return claims, nil
}

// DocumentMiddleware guards routes carrying a {param} document id. Safe
// methods need view scope; everything else needs edit scope.
func (s *Service) DocumentMiddleware(param string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := ScopeEdit
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				scope = ScopeView
			}

			claims, err := s.Authorize(r, mux.Vars(r)[param], scope)
			switch {
			case errors.Is(err, ErrForbidden):
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
				return
			case err != nil:
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(Claims)
	return c, ok
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
