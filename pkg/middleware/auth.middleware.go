package middleware

import (
	"context"
	"net/http"
	"strings"

	"identity-service/pkg/jwtutil"
	"identity-service/pkg/response"
)

type contextKey string

// ContextAccountID carries the authenticated account ID through the request.
const ContextAccountID contextKey = "account_id"

// SessionAuth validates the Bearer session token and stores the account ID
// in the request context.
func SessionAuth(issuer *jwtutil.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.Error(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}

			claims, err := issuer.Parse(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextAccountID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
