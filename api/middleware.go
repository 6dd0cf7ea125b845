package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/raushankrgupta/shopify-product-exporter/config"
	"github.com/raushankrgupta/shopify-product-exporter/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware requires a valid bearer token when JWT_SECRET is set.
// Browsers cannot set headers on websocket upgrades, so a "token" query
// parameter is accepted as well.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if config.JWTSecret == "" {
			next(w, r)
			return
		}

		token := utils.BearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			utils.RespondError(w, nil, "Authorization token required", http.StatusUnauthorized)
			return
		}

		subject, err := utils.TokenSubject(token)
		if err != nil {
			utils.RespondError(w, nil, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
	}
}

// GetUserIDFromContext returns the token subject stored by AuthMiddleware
func GetUserIDFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok || subject == "" {
		return "", errors.New("no authenticated subject in context")
	}
	return subject, nil
}
