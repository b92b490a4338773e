package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yagnadeepxo/onboard/utils"
)

func writeJSON(w http.ResponseWriter, status int, resp map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// AuthMiddleware validates the bearer token and injects the caller's Session
// into the request context. Claims are parsed exactly once per request;
// handlers consume them through utils.GetSession.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		// Shared validation checks signature, registered claims and revocation
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
					"success": false,
					"message": "Your session has expired, please log in again.",
				})
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		sess := utils.SessionFromClaims(claims)
		if sess.UserID == 0 {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Invalid token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth injects the caller's Session when a valid bearer token is
// present and otherwise lets the request through anonymously. Public routes
// that render per-caller state use this; a bad or expired token is treated
// the same as no token at all.
func OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
		_, claims, err := utils.ValidateAccessToken(tokenStr)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		sess := utils.SessionFromClaims(claims)
		if sess.UserID == 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), utils.SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireBusiness gates endpoints that only a business account may call.
// It must run after AuthMiddleware.
func RequireBusiness(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := utils.GetSession(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}
		if sess.Role != "business" {
			writeJSON(w, http.StatusForbidden, map[string]interface{}{
				"success": false,
				"message": "Access denied",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
