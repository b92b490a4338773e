package routes

import (
	"net/http"
	"time"

	"github.com/yagnadeepxo/onboard/controllers/auth"
	"github.com/yagnadeepxo/onboard/controllers/users"
	"github.com/yagnadeepxo/onboard/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers auth and profile routes on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// Rate limiter for login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 read, 60 write per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)
	// Username availability is probed on every keystroke of the signup form
	usernameLimiter := middleware.NewIPRateLimiter(300, 5*time.Minute)

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Username availability probe (public, used during signup)
	api.Handle("/username-available", usernameLimiter.Middleware(http.HandlerFunc(users.UsernameAvailableHandler))).Methods(http.MethodGet)

	// Public profile by username
	api.Handle("/profiles/{username}", usernameLimiter.Middleware(http.HandlerFunc(users.GetProfileHandler))).Methods(http.MethodGet)

	// Own profile (update fields and avatar, delete avatar)
	api.Handle("/users/profile", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.UpdateProfileHandler)))).Methods(http.MethodPut)
	api.Handle("/users/profile/avatar", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(users.DeleteAvatarHandler)))).Methods(http.MethodDelete)
}
