package routes

import (
	"net/http"
	"time"

	"github.com/yagnadeepxo/onboard/controllers/gigs"
	"github.com/yagnadeepxo/onboard/middleware"

	"github.com/gorilla/mux"
)

// GigsRoutes registers the gig board routes: gigs, submissions, winner
// settlement, per-gig chat and the leaderboard.
func GigsRoutes(api *mux.Router) {
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)
	// Leaderboard and gig listings are public reads
	publicLimiter := middleware.NewIPRateLimiter(300, 5*time.Minute)

	// Gigs
	api.Handle("/gigs", userLimiter.Middleware(middleware.AuthMiddleware(middleware.RequireBusiness(http.HandlerFunc(gigs.CreateGigHandler))))).Methods(http.MethodPost)
	api.Handle("/gigs", publicLimiter.Middleware(http.HandlerFunc(gigs.ListGigsHandler))).Methods(http.MethodGet)
	// Public, but a logged-in caller gets the has_submitted flag
	api.Handle("/gigs/{gigid}", publicLimiter.Middleware(middleware.OptionalAuth(http.HandlerFunc(gigs.GetGigHandler)))).Methods(http.MethodGet)

	// Submissions
	api.Handle("/gigs/{gigid}/submissions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(gigs.CreateSubmissionHandler)))).Methods(http.MethodPost)
	api.Handle("/gigs/{gigid}/submissions", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(gigs.ListSubmissionsHandler)))).Methods(http.MethodGet)

	// Winner settlement
	api.Handle("/gigs/{gigid}/winners", userLimiter.Middleware(middleware.AuthMiddleware(middleware.RequireBusiness(http.HandlerFunc(gigs.AnnounceWinnersHandler))))).Methods(http.MethodPost)
	api.Handle("/gigs/{gigid}/winners", publicLimiter.Middleware(http.HandlerFunc(gigs.ListWinnersHandler))).Methods(http.MethodGet)

	// Per-gig chat: readable by anyone who can see the gig, posting needs a session
	api.Handle("/gigs/{gigid}/chat", publicLimiter.Middleware(http.HandlerFunc(gigs.ListChatHandler))).Methods(http.MethodGet)
	api.Handle("/gigs/{gigid}/chat", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(gigs.PostChatHandler)))).Methods(http.MethodPost)
	api.Handle("/chat/{id:[0-9]+}", userLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(gigs.DeleteChatHandler)))).Methods(http.MethodDelete)

	// Leaderboard (public)
	api.Handle("/leaderboard", publicLimiter.Middleware(http.HandlerFunc(gigs.LeaderboardHandler))).Methods(http.MethodGet)
}
