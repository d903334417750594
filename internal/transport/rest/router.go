package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"quizfund/internal/engine"
	"quizfund/internal/repository"
	"quizfund/internal/service"
	"quizfund/internal/store"
	"quizfund/internal/transport/rest/handler"
	"quizfund/internal/transport/rest/middleware"
	"quizfund/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	ReconService  *service.ReconciliationService
	Lifecycle     *engine.Lifecycle
	Extras        *engine.Extras
	Sessions      *engine.Sessions
	Finalizer     *engine.Finalizer
	RoomStore     *store.RoomStore
	ScheduledRepo repository.ScheduledRoomRepo
	WSHub         *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	roomHandler := handler.NewRoomHandler(c.Lifecycle, c.Sessions, c.RoomStore, c.AuthService, c.ReconService, c.ScheduledRepo)
	gameHandler := handler.NewGameHandler(c.Lifecycle, c.Extras, c.Sessions, c.Finalizer, c.ReconService, c.RoomStore, c.WSHub)
	scheduleHandler := handler.NewScheduleHandler(c.ScheduledRepo)
	wsHandler := ws.NewHandler(c.WSHub, c.Lifecycle, c.Sessions)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{id}/join", roomHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{id}/status", roomHandler.Status).Methods("GET", "OPTIONS")
	v1.HandleFunc("/schedule/upcoming", scheduleHandler.Upcoming).Methods("GET", "OPTIONS")

	// WebSocket routes (token in query param, validated by the same
	// auth middleware as the REST routes)
	v1.Handle("/ws/rooms/{id}/host", authMW.RequireHost(http.HandlerFunc(wsHandler.HostWS))).Methods("GET")
	v1.Handle("/ws/rooms/{id}/player", authMW.RequirePlayer(http.HandlerFunc(wsHandler.PlayerWS))).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/rooms", roomHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms", roomHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}", roomHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}", roomHandler.Delete).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/questions/assign", gameHandler.AssignQuestions).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/questions/next", gameHandler.NextQuestion).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/rounds/next", gameHandler.NextRound).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/complete", gameHandler.Complete).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/reconciliation", gameHandler.Reconciliation).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/leaderboard/live", gameHandler.LiveLeaderboard).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/rooms/{id}/sessions/sweep", gameHandler.SweepSessions).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/reconciliation", gameHandler.ListReconciliations).Methods("GET", "OPTIONS")

	// Schedule routes (host only)
	hostRoutes.HandleFunc("/schedule", scheduleHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/schedule", scheduleHandler.List).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/schedule/{scheduleId}", scheduleHandler.Get).Methods("GET", "OPTIONS")
	hostRoutes.HandleFunc("/schedule/{scheduleId}", scheduleHandler.Delete).Methods("DELETE", "OPTIONS")
	hostRoutes.HandleFunc("/schedule/{scheduleId}/cancel", scheduleHandler.Cancel).Methods("POST", "OPTIONS")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/rooms/{id}/answers", gameHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/extras", gameHandler.UseExtra).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/session/heartbeat", gameHandler.Heartbeat).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/rooms/{id}/rank", gameHandler.Rank).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
