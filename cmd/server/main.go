package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizfund/internal/cache"
	"quizfund/internal/config"
	"quizfund/internal/engine"
	"quizfund/internal/questionbank"
	"quizfund/internal/repository"
	"quizfund/internal/service"
	"quizfund/internal/store"
	"quizfund/internal/transport/rest"
	"quizfund/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("quizfund")

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories
	schedRepo := repository.NewScheduledRoomRepo(db)
	reconRepo := repository.NewReconciliationRepo(db)

	// Initialize caches
	leaderboard := cache.NewLeaderboardCache(rdb)
	roomState := cache.NewRoomStateCache(rdb)

	// Initialize the in-memory engine
	roomStore := store.New()
	bank := questionbank.New(cfg.QuestionsFile, cfg.TieBreakersFile)
	freezer := engine.NewFreezer()
	globalExtras := engine.NewGlobalExtras(roomStore, wsHub)
	lifecycle := engine.NewLifecycle(roomStore, bank, freezer, wsHub)
	extras := engine.NewExtras(roomStore, globalExtras, freezer, wsHub)
	sessions := engine.NewSessions(roomStore)
	finalizer := engine.NewFinalizer(roomStore)

	// Initialize services
	authSvc := service.NewAuthService(cfg.HostUsername, cfg.HostPassword, cfg.JWTSecret)
	reconSvc := service.NewReconciliationService(reconRepo, leaderboard, roomState)

	// Create router with container
	container := &rest.Container{
		AuthService:   authSvc,
		ReconService:  reconSvc,
		Lifecycle:     lifecycle,
		Extras:        extras,
		Sessions:      sessions,
		Finalizer:     finalizer,
		RoomStore:     roomStore,
		ScheduledRepo: schedRepo,
		WSHub:         wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Printf("Host auth: username=%s", cfg.HostUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/rooms")
		log.Println("  POST /v1/rooms/{id}/join")
		log.Println("  POST /v1/rooms/{id}/questions/assign")
		log.Println("  POST /v1/rooms/{id}/questions/next")
		log.Println("  POST /v1/rooms/{id}/rounds/next")
		log.Println("  POST /v1/rooms/{id}/complete")
		log.Println("  GET  /v1/rooms/{id}/leaderboard")
		log.Println("  POST/GET /v1/schedule")
		log.Println("  WS  /v1/ws/rooms/{id}/host")
		log.Println("  WS  /v1/ws/rooms/{id}/player")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
