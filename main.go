package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskquest/config"
	"taskquest/db"
	"taskquest/gamify"
	"taskquest/handlers"
	"taskquest/metrics"
	"taskquest/schedule"
	"taskquest/store"
	"taskquest/streak"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConn, err := db.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	taskStore := store.New(db.NewTaskRepository(dbConn))
	tracker := streak.New(db.NewStreakRepository(dbConn))

	ctx := context.Background()
	if err := taskStore.Hydrate(ctx); err != nil {
		log.Fatalf("Failed to load tasks: %v", err)
	}
	if err := tracker.Hydrate(ctx); err != nil {
		log.Fatalf("Failed to load streaks: %v", err)
	}

	engine := gamify.New(taskStore, tracker)

	handler := &handlers.Handler{
		Engine:      engine,
		UserRepo:    db.NewUserRepository(dbConn),
		RateLimiter: handlers.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		WSHub:       handlers.NewWSHub(),
		JWTSecret:   []byte(cfg.JWTSecret),
	}
	taskStore.Subscribe(handler.WSHub.BroadcastTaskEvent)
	taskStore.Subscribe(metrics.ObserveTaskEvent)

	mux := http.NewServeMux()
	mux.HandleFunc("/register", handlers.WithMetrics(handler.Register))
	mux.HandleFunc("/login", handlers.WithMetrics(handler.Login))
	mux.HandleFunc("/tasks", handlers.WithMetrics(handler.AuthMiddleware(handler.HandleTasks)))
	mux.HandleFunc("/tasks/", handlers.WithMetrics(handler.AuthMiddleware(handler.HandleTaskByID)))
	mux.HandleFunc("/users/", handlers.WithMetrics(handler.AuthMiddleware(handler.HandleUserDashboard)))
	mux.HandleFunc("/ws", handler.AuthMiddleware(handler.HandleWebSocket))
	mux.HandleFunc("/healthz", handler.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}
	scheduler := schedule.New(loc)
	if _, err := scheduler.Daily(cfg.StreakEvalTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// Score the day that just ended.
		now := time.Now().In(loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if err := engine.EvaluateDay(jobCtx, today.AddDate(0, 0, -1)); err != nil {
			log.Printf("Streak evaluation failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule streak evaluation: %v", err)
	}
	scheduler.Start()

	server := &http.Server{Addr: cfg.Addr(), Handler: mux}
	startServer(server, scheduler)
}

func startServer(server *http.Server, scheduler *schedule.Service) {
	log.Printf("Starting server on %s", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
