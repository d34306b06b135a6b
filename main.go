package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/thisorthat/auth"
	"github.com/danielhkuo/thisorthat/cliparse"
	"github.com/danielhkuo/thisorthat/db"
	"github.com/danielhkuo/thisorthat/middleware"
	"github.com/danielhkuo/thisorthat/polls"
	"github.com/danielhkuo/thisorthat/router"
	"github.com/danielhkuo/thisorthat/session"
)

func main() {
	var err error

	// .env is optional; real environment variables win
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Password hashing parameters are checked once, here
	hasher, err := auth.NewHasher(auth.DefaultParams)
	if err != nil {
		slog.Error("invalid password hashing parameters", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL, cfg.MaxOpenConns)
	cancel()
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(context.Background(), dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := db.NewStore(dbConn, cfg.StoreTimeout)

	svc, err := polls.NewService(store, hasher)
	if err != nil {
		slog.Error("service setup failed", "error", err)
		os.Exit(1)
	}

	// Session storage
	var sessions session.Store
	switch cfg.SessionBackend {
	case cliparse.SessionRedis:
		rs := session.NewRedisStore(cfg.RedisAddr, cfg.SessionTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			slog.Error("redis connection failed", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer rs.Close()
		sessions = rs
	default:
		sessions = session.NewMemoryStore(100_000, cfg.SessionTTL)
	}
	slog.Info("Session store ready", "backend", cfg.SessionBackend)

	gate := session.NewGate(sessions, cfg.SessionTTL, cfg.CookieSecure)

	// Create router
	mux := router.NewRouter(svc, gate, cfg)

	// Create server
	server := &http.Server{
		Handler:           middleware.CORS(cfg.AllowedOrigins)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	<-ctrlc

	slog.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server closed")
}
