package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/invoicehub/backend/internal/auth"
	"github.com/invoicehub/backend/internal/config"
	"github.com/invoicehub/backend/internal/db"
	userHttp "github.com/invoicehub/backend/internal/handler/http"
	userService "github.com/invoicehub/backend/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "invoicehub-backend").Logger()

	log.Info().Msg("Starting server...")

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.Migrate(cfg.Postgres.URL()); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	dbPool, err := db.New(context.Background(), cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	userRepository := userService.NewRepository(dbPool.Pool)
	userSvc := userService.NewService(userRepository)

	sessions := auth.NewManager(cfg.Session.Secret, cfg.Session.MaxAge, cfg.Session.RefreshAfter)
	guard := auth.NewGuard(sessions, cfg.App.IsProduction())
	if !cfg.App.IsProduction() {
		log.Warn().Str("environment", cfg.App.Environment).Msg("Same-user enforcement disabled outside production")
	}

	authHandler := userHttp.NewAuthHandler(userSvc, sessions)
	userHandler := userHttp.NewUserHandler(userSvc, guard)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "DELETE", "PATCH", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	authHandler.RegisterRoutes(router)
	userHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Str("port", cfg.App.Port).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}

	dbPool.Close()

	log.Info().Msg("Server stopped gracefully")
}
