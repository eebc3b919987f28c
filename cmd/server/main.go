package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/database"
	"github.com/kelasid/ruangkelas-backend/internal/handler"
	"github.com/kelasid/ruangkelas-backend/internal/llm"
	"github.com/kelasid/ruangkelas-backend/internal/logger"
	"github.com/kelasid/ruangkelas-backend/internal/router"
	"github.com/kelasid/ruangkelas-backend/internal/service"
	"github.com/kelasid/ruangkelas-backend/internal/store"
	"github.com/kelasid/ruangkelas-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting RuangKelas Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Collaborators ──────────────────────────────────────
	completer := llm.NewClient(cfg, log)

	// ─── Initialize Store and Services ─────────────────────────────────
	quizStore := store.NewQuizStore()
	quizService := service.NewQuizService(quizStore, completer, rdb, log, cfg.LLMTemperature)
	assistService := service.NewAssistService(completer, log, cfg.LLMTemperature)
	roomService := service.NewRoomService(cfg, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Quiz:   handler.NewQuizHandler(quizService),
		Assist: handler.NewAssistHandler(assistService),
		Room:   handler.NewRoomHandler(roomService),
		WS:     handler.NewWSHandler(rdb, quizService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
