package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Subteran/DunGen-sub001/internal/config"
	"github.com/Subteran/DunGen-sub001/internal/engine"
	"github.com/Subteran/DunGen-sub001/internal/handlers"
	"github.com/Subteran/DunGen-sub001/internal/logger"
	"github.com/Subteran/DunGen-sub001/internal/middleware"
	"github.com/Subteran/DunGen-sub001/internal/services"
	"github.com/Subteran/DunGen-sub001/internal/storage"
	"github.com/Subteran/DunGen-sub001/pkg/prompts"
	"github.com/Subteran/DunGen-sub001/pkg/session"
)

func storageSetup(cfg *config.Config, log *slog.Logger) (*storage.RedisStorage, error) {
	store, err := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := store.WaitForConnection(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting DunGen API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"generator_provider", cfg.GeneratorProvider,
		"model_name", cfg.ModelName)

	var generator services.GeneratorService
	switch strings.ToLower(cfg.GeneratorProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		generator = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic generator provider")
	case "venice":
		if cfg.VeniceAPIKey == "" {
			log.Error("Venice API key is required when using venice provider")
			os.Exit(1)
		}
		generator = services.NewVeniceService(cfg.VeniceAPIKey, cfg.ModelName)
		log.Info("Using Venice generator provider")
	default:
		log.Error("Invalid generator provider specified", "provider", cfg.GeneratorProvider, "supported", []string{"anthropic", "venice"})
		os.Exit(1)
	}

	store, err := storageSetup(cfg, log)
	if err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	tablesCtx, tablesCancel := context.WithTimeout(context.Background(), 10*time.Second)
	tables, err := store.LoadTables(tablesCtx)
	tablesCancel()
	if err != nil {
		log.Error("Failed to load generation tables", "error", err)
		os.Exit(1)
	}

	eng := engine.New(generator, store, tables, engine.Config{
		MaxPromptChars:      cfg.MaxPromptChars,
		SocialTurnCap:       cfg.SocialTurnCap,
		QuestLength:         cfg.QuestLength,
		NoConsecutiveCombat: cfg.NoConsecutiveCombat,
		Rating:              cfg.Rating,
		Sessions: session.Config{
			ResetThresholds: map[prompts.Role]int{
				prompts.RoleEncounter: cfg.SessionResetUses,
				prompts.RoleNarrative: cfg.SessionResetUses,
			},
			GlobalResetTurns: cfg.GlobalResetTurns,
		},
	}, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, cfg.ModelName, log)
	mux.Handle("/health", healthHandler)

	gameHandler := handlers.NewGameHandler(eng, store, log)
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	turnHandler := handlers.NewTurnHandler(eng, store, log)
	mux.Handle("/v1/turn", turnHandler)

	pcHandler := handlers.NewPCHandler(store, log)
	mux.Handle("/v1/pcs", pcHandler)
	mux.Handle("/v1/pcs/", pcHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
