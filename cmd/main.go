package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/polyvox/server/adapters/llm"
	"github.com/polyvox/server/adapters/stt"
	"github.com/polyvox/server/adapters/tts"
	"github.com/polyvox/server/domain/repositories"
	"github.com/polyvox/server/internal/api"
	"github.com/polyvox/server/internal/config"
	"github.com/polyvox/server/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Capability configurator with the configured retry policy
	policy := usecase.RetryPolicy{Mode: usecase.RetryAlways}
	if cfg.Capability.RetryMode == "cooldown" {
		policy = usecase.RetryPolicy{Mode: usecase.RetryCooldown, Cooldown: cfg.Capability.RetryCooldown}
	}
	configurator := usecase.NewConfigurator(policy, logger)

	// Adapter services; collaborators are built lazily on first use
	transcription := usecase.NewTranscriptionService(configurator,
		func(ctx context.Context) (repositories.SpeechToText, error) {
			return stt.NewGoogleSpeechToText(ctx, stt.Config{
				SampleRate:   cfg.STT.SampleRate,
				Language:     cfg.STT.Language,
				AltLanguages: cfg.STT.AltLanguages,
			}, logger)
		}, logger)

	dialogue := usecase.NewDialogueService(configurator,
		func(ctx context.Context) (repositories.LargeLanguageModel, error) {
			return llm.NewGemini(ctx, llm.Config{
				APIKey:         cfg.Gemini.APIKey,
				Model:          cfg.Gemini.Model,
				TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
			}, logger)
		}, logger)

	synthesis := usecase.NewSynthesisService(configurator,
		func(ctx context.Context) (repositories.SpeechSynthesizer, error) {
			return tts.NewResembleTTS(tts.Config{
				APIKey:  cfg.Resemble.APIKey,
				BaseURL: cfg.Resemble.BaseURL,
			}, logger)
		},
		usecase.VoiceIdentity{
			ProjectUUID: cfg.Resemble.ProjectUUID,
			VoiceUUID:   cfg.Resemble.VoiceUUID,
		}, logger)

	handler, err := api.NewHandler(transcription, dialogue, synthesis, cfg.Server.TempDir, logger)
	if err != nil {
		logger.Fatal("failed to initialize API handler", zap.Error(err))
	}
	api.InitRoutes(e, handler)

	// Warm capabilities in the background; failures stay non-fatal and are
	// retried lazily on first use.
	if cfg.Capability.Warmup {
		go configurator.Warmup(context.Background())
	}

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.Int("port", cfg.Server.Port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if err := transcription.Close(); err != nil {
		logger.Warn("failed to close speech client", zap.Error(err))
	}

	logger.Info("server exited")
}
