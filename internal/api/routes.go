package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
)

// Transcriber turns a temporary audio artifact into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (entities.Transcription, error)
}

// Dialoguer turns a user utterance plus history into a reply.
type Dialoguer interface {
	Reply(ctx context.Context, userText string, history []entities.TurnPayload) (string, error)
}

// Synthesizer turns a reply string into a playable audio URL.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, title string) (string, error)
}

// Handler is the boundary between the HTTP surface and the adapters. It owns
// the temporary-artifact lifecycle and the uniform status mapping.
type Handler struct {
	transcriber Transcriber
	dialoguer   Dialoguer
	synthesizer Synthesizer
	tempDir     string
	logger      *zap.Logger
}

// NewHandler creates the handler and pre-creates the temporary audio
// directory. Creation is idempotent.
func NewHandler(transcriber Transcriber, dialoguer Dialoguer, synthesizer Synthesizer, tempDir string, logger *zap.Logger) (*Handler, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp audio directory: %w", err)
	}
	logger.Info("temporary audio directory ready", zap.String("dir", tempDir))

	return &Handler{
		transcriber: transcriber,
		dialoguer:   dialoguer,
		synthesizer: synthesizer,
		tempDir:     tempDir,
		logger:      logger,
	}, nil
}

// InitRoutes registers all API routes.
func InitRoutes(e *echo.Echo, h *Handler) {
	e.GET("/health", h.Health)
	e.POST("/transcribe", h.Transcribe)
	e.POST("/chat", h.Chat)
	e.POST("/synthesize", h.Synthesize)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "polyvox-server",
	})
}

// Transcribe accepts a multipart audio upload, persists it to a uniquely
// named temporary artifact, transcribes it, and removes the artifact on
// every exit path.
func (h *Handler) Transcribe(c echo.Context) error {
	fileHeader, err := c.FormFile("audio_data")
	if err != nil {
		h.logger.Warn("transcription request without audio file part")
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No audio file part"})
	}
	if fileHeader.Filename == "" {
		h.logger.Warn("transcription request with empty filename")
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No selected file"})
	}

	extension := filepath.Ext(fileHeader.Filename)
	if extension == "" {
		h.logger.Warn("uploaded file has no extension, defaulting to .wav",
			zap.String("filename", fileHeader.Filename))
		extension = ".wav"
	}

	tempPath := filepath.Join(h.tempDir, uuid.NewString()+extension)

	if err := h.saveUpload(fileHeader, tempPath); err != nil {
		h.logger.Error("failed to persist uploaded audio", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server error during transcription process"})
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			h.logger.Error("failed to remove temporary audio file",
				zap.String("path", tempPath), zap.Error(err))
			return
		}
		h.logger.Info("temporary audio file removed", zap.String("path", tempPath))
	}()

	result, err := h.transcriber.Transcribe(c.Request().Context(), tempPath)
	if err != nil {
		return h.respondError(c, "Transcription failed", err)
	}

	return c.JSON(http.StatusOK, result)
}

// Chat replies to a user utterance given caller-supplied history.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		h.logger.Warn("chat request missing text field")
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing 'text' in request body"})
	}

	reply, err := h.dialoguer.Reply(c.Request().Context(), req.Text, req.History)
	if err != nil {
		return h.respondError(c, "Chat processing failed", err)
	}

	return c.JSON(http.StatusOK, ChatResponse{Response: reply})
}

// Synthesize renders text as speech and returns the audio URL.
func (h *Handler) Synthesize(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		h.logger.Warn("synthesize request missing text field")
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing 'text' in request body"})
	}

	audioURL, err := h.synthesizer.Synthesize(c.Request().Context(), req.Text, "ChatbotResponse")
	if err != nil {
		return h.respondError(c, "Speech synthesis failed", err)
	}

	return c.JSON(http.StatusOK, SynthesizeResponse{AudioURL: audioURL})
}

// respondError applies the uniform status mapping: configuration,
// credential, and readiness failures are 503, everything else 500. Full
// detail is logged; the body carries a summary plus the normalized error
// chain.
func (h *Handler) respondError(c echo.Context, summary string, err error) error {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrCapabilityUnavailable) ||
		errors.Is(err, domain.ErrMissingCredential) ||
		errors.Is(err, domain.ErrQuotaOrAuth) ||
		errors.Is(err, domain.ErrDiscoveryFailed) {
		status = http.StatusServiceUnavailable
	}

	h.logger.Error(summary,
		zap.Int("status", status),
		zap.String("path", c.Path()),
		zap.Error(err))

	return c.JSON(status, ErrorResponse{Error: summary, Message: err.Error()})
}

func (h *Handler) saveUpload(fileHeader *multipart.FileHeader, tempPath string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	return nil
}
