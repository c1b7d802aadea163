package usecase

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

// SpeechToTextFactory builds the speech-to-text collaborator. It runs inside
// capability initialization, so credential and model-load failures surface
// through the configurator rather than at construction.
type SpeechToTextFactory func(ctx context.Context) (repositories.SpeechToText, error)

// TranscriptionService turns a temporary audio artifact into text plus an
// optional detected language.
type TranscriptionService struct {
	config *Configurator
	logger *zap.Logger
	stt    repositories.SpeechToText
}

// NewTranscriptionService creates the service and registers its capability
// setup with the configurator.
func NewTranscriptionService(config *Configurator, factory SpeechToTextFactory, logger *zap.Logger) *TranscriptionService {
	s := &TranscriptionService{config: config, logger: logger}
	config.Register(CapabilitySpeechToText, func(ctx context.Context) error {
		stt, err := factory(ctx)
		if err != nil {
			return err
		}
		s.stt = stt
		return nil
	})
	return s
}

// Transcribe transcribes the audio file at audioPath. No retries here; retry
// policy belongs to the caller.
func (s *TranscriptionService) Transcribe(ctx context.Context, audioPath string) (entities.Transcription, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return entities.Transcription{}, fmt.Errorf("%w: %s", domain.ErrArtifactMissing, audioPath)
	}

	if err := s.config.EnsureReady(ctx, CapabilitySpeechToText); err != nil {
		return entities.Transcription{}, fmt.Errorf("%w: %w", domain.ErrCapabilityUnavailable, err)
	}

	result, err := s.stt.Recognize(ctx, audioPath)
	if err != nil {
		return entities.Transcription{}, fmt.Errorf("%w: transcription: %w", domain.ErrBackend, err)
	}

	transcription := entities.Transcription{
		Text:     result.Text,
		Language: detectedLanguage(result),
	}

	s.logger.Info("transcription completed",
		zap.String("text", transcription.Text),
		zap.String("language", transcription.Language))

	return transcription, nil
}

// Close releases the speech-to-text collaborator if one was ever built and
// it holds releasable resources, such as a gRPC connection.
func (s *TranscriptionService) Close() error {
	if closer, ok := s.stt.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// detectedLanguage tries the known locations of the detected-language hint in
// priority order. Collaborator-shape drift stays a one-place change.
func detectedLanguage(result *entities.SpeechResult) string {
	if result.Language != "" {
		return result.Language
	}
	for _, chunk := range result.Chunks {
		if chunk.Language != "" {
			return chunk.Language
		}
	}
	return ""
}
