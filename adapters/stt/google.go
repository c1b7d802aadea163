package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

// Config holds recognition settings for the Google collaborator.
type Config struct {
	SampleRate int
	// Language is the primary recognition language. AltLanguages enable
	// per-result language detection on multilingual audio.
	Language     string
	AltLanguages []string
}

// GoogleSpeechToText implements SpeechToText for Google Cloud.
type GoogleSpeechToText struct {
	client *speech.Client
	config Config
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the client. Credentials come from the
// standard Google application-default chain.
func NewGoogleSpeechToText(ctx context.Context, config Config, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	if config.SampleRate == 0 {
		config.SampleRate = 16000
	}
	if config.Language == "" {
		config.Language = "en-US"
	}

	return &GoogleSpeechToText{client: client, config: config, logger: logger}, nil
}

// Recognize transcribes the audio file at audioPath in a single request.
// Each recognized segment becomes a chunk carrying the language the service
// detected for it.
func (g *GoogleSpeechToText) Recognize(ctx context.Context, audioPath string) (*entities.SpeechResult, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                 encodingForFile(audioPath),
			SampleRateHertz:          int32(g.config.SampleRate),
			LanguageCode:             g.config.Language,
			AlternativeLanguageCodes: g.config.AltLanguages,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("recognition request failed: %w", err)
	}

	result := &entities.SpeechResult{}
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		transcript := r.Alternatives[0].Transcript
		result.Text += transcript
		result.Chunks = append(result.Chunks, entities.SpeechChunk{
			Text:     transcript,
			Language: r.LanguageCode,
		})
	}

	g.logger.Info("recognition completed",
		zap.Int("segments", len(result.Chunks)),
		zap.Int("bytes", len(data)))

	return result, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// encodingForFile maps the artifact's extension to a recognition encoding.
// Unknown extensions fall back to LINEAR16, the upload default.
func encodingForFile(audioPath string) speechpb.RecognitionConfig_AudioEncoding {
	switch strings.ToLower(filepath.Ext(audioPath)) {
	case ".flac":
		return speechpb.RecognitionConfig_FLAC
	case ".ogg", ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	case ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case ".amr":
		return speechpb.RecognitionConfig_AMR
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
