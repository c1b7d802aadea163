package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

type fakeSpeechToText struct {
	result *entities.SpeechResult
	err    error
	path   string
}

func (f *fakeSpeechToText) Recognize(ctx context.Context, audioPath string) (*entities.SpeechResult, error) {
	f.path = audioPath
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTranscriptionService(t *testing.T, stt repositories.SpeechToText, factoryErr error) *TranscriptionService {
	t.Helper()
	config := NewConfigurator(RetryPolicy{Mode: RetryAlways}, zaptest.NewLogger(t))
	return NewTranscriptionService(config, func(ctx context.Context) (repositories.SpeechToText, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return stt, nil
	}, zaptest.NewLogger(t))
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatalf("writing temp audio: %v", err)
	}
	return path
}

func TestTranscribeMissingArtifact(t *testing.T) {
	svc := newTranscriptionService(t, &fakeSpeechToText{}, nil)

	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "absent.wav"))
	if !errors.Is(err, domain.ErrArtifactMissing) {
		t.Fatalf("expected ErrArtifactMissing, got %v", err)
	}
}

func TestTranscribeCapabilityUnavailable(t *testing.T) {
	svc := newTranscriptionService(t, nil, errors.New("model load failed"))

	_, err := svc.Transcribe(context.Background(), writeTempAudio(t))
	if !errors.Is(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

func TestTranscribeLanguageFromChunks(t *testing.T) {
	fake := &fakeSpeechToText{result: &entities.SpeechResult{
		Text:   "hola",
		Chunks: []entities.SpeechChunk{{Language: "es"}},
	}}
	svc := newTranscriptionService(t, fake, nil)

	got, err := svc.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if got.Text != "hola" || got.Language != "es" {
		t.Errorf("expected {hola es}, got {%s %s}", got.Text, got.Language)
	}
}

func TestTranscribeDirectLanguageWins(t *testing.T) {
	fake := &fakeSpeechToText{result: &entities.SpeechResult{
		Text:     "bonjour",
		Language: "fr",
		Chunks:   []entities.SpeechChunk{{Language: "es"}},
	}}
	svc := newTranscriptionService(t, fake, nil)

	got, err := svc.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if got.Language != "fr" {
		t.Errorf("expected direct language fr, got %s", got.Language)
	}
}

func TestTranscribeLanguageAbsent(t *testing.T) {
	fake := &fakeSpeechToText{result: &entities.SpeechResult{Text: "hello"}}
	svc := newTranscriptionService(t, fake, nil)

	got, err := svc.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if got.Language != "" {
		t.Errorf("expected empty language, got %s", got.Language)
	}
}

type closableSpeechToText struct {
	fakeSpeechToText
	closed bool
}

func (f *closableSpeechToText) Close() error {
	f.closed = true
	return nil
}

func TestCloseReleasesCollaborator(t *testing.T) {
	fake := &closableSpeechToText{fakeSpeechToText: fakeSpeechToText{result: &entities.SpeechResult{Text: "hi"}}}
	svc := newTranscriptionService(t, fake, nil)

	if _, err := svc.Transcribe(context.Background(), writeTempAudio(t)); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !fake.closed {
		t.Error("collaborator was not closed")
	}
}

func TestCloseBeforeInitIsNoop(t *testing.T) {
	svc := newTranscriptionService(t, &fakeSpeechToText{}, nil)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close on uninitialized service: %v", err)
	}
}

func TestTranscribeBackendFailure(t *testing.T) {
	fake := &fakeSpeechToText{err: errors.New("inference exploded")}
	svc := newTranscriptionService(t, fake, nil)

	_, err := svc.Transcribe(context.Background(), writeTempAudio(t))
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}
