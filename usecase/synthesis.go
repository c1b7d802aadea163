package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

// Fixed clip parameters: common sample rate, web-compatible encoding.
const (
	clipSampleRate   = 22050
	clipOutputFormat = "mp3"
)

// SynthesizerFactory builds the text-to-speech collaborator.
type SynthesizerFactory func(ctx context.Context) (repositories.SpeechSynthesizer, error)

// VoiceIdentity is the explicitly configured project and voice. Either field
// may be empty, in which case the first available one is discovered during
// capability initialization.
type VoiceIdentity struct {
	ProjectUUID string
	VoiceUUID   string
}

// SynthesisService turns a reply string into a reference to playable audio.
type SynthesisService struct {
	config   *Configurator
	logger   *zap.Logger
	synth    repositories.SpeechSynthesizer
	resolved VoiceIdentity
}

// NewSynthesisService creates the service and registers its capability setup,
// which includes resolving the target project and voice.
func NewSynthesisService(config *Configurator, factory SynthesizerFactory, identity VoiceIdentity, logger *zap.Logger) *SynthesisService {
	s := &SynthesisService{config: config, logger: logger}
	config.Register(CapabilitySynthesis, func(ctx context.Context) error {
		synth, err := factory(ctx)
		if err != nil {
			return err
		}
		resolved, err := resolveIdentity(ctx, synth, identity)
		if err != nil {
			return err
		}
		s.synth = synth
		s.resolved = resolved
		logger.Info("synthesis identity resolved",
			zap.String("project_uuid", resolved.ProjectUUID),
			zap.String("voice_uuid", resolved.VoiceUUID))
		return nil
	})
	return s
}

// Synthesize renders text as speech and returns the audio URL.
func (s *SynthesisService) Synthesize(ctx context.Context, text, title string) (string, error) {
	if err := s.config.EnsureReady(ctx, CapabilitySynthesis); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCapabilityUnavailable, err)
	}

	resp, err := s.synth.CreateClip(ctx, entities.ClipRequest{
		ProjectUUID:  s.resolved.ProjectUUID,
		VoiceUUID:    s.resolved.VoiceUUID,
		Body:         text,
		Title:        title,
		SampleRate:   clipSampleRate,
		OutputFormat: clipOutputFormat,
		IsPublic:     false,
		IsArchived:   false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: synthesis: %w", domain.ErrBackend, err)
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "unknown error from synthesis service"
		}
		return "", fmt.Errorf("%w: synthesis: %s", domain.ErrBackend, msg)
	}

	audioURL := resp.AudioReference()
	if audioURL == "" {
		return "", domain.ErrNoAudioReference
	}

	s.logger.Info("synthesis completed", zap.String("audio_url", audioURL))
	return audioURL, nil
}

// resolveIdentity prefers explicit configuration and falls back to the first
// available project and voice.
func resolveIdentity(ctx context.Context, synth repositories.SpeechSynthesizer, identity VoiceIdentity) (VoiceIdentity, error) {
	resolved := identity

	if resolved.ProjectUUID == "" {
		projects, err := synth.ListProjects(ctx)
		if err != nil {
			return VoiceIdentity{}, fmt.Errorf("%w: listing projects: %v", domain.ErrDiscoveryFailed, err)
		}
		if len(projects) == 0 {
			return VoiceIdentity{}, fmt.Errorf("%w: no projects found", domain.ErrDiscoveryFailed)
		}
		resolved.ProjectUUID = projects[0].UUID
	}

	if resolved.VoiceUUID == "" {
		voices, err := synth.ListVoices(ctx)
		if err != nil {
			return VoiceIdentity{}, fmt.Errorf("%w: listing voices: %v", domain.ErrDiscoveryFailed, err)
		}
		if len(voices) == 0 {
			return VoiceIdentity{}, fmt.Errorf("%w: no voices found", domain.ErrDiscoveryFailed)
		}
		resolved.VoiceUUID = voices[0].UUID
	}

	return resolved, nil
}
