package repositories

import (
	"context"

	"github.com/polyvox/server/domain/entities"
)

// SpeechSynthesizer abstracts text-to-speech services that render clips
// asynchronously reachable by URL.
type SpeechSynthesizer interface {
	// ListProjects returns the projects visible to the configured account.
	ListProjects(ctx context.Context) ([]entities.Resource, error)
	// ListVoices returns the voices visible to the configured account.
	ListVoices(ctx context.Context) ([]entities.Resource, error)
	// CreateClip synthesizes req.Body and returns the collaborator's
	// outcome, including the reference to the rendered audio.
	CreateClip(ctx context.Context, req entities.ClipRequest) (*entities.ClipResponse, error)
}
