package repositories

import (
	"context"

	"github.com/polyvox/server/domain/entities"
)

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// Recognize transcribes the audio file at audioPath. The result carries
	// detected-language data in whichever shape the backend provides it.
	Recognize(ctx context.Context, audioPath string) (*entities.SpeechResult, error)
}
