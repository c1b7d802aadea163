package repositories

import (
	"context"

	"github.com/polyvox/server/domain/entities"
)

// LargeLanguageModel abstracts any chat/LLM provider.
type LargeLanguageModel interface {
	// Reply issues a fresh stateless exchange seeded with history and
	// returns the model's reply to prompt.
	Reply(ctx context.Context, history []entities.Turn, prompt string) (string, error)
}
