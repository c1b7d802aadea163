package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

// historyLimit bounds the working window of caller-supplied history.
const historyLimit = 10

// LanguageModelFactory builds the dialogue collaborator.
type LanguageModelFactory func(ctx context.Context) (repositories.LargeLanguageModel, error)

// DialogueService turns a user utterance plus caller-supplied history into a
// reply. History is re-submitted in full on every call; only the most recent
// window reaches the collaborator.
type DialogueService struct {
	config *Configurator
	logger *zap.Logger
	model  repositories.LargeLanguageModel
}

// NewDialogueService creates the service and registers its capability setup
// with the configurator.
func NewDialogueService(config *Configurator, factory LanguageModelFactory, logger *zap.Logger) *DialogueService {
	s := &DialogueService{config: config, logger: logger}
	config.Register(CapabilityDialogue, func(ctx context.Context) error {
		model, err := factory(ctx)
		if err != nil {
			return err
		}
		s.model = model
		return nil
	})
	return s
}

// Reply replies to userText given the caller's history.
func (s *DialogueService) Reply(ctx context.Context, userText string, history []entities.TurnPayload) (string, error) {
	if err := s.config.EnsureReady(ctx, CapabilityDialogue); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCapabilityUnavailable, err)
	}

	window := s.buildWindow(history)

	s.logger.Info("sending chat request",
		zap.String("text", userText),
		zap.Int("history_length", len(window)))

	reply, err := s.model.Reply(ctx, window, userText)
	if err != nil {
		return "", err
	}

	s.logger.Info("chat reply generated", zap.String("reply", reply))
	return reply, nil
}

// buildWindow bounds the raw history to the last historyLimit entries and
// then normalizes the tolerated wire shapes. Entries matching neither shape
// still consume a window slot, then get skipped.
func (s *DialogueService) buildWindow(history []entities.TurnPayload) []entities.Turn {
	window := entities.WindowPayloads(history, historyLimit)
	turns := make([]entities.Turn, 0, len(window))
	for _, payload := range window {
		turn, ok := entities.NormalizeTurn(payload)
		if !ok {
			s.logger.Warn("skipping unrecognizable history entry")
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}
