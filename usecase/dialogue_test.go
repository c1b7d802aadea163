package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

type fakeLanguageModel struct {
	history []entities.Turn
	prompt  string
	reply   string
	err     error
}

func (f *fakeLanguageModel) Reply(ctx context.Context, history []entities.Turn, prompt string) (string, error) {
	f.history = history
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newDialogueService(t *testing.T, model repositories.LargeLanguageModel, factoryErr error) *DialogueService {
	t.Helper()
	config := NewConfigurator(RetryPolicy{Mode: RetryAlways}, zaptest.NewLogger(t))
	return NewDialogueService(config, func(ctx context.Context) (repositories.LargeLanguageModel, error) {
		if factoryErr != nil {
			return nil, factoryErr
		}
		return model, nil
	}, zaptest.NewLogger(t))
}

func TestReplyWindowsHistory(t *testing.T) {
	fake := &fakeLanguageModel{reply: "ok"}
	svc := newDialogueService(t, fake, nil)

	history := make([]entities.TurnPayload, 14)
	for i := range history {
		sender := "user"
		if i%2 == 1 {
			sender = "bot"
		}
		history[i] = entities.TurnPayload{Text: fmt.Sprintf("turn-%d", i), Sender: sender}
	}

	if _, err := svc.Reply(context.Background(), "hello", history); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if len(fake.history) != 10 {
		t.Fatalf("expected window of 10 turns, got %d", len(fake.history))
	}
	for i, turn := range fake.history {
		want := fmt.Sprintf("turn-%d", i+4)
		if turn.Text != want {
			t.Errorf("window[%d]: expected %s, got %s", i, want, turn.Text)
		}
	}
	if fake.prompt != "hello" {
		t.Errorf("expected prompt hello, got %s", fake.prompt)
	}
}

func TestReplyWindowsBeforeNormalizing(t *testing.T) {
	fake := &fakeLanguageModel{reply: "ok"}
	svc := newDialogueService(t, fake, nil)

	// A malformed entry inside the last 10 must consume a window slot
	// rather than letting an older turn slide in.
	history := make([]entities.TurnPayload, 14)
	for i := range history {
		history[i] = entities.TurnPayload{Text: fmt.Sprintf("turn-%d", i), Sender: "user"}
	}
	history[12] = entities.TurnPayload{}

	if _, err := svc.Reply(context.Background(), "hello", history); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if len(fake.history) != 9 {
		t.Fatalf("expected 9 turns after skipping, got %d", len(fake.history))
	}
	if fake.history[0].Text != "turn-4" {
		t.Errorf("expected window to start at turn-4, got %s", fake.history[0].Text)
	}
	if fake.history[len(fake.history)-1].Text != "turn-13" {
		t.Errorf("expected window to end at turn-13, got %s", fake.history[len(fake.history)-1].Text)
	}
	for _, turn := range fake.history {
		if turn.Text == "turn-3" {
			t.Error("turn-3 admitted into the window")
		}
	}
}

func TestReplyNormalizesBothTurnShapes(t *testing.T) {
	fake := &fakeLanguageModel{reply: "ok"}
	svc := newDialogueService(t, fake, nil)

	history := []entities.TurnPayload{
		{Role: "user", Parts: []entities.TurnPart{{Text: "structured question"}}},
		{Role: "model", Parts: []entities.TurnPart{{Text: "structured answer"}}},
		{Text: "simple question", Sender: "user"},
		{Text: "simple answer", Sender: "bot"},
	}

	if _, err := svc.Reply(context.Background(), "next", history); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	want := []entities.Turn{
		{Role: entities.RoleUser, Text: "structured question"},
		{Role: entities.RoleAssistant, Text: "structured answer"},
		{Role: entities.RoleUser, Text: "simple question"},
		{Role: entities.RoleAssistant, Text: "simple answer"},
	}
	if len(fake.history) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(fake.history))
	}
	for i, turn := range fake.history {
		if turn != want[i] {
			t.Errorf("turn[%d]: expected %+v, got %+v", i, want[i], turn)
		}
	}
}

func TestReplySkipsUnrecognizableEntries(t *testing.T) {
	fake := &fakeLanguageModel{reply: "ok"}
	svc := newDialogueService(t, fake, nil)

	history := []entities.TurnPayload{
		{Text: "kept", Sender: "user"},
		{}, // neither shape
	}

	if _, err := svc.Reply(context.Background(), "go", history); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if len(fake.history) != 1 {
		t.Fatalf("expected 1 turn after skipping, got %d", len(fake.history))
	}
}

func TestReplyMissingCredential(t *testing.T) {
	factoryErr := fmt.Errorf("%w: GEMINI_API_KEY environment variable is not set", domain.ErrMissingCredential)
	svc := newDialogueService(t, nil, factoryErr)

	_, err := svc.Reply(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential in chain, got %v", err)
	}
}

func TestReplyPropagatesModelError(t *testing.T) {
	fake := &fakeLanguageModel{err: domain.ErrEmptyResponse}
	svc := newDialogueService(t, fake, nil)

	_, err := svc.Reply(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
