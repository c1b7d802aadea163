package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

// systemPersona is the fixed instruction under which every exchange runs.
const systemPersona = "You are a helpful and concise multilingual conversational assistant. " +
	"Respond in the language of the user's prompt if you can determine it, otherwise use English. " +
	"Keep your answers brief."

const defaultModel = "gemini-1.5-flash"

// Config holds the settings for the Gemini collaborator.
type Config struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Gemini implements the LargeLanguageModel interface using Google's Gemini API.
type Gemini struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

var _ repositories.LargeLanguageModel = (*Gemini)(nil)

// NewGemini creates a new Gemini instance. The missing-credential case is
// classified so callers can map it onto a service-unavailable response.
func NewGemini(ctx context.Context, config Config, logger *zap.Logger) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable is not set", domain.ErrMissingCredential)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	timeout := 30 * time.Second
	if config.TimeoutSeconds > 0 {
		timeout = time.Duration(config.TimeoutSeconds) * time.Second
	}

	return &Gemini{
		client:  client,
		logger:  logger,
		model:   model,
		timeout: timeout,
	}, nil
}

// Reply issues a fresh stateless exchange seeded with history under the
// fixed persona and returns the model's reply to prompt.
func (g *Gemini) Reply(ctx context.Context, history []entities.Turn, prompt string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == entities.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPersona, genai.RoleUser),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: timeout", domain.ErrBackend)
		}
		return "", classifyError(err)
	}

	reply := extractText(response)
	if reply == "" {
		g.logger.Warn("Gemini response contained no text-bearing content")
		return "", domain.ErrEmptyResponse
	}

	return reply, nil
}

// extractText concatenates the text-bearing parts of the first candidate, in
// order, falling back to later candidates when the first carries no text.
func extractText(response *genai.GenerateContentResponse) string {
	if response == nil {
		return ""
	}
	for _, candidate := range response.Candidates {
		if candidate.Content == nil {
			continue
		}
		var text string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text != "" {
			return text
		}
	}
	return ""
}

// classifyError maps collaborator faults onto the domain taxonomy. The API
// reports credential and quota problems only through the error text.
func classifyError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "API_KEY_INVALID"),
		strings.Contains(msg, "API key"),
		strings.Contains(msg, "PERMISSION_DENIED"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(msg, "quota"):
		return fmt.Errorf("%w: %v", domain.ErrQuotaOrAuth, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
}
