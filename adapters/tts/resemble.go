package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/polyvox/server/domain"
	"github.com/polyvox/server/domain/entities"
	"github.com/polyvox/server/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://app.resemble.ai/api/v2"
	defaultPageSize   = 10
	requestTimeout    = 60 * time.Second
)

// Config holds configuration for the Resemble TTS adapter.
type Config struct {
	APIKey  string // Required
	BaseURL string // Optional, defaults to the public v2 API
}

// ResembleTTS implements SpeechSynthesizer using the Resemble AI REST API.
type ResembleTTS struct {
	apiKey     string
	apiBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ repositories.SpeechSynthesizer = (*ResembleTTS)(nil)

// clipPayload is the request body for clip creation.
type clipPayload struct {
	VoiceUUID    string `json:"voice_uuid"`
	Body         string `json:"body"`
	Title        string `json:"title,omitempty"`
	IsPublic     bool   `json:"is_public"`
	IsArchived   bool   `json:"is_archived"`
	SampleRate   int    `json:"sample_rate,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

// listEnvelope is the shared shape of the paginated listing endpoints.
type listEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Items   []entities.Resource `json:"items"`
}

// NewResembleTTS creates a new Resemble TTS instance.
func NewResembleTTS(config Config, logger *zap.Logger) (*ResembleTTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: RESEMBLE_API_KEY environment variable is not set", domain.ErrMissingCredential)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	return &ResembleTTS{
		apiKey:     config.APIKey,
		apiBaseURL: baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// ListProjects returns the first page of projects visible to the account.
func (r *ResembleTTS) ListProjects(ctx context.Context) ([]entities.Resource, error) {
	return r.list(ctx, "projects")
}

// ListVoices returns the first page of voices visible to the account.
func (r *ResembleTTS) ListVoices(ctx context.Context) ([]entities.Resource, error) {
	return r.list(ctx, "voices")
}

func (r *ResembleTTS) list(ctx context.Context, resource string) ([]entities.Resource, error) {
	url := fmt.Sprintf("%s/%s?page=1&page_size=%d", r.apiBaseURL, resource, defaultPageSize)

	var envelope listEnvelope
	if err := r.do(ctx, http.MethodGet, url, nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		return nil, fmt.Errorf("listing %s failed: %s", resource, envelope.Message)
	}

	r.logger.Info("listed resources",
		zap.String("resource", resource),
		zap.Int("count", len(envelope.Items)))

	return envelope.Items, nil
}

// CreateClip synthesizes req.Body synchronously and returns the outcome,
// including the reference to the rendered audio.
func (r *ResembleTTS) CreateClip(ctx context.Context, req entities.ClipRequest) (*entities.ClipResponse, error) {
	url := fmt.Sprintf("%s/projects/%s/clips?sync=true", r.apiBaseURL, req.ProjectUUID)

	payload := clipPayload{
		VoiceUUID:    req.VoiceUUID,
		Body:         req.Body,
		Title:        req.Title,
		IsPublic:     req.IsPublic,
		IsArchived:   req.IsArchived,
		SampleRate:   req.SampleRate,
		OutputFormat: req.OutputFormat,
	}

	var response entities.ClipResponse
	if err := r.do(ctx, http.MethodPost, url, payload, &response); err != nil {
		return nil, err
	}

	r.logger.Info("clip created",
		zap.Bool("success", response.Success),
		zap.String("audio_url", response.AudioReference()))

	return &response, nil
}

// do executes one authenticated JSON round trip. Error payloads on non-2xx
// statuses still decode when they match the expected shape, so the caller
// sees the collaborator's failure message instead of a bare status code.
func (r *ResembleTTS) do(ctx context.Context, method, url string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Token token="+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("API returned error %d: %s", resp.StatusCode, string(responseBody))
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
