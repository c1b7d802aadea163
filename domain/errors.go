package domain

import "errors"

// Sentinel errors shared across the adapters and the HTTP layer. Handlers
// classify outcomes with errors.Is, so adapters wrap these with %w and attach
// detail rather than invent new error shapes.
var (
	// ErrMissingCredential means a required API key is not configured.
	ErrMissingCredential = errors.New("API key not configured")

	// ErrDiscoveryFailed means a required downstream identifier (project or
	// voice) could not be resolved from configuration or from the service.
	ErrDiscoveryFailed = errors.New("could not resolve project or voice")

	// ErrCapabilityUnavailable means a capability never reached Ready.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrArtifactMissing means the audio file to transcribe does not exist.
	ErrArtifactMissing = errors.New("audio file not found")

	// ErrQuotaOrAuth means the collaborator rejected our credential or quota.
	ErrQuotaOrAuth = errors.New("API key invalid or quota exhausted")

	// ErrEmptyResponse means the model returned no text-bearing content.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrNoAudioReference means synthesis succeeded but the response carried
	// no playable audio reference under any known field.
	ErrNoAudioReference = errors.New("synthesis response did not contain an audio URL")

	// ErrBackend covers collaborator calls that raised or reported failure.
	ErrBackend = errors.New("backend failure")
)
