package api

import "github.com/polyvox/server/domain/entities"

// ChatRequest is the payload for POST /chat. History is optional and may mix
// both tolerated turn shapes.
type ChatRequest struct {
	Text    string                 `json:"text"`
	History []entities.TurnPayload `json:"history,omitempty"`
}

// ChatResponse is the success payload for POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// SynthesizeRequest is the payload for POST /synthesize.
type SynthesizeRequest struct {
	Text string `json:"text"`
}

// SynthesizeResponse is the success payload for POST /synthesize.
type SynthesizeResponse struct {
	AudioURL string `json:"audio_url"`
}

// ErrorResponse is the uniform error payload. Message carries underlying
// detail where available, never a stack trace.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
