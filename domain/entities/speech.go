package entities

// SpeechChunk is one recognized segment of an utterance. Some collaborators
// report the detected language per segment rather than per result.
type SpeechChunk struct {
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
}

// SpeechResult is the raw output of a speech-to-text collaborator. Language
// may appear directly, inside the chunks, or not at all.
type SpeechResult struct {
	Text     string        `json:"text"`
	Language string        `json:"language,omitempty"`
	Chunks   []SpeechChunk `json:"chunks,omitempty"`
}

// Transcription is the normalized transcription result returned to callers.
// Language is best effort and empty when no detection data was available.
type Transcription struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}
