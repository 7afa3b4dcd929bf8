package models

import "context"

// Transcriber is the speech-to-text interface. Never call a specific provider
// directly; inject this interface.
type Transcriber interface {
	// Transcribe converts raw audio bytes into text.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	// Name returns the provider identifier (e.g., "openai", "stub").
	Name() string
}
