package transcribe

import (
	"fmt"

	"github.com/kiranshivaraju/voicedesk/internal/config"
	"github.com/kiranshivaraju/voicedesk/internal/transcribe/openai"
	"github.com/kiranshivaraju/voicedesk/internal/transcribe/stub"
)

// NewProvider constructs the transcriber selected by config.
// Called once at server startup. Remote providers are backed by the offline
// placeholder so a failed upstream call still yields text.
func NewProvider(cfg config.STTConfig) (*Fallback, error) {
	switch cfg.Provider {
	case "", "stub":
		return WithFallback(stub.NewProvider(), nil, 0), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai transcription requires an API key")
		}
		return WithFallback(openai.NewProvider(cfg.OpenAI), stub.NewProvider(), cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q: must be one of stub, openai", cfg.Provider)
	}
}
