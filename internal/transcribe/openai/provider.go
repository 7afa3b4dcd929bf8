package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/voicedesk/internal/config"
	"github.com/kiranshivaraju/voicedesk/pkg/models"
	openai "github.com/sashabaranov/go-openai"
)

// transcriptionClient is the subset of *openai.Client the provider uses.
type transcriptionClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Provider implements models.Transcriber using the OpenAI Whisper API.
type Provider struct {
	client   transcriptionClient
	model    string
	language string
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return newProvider(openai.NewClient(cfg.APIKey), cfg)
}

func newProvider(client transcriptionClient, cfg config.OpenAIConfig) *Provider {
	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &Provider{client: client, model: model, language: cfg.Language}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: p.language,
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

var _ models.Transcriber = (*Provider)(nil)
