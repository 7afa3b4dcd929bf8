package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// MockProvider satisfies models.Transcriber for testing.
type MockProvider struct {
	Name_          string
	TranscribeFunc func(ctx context.Context, audio []byte, filename string) (string, error)

	mu    sync.Mutex
	calls int
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename)
	}
	return "", nil
}

// Calls returns how many times Transcribe was invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// NewMockProvider returns a MockProvider that always answers with text.
func NewMockProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		TranscribeFunc: func(_ context.Context, _ []byte, _ string) (string, error) {
			return text, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		TranscribeFunc: func(_ context.Context, _ []byte, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		TranscribeFunc: func(ctx context.Context, _ []byte, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements Transcriber.
var _ models.Transcriber = (*MockProvider)(nil)
