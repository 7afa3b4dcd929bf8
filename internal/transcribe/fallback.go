package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kiranshivaraju/voicedesk/pkg/models"
)

// Result describes which provider produced a transcript.
type Result struct {
	Text     string
	Provider string
	Fallback bool
}

// Fallback tries primary first and answers from secondary when primary fails
// or returns blank text. Upstream failures are logged, never returned, unless
// there is no secondary to answer instead.
type Fallback struct {
	primary   models.Transcriber
	secondary models.Transcriber
	timeout   time.Duration
}

// WithFallback wraps primary so that it never surfaces an upstream error.
// A nil secondary passes primary errors through. A zero timeout leaves the
// caller's deadline untouched.
func WithFallback(primary, secondary models.Transcriber, timeout time.Duration) *Fallback {
	return &Fallback{primary: primary, secondary: secondary, timeout: timeout}
}

func (f *Fallback) Name() string { return f.primary.Name() }

func (f *Fallback) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	res, err := f.TranscribeResult(ctx, audio, filename)
	return res.Text, err
}

// TranscribeResult is Transcribe plus provenance for the audit trail.
func (f *Fallback) TranscribeResult(ctx context.Context, audio []byte, filename string) (Result, error) {
	callCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	text, err := f.primary.Transcribe(callCtx, audio, filename)
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = ErrEmptyTranscript
	}
	if err == nil {
		return Result{Text: text, Provider: f.primary.Name()}, nil
	}
	if f.secondary == nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, f.primary.Name(), err)
	}

	slog.WarnContext(ctx, "transcription upstream unavailable, using fallback",
		"code", "UPSTREAM_UNAVAILABLE",
		"provider", f.primary.Name(),
		"fallback", f.secondary.Name(),
		"error", err,
	)

	text, ferr := f.secondary.Transcribe(ctx, audio, filename)
	if ferr != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrProviderUnavailable, f.secondary.Name(), ferr)
	}
	return Result{Text: text, Provider: f.secondary.Name(), Fallback: true}, nil
}

var _ models.Transcriber = (*Fallback)(nil)
