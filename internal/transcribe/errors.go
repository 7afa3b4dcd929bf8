package transcribe

import "errors"

var (
	ErrProviderUnavailable = errors.New("transcription provider unavailable")
	ErrEmptyTranscript     = errors.New("transcription provider returned empty text")
)
