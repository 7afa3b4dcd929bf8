package intake

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrInvalidText       = errors.New("no text to analyze")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrAlreadyFinalized  = errors.New("session already finalized")
	ErrStorage           = errors.New("storage unavailable")
)
