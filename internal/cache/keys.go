package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func SessionStatusKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s:status", sessionID)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
