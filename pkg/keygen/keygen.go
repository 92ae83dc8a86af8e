package keygen

import (
	"strings"

	"github.com/google/uuid"
)

// KeyPrefix marks journal API keys so a leaked key is recognizable in
// scanners and server logs.
const KeyPrefix = "trj_live_"

// NewKey generates a new journal API key: the trj_live_ prefix followed
// by 32 hex characters.
func NewKey() string {
	return KeyPrefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Mask returns a display-safe form of a key: first four and last four
// characters with the middle elided.
func Mask(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:4] + "…" + key[len(key)-4:]
}
