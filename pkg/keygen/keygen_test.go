package keygen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	key := NewKey()
	assert.True(t, strings.HasPrefix(key, KeyPrefix))
	assert.Len(t, key, len(KeyPrefix)+32)
	assert.NotContains(t, key, "-")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k := NewKey()
		assert.False(t, seen[k], "duplicate key generated")
		seen[k] = true
	}
}

func TestMask(t *testing.T) {
	key := "trj_live_0123456789abcdef0123456789abcdef"
	masked := Mask(key)
	assert.Equal(t, "trj_…cdef", masked)
	assert.NotContains(t, masked, "0123456789")

	// too short to mask meaningfully
	assert.Equal(t, "short", Mask("short"))
	assert.Equal(t, "", Mask(""))
}
