package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	gen, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)

	n := gen.Generate()
	assert.True(t, strings.HasPrefix(n, "PRF-"), n)
	assert.GreaterOrEqual(t, len(n), len("PRF-")+8)

	// Alphabet excludes ambiguous characters.
	for _, c := range strings.TrimPrefix(n, "PRF-") {
		assert.NotContains(t, "IO01", string(c))
	}
}

func TestGenerateUnique(t *testing.T) {
	gen, err := NewOrderNumberGenerator("test-salt")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n := gen.Generate()
		assert.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}
