package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("가격: 10,000원", ":", 1)
	assert.NoError(t, err)
	assert.Equal(t, " 10,000원", part)

	_, err = GetSplitPart("no-separator", ":", 1)
	assert.Error(t, err)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10))
	assert.Equal(t, "abcde", TruncateRunes("abcdefgh", 5))
	// Korean characters count as one rune each, not three bytes
	assert.Equal(t, "에어팟", TruncateRunes("에어팟 프로 2", 3))
	assert.Equal(t, "", TruncateRunes("", 5))
}
