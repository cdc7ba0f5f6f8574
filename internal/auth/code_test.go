package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateConfirmationCode(t *testing.T) {
	code, err := GenerateConfirmationCode(16)

	assert.NoError(t, err)
	assert.Len(t, code, 16)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeCharset, r))
	}
}

func TestGenerateConfirmationCode_InvalidLength(t *testing.T) {
	_, err := GenerateConfirmationCode(0)
	assert.Error(t, err)

	_, err = GenerateConfirmationCode(-1)
	assert.Error(t, err)
}

func TestGenerateConfirmationCode_Distinct(t *testing.T) {
	a, err := GenerateConfirmationCode(16)
	assert.NoError(t, err)
	b, err := GenerateConfirmationCode(16)
	assert.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCharsetByte_UniformMapping(t *testing.T) {
	// 256 isn't a multiple of the charset size, so an unguarded modulo
	// over-represents the first few characters. Bytes past the largest
	// whole multiple must be rejected, and every accepted character must
	// be reachable from the same number of byte values.
	for b := biasLimit; b < 256; b++ {
		_, ok := charsetByte(byte(b))
		assert.False(t, ok)
	}

	counts := make(map[byte]int)
	for b := 0; b < biasLimit; b++ {
		ch, ok := charsetByte(byte(b))
		assert.True(t, ok)
		counts[ch]++
	}

	assert.Len(t, counts, len(codeCharset))
	for ch, n := range counts {
		assert.Equal(t, biasLimit/len(codeCharset), n, "character %q", ch)
	}
}

func TestHashAndVerifyConfirmationCode(t *testing.T) {
	code := "abcDEF123456"

	hash, err := HashConfirmationCode(code)
	assert.NoError(t, err)
	assert.NotEqual(t, code, hash)

	assert.True(t, VerifyConfirmationCode(hash, code))
	assert.False(t, VerifyConfirmationCode(hash, "wrong-code"))
}
