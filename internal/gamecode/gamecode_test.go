package gamecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextProducesValidCodes(t *testing.T) {
	generator := New(&Config{Seed: 42})

	for i := 0; i < 100; i++ {
		code := generator.Next()
		assert.Len(t, code, Length)
		for _, c := range code {
			assert.Contains(t, alphabet, string(c))
		}
	}
}

func TestNextIsDeterministicForSeed(t *testing.T) {
	first := New(&Config{Seed: 7})
	second := New(&Config{Seed: 7})

	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Next(), second.Next())
	}
}

func TestAlphabetOmitsAmbiguousCharacters(t *testing.T) {
	for _, c := range "0O1IL" {
		assert.NotContains(t, alphabet, string(c))
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABCDEF", Normalize("abcdef"))
	assert.Equal(t, "ABCDEF", Normalize("  AbCdEf "))
	assert.Equal(t, "", Normalize("   "))
}

func TestIsCode(t *testing.T) {
	generator := New(&Config{Seed: 1})
	assert.True(t, IsCode(generator.Next()))
	assert.True(t, IsCode(strings.Repeat("A", Length)))
	assert.False(t, IsCode("a-uuid-shaped-identifier"))
	assert.False(t, IsCode(""))
}
