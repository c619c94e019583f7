package gamecode

import (
	"math/rand"
	"strings"
	"time"
)

// Length is the fixed size of a join code
const Length = 6

// alphabet omits characters that read ambiguously when shared aloud
// or scribbled down (0/O, 1/I/L)
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Generator produces random join codes. Uniqueness is the caller's
// responsibility; the generator only draws candidates.
type Generator struct {
	random *rand.Rand
}

// Config for the code generator
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new join code generator
func New(cfg *Config) *Generator {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Next returns a random candidate join code
func (g *Generator) Next() string {
	var sb strings.Builder
	sb.Grow(Length)
	for i := 0; i < Length; i++ {
		sb.WriteByte(alphabet[g.random.Intn(len(alphabet))])
	}
	return sb.String()
}

// Normalize maps user input to the stored representation of a code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsCode reports whether the input has the shape of a join code rather
// than a game ID
func IsCode(idOrCode string) bool {
	return len(idOrCode) == Length
}
