package dice

import (
	"math/rand"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_dice.go github.com/KirkDiggler/pigpen/internal/dice Roller

// Roller provides dice rolling functionality
type Roller interface {
	// Roll returns a uniform value in [1, sides]
	Roll(sides int) int
}

// Config for dice roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// randRoller implements Roller using math/rand
type randRoller struct {
	random *rand.Rand
}

// New creates a new dice roller
func New(cfg *Config) *randRoller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	source := rand.NewSource(seed)

	return &randRoller{
		random: rand.New(source),
	}
}

// Roll generates a random dice roll with the specified number of sides
func (r *randRoller) Roll(sides int) int {
	if sides < 1 {
		sides = 6 // Default to 6-sided die
	}
	return r.random.Intn(sides) + 1
}
