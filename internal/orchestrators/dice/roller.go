package dice

import (
	"math/rand/v2"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-compendium/internal/errors"
)

// SeededRoller is a dice.Roller whose results repeat for a given seed.
// Flow runs use it so a failing iteration can be replayed.
type SeededRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ dice.Roller = (*SeededRoller)(nil)

// NewSeededRoller creates a roller seeded with seed
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Roll returns a value in [1, size]
func (r *SeededRoller) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(size) + 1, nil
}

// RollN rolls count dice of the given size
func (r *SeededRoller) RollN(count, size int) ([]int, error) {
	if count <= 0 {
		return nil, errors.InvalidArgumentf("dice count must be positive, got %d", count)
	}
	if size <= 0 {
		return nil, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, count)
	for i := range out {
		out[i] = r.rng.IntN(size) + 1
	}
	return out, nil
}

// Intn returns a value in [0, n). Randomizers share the roller's stream so
// one seed drives both dice and picks.
func (r *SeededRoller) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
