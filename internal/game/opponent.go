package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// captureMarker identifies capturing moves in SAN.
const captureMarker = "x"

// pickGreedy prefers any capture over any quiet move and otherwise picks uniformly.
// moves must not be empty.
func pickGreedy(moves []string, intn func(n int) int) string {
	captures := make([]string, 0, len(moves))
	for _, m := range moves {
		if strings.Contains(m, captureMarker) {
			captures = append(captures, m)
		}
	}
	if len(captures) > 0 {
		return captures[intn(len(captures))]
	}
	return moves[intn(len(moves))]
}

// lockedRand guards a *rand.Rand, which is not safe for concurrent use.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Seed(seed int64) {
	r.mu.Lock()
	r.rng = rand.New(rand.NewSource(seed))
	r.mu.Unlock()
}
