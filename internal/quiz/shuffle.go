package quiz

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffle returns a uniformly random permutation of seq using Fisher-Yates.
// The input is never modified.
func Shuffle[T any](r *rand.Rand, seq []T) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	for i := len(out) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// lockedRand serializes access to a *rand.Rand, which is not safe for concurrent use.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed int64) *lockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) with(fn func(r *rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.r)
}
