package collagelib

import (
	"math/rand"
	"sync"
)

// Rand is a single seeded generator shared by every monitor. Shuffles hold
// the lock for their whole duration, so each one sees a consistent stream.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRand(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// ShuffleStrings permutes s in place.
func (r *Rand) ShuffleStrings(s []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
