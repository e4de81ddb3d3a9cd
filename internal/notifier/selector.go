package notifier

import (
	"math/rand"
	"sync"
	"time"
)

// Selector picks message content uniformly at random, avoiding back-to-back
// repeats per user when the pool allows it.
type Selector struct {
	mu   sync.Mutex
	last map[int64]string
	rand *rand.Rand
}

func NewSelector() *Selector {
	return &Selector{
		last: make(map[int64]string),
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Pick returns a message for the user, or false when the pool is empty. The
// previously shown message is excluded whenever the pool holds more than one
// entry.
func (s *Selector) Pick(userID int64, pool []string) (string, bool) {
	if len(pool) == 0 {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := pool
	if len(pool) > 1 {
		last := s.last[userID]
		filtered := make([]string, 0, len(pool))
		for _, msg := range pool {
			if msg != last {
				filtered = append(filtered, msg)
			}
		}
		// A pool of identical entries filters to nothing; repeats are
		// unavoidable then.
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	choice := candidates[s.rand.Intn(len(candidates))]
	s.last[userID] = choice
	return choice, true
}
