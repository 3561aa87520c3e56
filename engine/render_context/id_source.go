package render_context

import (
	"math/rand/v2"
	"sync"
	"time"
)

// IDSource issues random non-zero RenderIDs from a seeded generator. It is safe for
// concurrent use.
type IDSource struct {
	mu  *sync.Mutex
	rng *rand.Rand
}

// NewIDSource creates a source whose sequence is fully determined by seed.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - *IDSource: the source
func NewIDSource(seed uint64) *IDSource {
	return &IDSource{
		mu:  &sync.Mutex{},
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns the next non-zero id.
func (s *IDSource) Next() RenderID {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if v := s.rng.Uint64(); v != 0 {
			return RenderID(v)
		}
	}
}

var defaultIDSource = sync.OnceValue(func() *IDSource {
	return NewIDSource(uint64(time.Now().UnixNano()))
})

// DefaultIDSource returns the process-wide source, seeded from the clock on first use.
func DefaultIDSource() *IDSource {
	return defaultIDSource()
}
