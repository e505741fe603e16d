// Package faker fabricates BPJS and SATUSEHAT responses. Nothing is stored:
// every call synthesizes a fresh answer from its input, a clock and a
// random source.
package faker

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies the randomness and the clock behind generated identifiers.
type Source interface {
	// Float64 returns a number in [0, 1).
	Float64() float64
	// Intn returns a number in [0, n).
	Intn(n int) int
	Now() time.Time
}

type randSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a Source backed by a time-seeded math/rand generator and
// the wall clock. It is safe for concurrent use.
func NewSource() Source {
	return &randSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *randSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

func (s *randSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

func (s *randSource) Now() time.Time {
	return time.Now()
}

// prefix returns at most the first n bytes of s.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// InputError is a rejected request. Its text is returned to the caller.
type InputError string

func (e InputError) Error() string { return string(e) }
