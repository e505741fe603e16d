package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the function while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures int
	// Timeout is how long the breaker stays open before letting a trial call through.
	Timeout time.Duration
	// IsSuccessful decides whether an error counts as a failure. Nil counts
	// every non-nil error.
	IsSuccessful func(err error) bool
	Now          func() time.Time
}

type CircuitBreaker struct {
	name         string
	maxFailures  int
	timeout      time.Duration
	isSuccessful func(error) bool
	now          func() time.Time

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	state       State
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         settings.Name,
		maxFailures:  settings.MaxFailures,
		timeout:      settings.Timeout,
		isSuccessful: settings.IsSuccessful,
		now:          settings.Now,
		state:        StateClosed,
	}
	if cb.maxFailures <= 0 {
		cb.maxFailures = 5
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}
	if cb.now == nil {
		cb.now = time.Now
	}
	return cb
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState()
}

// currentState moves an expired open breaker to half-open. Callers hold mu.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && cb.now().Sub(cb.lastFailure) > cb.timeout {
		cb.state = StateHalfOpen
	}
	return cb.state
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.currentState() == StateOpen {
		cb.mu.Unlock()
		return ErrOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.isSuccessful(err) {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
			cb.state = StateOpen
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return err
}
