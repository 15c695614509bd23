package httpclient

import (
	"errors"
	"sync"
	"time"

	"github.com/IgorGrieder/linkhub/internal/infrastructure/logger"
	"github.com/IgorGrieder/linkhub/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota + 1
	StateOpen
	StateHalfOpen
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	maxFailures int
	openSince   time.Time
	openTimeout time.Duration
	now         func() time.Time
}

func NewCircuitBreaker(maxFailures int, openTimeout time.Duration) *CircuitBreaker {
	metrics.CircuitBreakerState.Set(float64(StateClosed))
	return &CircuitBreaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		openTimeout: openTimeout,
		now:         time.Now,
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) CheckBeforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return nil

	case StateOpen:
		if cb.now().Sub(cb.openSince) > cb.openTimeout {
			logger.Warn("Circuit Breaker: Open -> Half-Open")
			cb.setState(StateHalfOpen)
			return nil
		}
		return ErrCircuitOpen

	case StateHalfOpen:
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) OnSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Info("Circuit Breaker: Half-Open -> Closed")
		cb.setState(StateClosed)
		cb.failures = 0

	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) OnFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		logger.Error("Circuit Breaker: Half-Open -> Open (test failed)")
		cb.setState(StateOpen)
		cb.openSince = cb.now()

	case StateClosed:
		cb.failures++
		logger.Warn("Circuit Breaker: Failure recorded", zap.Int("count", cb.failures))

		if cb.failures >= cb.maxFailures {
			logger.Error("Circuit Breaker: Closed -> Open (threshold reached)")
			cb.setState(StateOpen)
			cb.openSince = cb.now()
		}
	}
}

func (cb *CircuitBreaker) setState(s State) {
	cb.state = s
	metrics.CircuitBreakerState.Set(float64(s))
}
