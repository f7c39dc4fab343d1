package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

type Config struct {
	RecordLength     int           `envconfig:"CB_RECORD_LENGTH" default:"10"`
	Timeout          time.Duration `envconfig:"CB_TIMEOUT" default:"30s"`
	Percentile       float64       `envconfig:"CB_PERCENTILE" default:"0.5"`
	RecoveryRequests int           `envconfig:"CB_RECOVERY_REQUESTS" default:"3"`
}

type circuitBreaker struct {
	mu    sync.Mutex
	state Status
	// size of the tracked tail of calls
	recordLength int
	// how long Open lasts before a probe is let through
	timeout time.Duration

	lastAttemptedAt time.Time
	// failure ratio that opens the breaker
	percentile float64
	// true marks a failed call
	buffer []bool
	pos    int
	// consecutive successes in HalfOpen needed to close
	recoveryRequests int
	successCount     int

	now func() time.Time
}

type CircuitBreaker interface {
	Call(service func() error) error
	State() Status
	Reset()
}

func New(recordLength int, timeout time.Duration, percentile float64, recoveryRequests int) CircuitBreaker {
	if recordLength <= 0 {
		recordLength = 1
	}
	return &circuitBreaker{
		state:            Closed,
		recordLength:     recordLength,
		timeout:          timeout,
		percentile:       percentile,
		buffer:           make([]bool, recordLength),
		recoveryRequests: recoveryRequests,
		now:              time.Now,
	}
}

func NewFromConfig(cfg Config) CircuitBreaker {
	return New(cfg.RecordLength, cfg.Timeout, cfg.Percentile, cfg.RecoveryRequests)
}

var (
	ErrOpenCB = errors.New("CB IS OPEN")
)

func (cb *circuitBreaker) Call(service func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if elapsed := cb.now().Sub(cb.lastAttemptedAt); elapsed > cb.timeout {
			cb.state = HalfOpen
			cb.successCount = 0
		} else {
			cb.mu.Unlock()
			return ErrOpenCB
		}
	}
	cb.mu.Unlock()

	err := service()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.buffer[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % cb.recordLength

	if cb.state == HalfOpen {
		if err != nil {
			cb.successCount = 0
			cb.state = Open
			cb.lastAttemptedAt = cb.now()
		} else {
			cb.successCount++
			if cb.successCount >= cb.recoveryRequests {
				cb.reset()
			}
		}
		return err
	}

	// only CLOSED
	fails := 0
	for _, failed := range cb.buffer {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(cb.recordLength) >= cb.percentile {
		cb.state = Open
		cb.successCount = 0
		cb.lastAttemptedAt = cb.now()
	}

	return err
}

func (cb *circuitBreaker) State() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.reset()
}

func (cb *circuitBreaker) reset() {
	for i := range cb.buffer {
		cb.buffer[i] = false
	}
	cb.successCount = 0
	cb.pos = 0
	cb.state = Closed
}
