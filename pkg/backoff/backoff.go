// Package backoff provides retry delay strategies shared by the API client.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy calculates retry delays. Implementations must be safe for
// concurrent use. Attempt starts at 1 for the first retry.
type Strategy interface {
	NextInterval(attempt int) time.Duration
}

// Linear produces delays that grow linearly with the attempt number.
// This matches the API client's default retry behavior.
type Linear struct {
	Interval    time.Duration
	MaxInterval time.Duration
}

// NextInterval returns min(Interval * attempt, MaxInterval).
func (l Linear) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := l.Interval
	if interval == 0 {
		interval = time.Second
	}

	max := l.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	delay := interval * time.Duration(attempt)
	if delay > max {
		delay = max
	}

	return delay
}

// Fixed produces a constant delay between retries.
type Fixed struct {
	Interval time.Duration
}

func (f Fixed) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// Exponential produces exponentially growing delays with optional jitter.
// Jitter spreads retry times so clients recovering from the same outage do
// not hammer the server in lockstep.
type Exponential struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

// NextInterval returns min(InitialInterval * Multiplier^(attempt-1) * (1 ± JitterFactor), MaxInterval).
func (e Exponential) NextInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}

	max := e.MaxInterval
	if max == 0 {
		max = 30 * time.Second
	}

	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	if e.JitterFactor > 0 {
		randomJitter := (rand.Float64()*2 - 1) * e.JitterFactor
		interval = interval * (1 + randomJitter)
	}

	if interval > float64(max) {
		interval = float64(max)
	}

	return time.Duration(interval)
}

// Default returns the linear strategy used by the API client: one second
// multiplied by the attempt number, capped at 30 seconds.
func Default() Strategy {
	return Linear{Interval: time.Second, MaxInterval: 30 * time.Second}
}
