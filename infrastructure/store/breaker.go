package store

import (
	"time"

	"github.com/sony/gobreaker"
)

// NewBreaker wraps store round-trips in a circuit breaker so a
// degraded Postgres instance trips open rather than letting the
// persistence adapter pile up slow round-trips onto every analysis
// run.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
