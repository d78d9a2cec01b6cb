// Package circuitbreaker builds gobreaker circuit breakers with the defaults
// used across the storefront.
package circuitbreaker

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultMaxRequests = 1
	defaultInterval    = 60 * time.Second
	defaultTimeout     = 10 * time.Second
	defaultFailures    = 5
)

type Option func(*gobreaker.Settings)

// WithTimeout sets how long the breaker stays open before probing again.
func WithTimeout(d time.Duration) Option {
	return func(s *gobreaker.Settings) { s.Timeout = d }
}

// WithConsecutiveFailures trips the breaker after n failures in a row.
func WithConsecutiveFailures(n uint32) Option {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n
		}
	}
}

// WithSuccess decides which errors do not count against the breaker.
func WithSuccess(fn func(err error) bool) Option {
	return func(s *gobreaker.Settings) { s.IsSuccessful = fn }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		}
	}
}

func New[T any](name string, opts ...Option) *gobreaker.CircuitBreaker[T] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: defaultMaxRequests,
		Interval:    defaultInterval,
		Timeout:     defaultTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultFailures
		},
	}
	for _, opt := range opts {
		opt(&st)
	}
	return gobreaker.NewCircuitBreaker[T](st)
}
