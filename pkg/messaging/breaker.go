package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// ErrPublisherUnavailable is returned while the circuit is open.
var ErrPublisherUnavailable = errors.New("event publisher unavailable")

// BreakerPublisher guards a Publisher with a circuit breaker.
type BreakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher wraps next with a circuit breaker configured from cfg.
func NewBreakerPublisher(next Publisher, cfg config.CircuitBreakerConfig) *BreakerPublisher {
	st := gobreaker.Settings{
		Name:        "event-publisher-cb",
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			// a cancelled caller says nothing about broker health
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &BreakerPublisher{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

// Publish forwards the event unless the breaker is open.
func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	_, err := p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrPublisherUnavailable, event.Subject())
	}
	return err
}

// State reports the breaker state, e.g. "closed" or "open".
func (p *BreakerPublisher) State() string {
	return p.cb.State().String()
}
