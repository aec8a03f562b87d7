package config

import (
	"fmt"
	"strings"
	"time"
)

// ResilienceConfig guards calls to the event broker.
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// CircuitBreakerConfig trips the breaker on ConsecutiveFailures in a row, or once
// more than ConsecutiveFailures calls were made and the failure share exceeds ErrorRatePercent.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
	// HalfOpenRequests is how many trial calls pass while half-open.
	HalfOpenRequests uint32 `koanf:"halfopenrequests"`
}

func (c *ResilienceConfig) String() string {
	cb := c.CircuitBreaker
	var b strings.Builder
	b.WriteString("\n--- Circuit Breaker ---\n")
	b.WriteString(fmt.Sprintf("  trips after: %d consecutive failures or %d%% errors\n", cb.ConsecutiveFailures, cb.ErrorRatePercent))
	b.WriteString(fmt.Sprintf("  open for: %v, then %d trial requests\n", cb.OpenTimeout, cb.HalfOpenRequests))
	return b.String()
}

func (c *ResilienceConfig) Validate() error {
	cb := c.CircuitBreaker
	switch {
	case cb.ConsecutiveFailures == 0:
		return fmt.Errorf("circuit_breaker.consecutive_failures must be greater than 0")
	case cb.ErrorRatePercent < 0 || cb.ErrorRatePercent > 100:
		return fmt.Errorf("circuit_breaker.error_rate_percent must be between 0 and 100")
	case cb.OpenTimeout <= 0:
		return fmt.Errorf("circuit_breaker.open_timeout must be greater than 0")
	case cb.HalfOpenRequests == 0:
		return fmt.Errorf("circuit_breaker.half_open_requests must be greater than 0")
	}
	return nil
}
