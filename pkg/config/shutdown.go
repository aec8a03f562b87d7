package config

import (
	"context"
	"fmt"
	"time"
)

// ShutdownConfig bounds how long servers and telemetry providers get to drain on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Context returns a context for one shutdown step. It is detached from the
// run context, which is already cancelled by the time shutdown starts.
func (c *ShutdownConfig) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Timeout)
}
