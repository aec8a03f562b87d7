package config

import (
	"fmt"
	"net"
	"strings"
)

// PProfConfig controls the debug listener serving net/http/pprof.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func (c *PProfConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- PProf ---\n")
	if !c.Enabled {
		b.WriteString("  disabled\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("  address: %s\n", c.Addr))
	return b.String()
}

// Validate checks the listen address only when pprof is enabled.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid pprof address %q: %w", c.Addr, err)
	}
	return nil
}
