// Package config defines the configuration of the product service.
package config

import (
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Redis      config.RedisConfig      `koanf:"redis"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())

	b.WriteString("\n--- Database ---\n")
	b.WriteString("  driver: " + c.Database.Driver + "\n")
	b.WriteString("  url: " + config.MaskURL(c.Database.URL) + "\n")
	b.WriteString("  timeout: " + c.Database.Timeout.String() + "\n")
	if c.Database.Migrate {
		b.WriteString("  migrate: true\n")
	} else {
		b.WriteString("  migrate: false\n")
	}

	b.WriteString(c.Redis.String())
	b.WriteString(c.NATS.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	// the circuit breaker only guards the event publisher
	if c.NATS.Enabled {
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
