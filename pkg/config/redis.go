package config

import (
	"fmt"
	"strings"
	"time"
)

type RedisConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

const defaultRedisPrefix = "product:"

// String returns a string representation of the Redis configuration.
func (c *RedisConfig) String() string {
	password := "<empty>"
	if c.Password != "" {
		password = "****"
	}
	var b strings.Builder
	b.WriteString("\n--- Redis ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  addr: %s\n", c.Addr))
	b.WriteString(fmt.Sprintf("  password: %s\n", password))
	b.WriteString(fmt.Sprintf("  db: %d\n", c.DB))
	b.WriteString(fmt.Sprintf("  prefix: %s\n", c.Prefix))
	b.WriteString(fmt.Sprintf("  ttl: %s\n", c.TTL))
	return b.String()
}

func (c *RedisConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis is enabled but address is not configured")
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid redis db index: %d", c.DB)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("redis ttl must be greater than 0")
	}
	if c.Prefix == "" {
		c.Prefix = defaultRedisPrefix
	}
	return nil
}
