package core

import (
	"fmt"
	"strings"
	"time"
)

// CarrierConfig holds the remote policy-administration API settings.
type CarrierConfig struct {
	BaseURL           string        `koanf:"base_url" mapstructure:"base_url"`
	CompositeEndpoint string        `koanf:"composite_endpoint" mapstructure:"composite_endpoint"`
	Username          string        `koanf:"username" mapstructure:"username"`
	Password          string        `koanf:"password" mapstructure:"password"`
	Timeout           time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxRetries        int           `koanf:"max_retries" mapstructure:"max_retries"`
}

// SyncConfig tunes the sequencer and the background resync planner.
type SyncConfig struct {
	LockTTL        time.Duration `koanf:"lock_ttl" mapstructure:"lock_ttl"`
	MaxAutoRetries int           `koanf:"max_auto_retries" mapstructure:"max_auto_retries"`
	StuckAfter     time.Duration `koanf:"stuck_after" mapstructure:"stuck_after"`
}

type Config struct {
	ServiceName string        `koanf:"service_name" mapstructure:"service_name"`
	Carrier     CarrierConfig `koanf:"carrier" mapstructure:"carrier"`
	Sync        SyncConfig    `koanf:"sync" mapstructure:"sync"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "carrier-sync",
		Carrier: CarrierConfig{
			CompositeEndpoint: "/composite/v1/composite",
			Timeout:           30 * time.Second,
			MaxRetries:        2,
		},
		Sync: SyncConfig{
			LockTTL:        5 * time.Minute,
			MaxAutoRetries: 3,
			StuckAfter:     30 * time.Minute,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Carrier.BaseURL) == "" {
		return fmt.Errorf("core: carrier.base_url is required")
	}
	if strings.TrimSpace(c.Carrier.CompositeEndpoint) == "" {
		return fmt.Errorf("core: carrier.composite_endpoint is required")
	}
	if c.Carrier.Timeout <= 0 {
		return fmt.Errorf("core: carrier.timeout must be positive")
	}
	if c.Carrier.MaxRetries < 0 {
		return fmt.Errorf("core: carrier.max_retries must not be negative")
	}
	if c.Sync.LockTTL <= 0 {
		return fmt.Errorf("core: sync.lock_ttl must be positive")
	}
	if c.Sync.MaxAutoRetries < 0 {
		return fmt.Errorf("core: sync.max_auto_retries must not be negative")
	}
	return nil
}
