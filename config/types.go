package config

import (
	"time"

	"github.com/gaborage/go-requeue/transport"
)

// Config is the top-level configuration for the retry transport
type Config struct {
	Log   LogConfig   `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
	Retry RetryConfig `koanf:"retry" json:"retry" yaml:"retry" mapstructure:"retry"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

// RetryConfig contains the retry-queuing configuration
type RetryConfig struct {
	// Timeout is the delay before a batch of queued calls is resent.
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// Methods maps HTTP verb names to their retry policies.
	Methods map[string]MethodConfig `koanf:"methods" json:"methods" yaml:"methods" mapstructure:"methods" validate:"dive,keys,http_verb,endkeys"`
}

// MethodConfig configures retry behavior for one HTTP verb
type MethodConfig struct {
	// Limit is the maximum number of retries; zero disables interception.
	Limit int `koanf:"limit" json:"limit" yaml:"limit" mapstructure:"limit" validate:"gte=0"`
}

// TransportConfig converts the loaded retry settings into the transport
// package's configuration type.
func (c *Config) TransportConfig() *transport.Config {
	methods := make(map[string]transport.MethodPolicy, len(c.Retry.Methods))
	for method, mc := range c.Retry.Methods {
		methods[method] = transport.MethodPolicy{RetryLimit: mc.Limit}
	}
	return &transport.Config{
		RetryTimeout: c.Retry.Timeout,
		Methods:      methods,
	}
}
