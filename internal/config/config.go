// Package config loads the aggregator's runtime configuration from CLI
// flags, ORDERBOOK_-prefixed environment variables, and defaults, in that
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full set of values the aggregator needs to start.
type Config struct {
	// CurrencyPair is the single pair the server streams a merged book
	// for, e.g. "ETHBTC".
	CurrencyPair string
	// Port is the TCP port the gRPC server listens on.
	Port int
	// LogLevel is one of debug/info/warn/error.
	LogLevel string
	// LogFormat is one of json/console.
	LogFormat string
	// HubCapacity is the broadcast hub's ring buffer size.
	HubCapacity int
}

// Options controls how Load builds the underlying viper instance. A nil
// Options is equivalent to DefaultOptions().
type Options struct {
	EnvPrefix string
}

// DefaultOptions returns the aggregator's default viper wiring.
func DefaultOptions() *Options {
	return &Options{EnvPrefix: "ORDERBOOK"}
}

// Load builds a Config from the given flag values, falling back to
// environment variables and then defaults for anything left unset
// (CurrencyPair and Port are always taken from flagPair/flagPort since
// they are positional CLI arguments, not optional flags).
func Load(flagPair string, flagPort int, opts *Options) (Config, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	v := viper.New()
	v.SetEnvPrefix(opts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("hub_capacity", 100)

	cfg := Config{
		CurrencyPair: flagPair,
		Port:         flagPort,
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		HubCapacity:  v.GetInt("hub_capacity"),
	}

	if cfg.Port <= 0 {
		return Config{}, fmt.Errorf("config: port must be positive, got %d", cfg.Port)
	}
	return cfg, nil
}
