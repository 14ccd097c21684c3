package trustgate

import (
	"fmt"
	"log/slog"

	"github.com/sufield/trustgate/internal/adapters/secondary/config"
	"github.com/sufield/trustgate/internal/core/errors"
	"github.com/sufield/trustgate/internal/core/ports"
	"github.com/sufield/trustgate/internal/core/services"
)

// Config is the library's configuration surface.
type Config = config.Config

// LoadConfig reads configuration from an optional YAML file with TRUSTGATE_*
// environment overrides and validates it, including the permissive-mode gate.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewPolicyFromConfig builds the selected policy variant from validated
// configuration. For the strict variant it loads the root bundle and pin
// material; pin files take effect immediately and can later be hot-reloaded
// with WatchPins.
func NewPolicyFromConfig(cfg *Config) (TrustPolicy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Policy.Mode {
	case config.ModePermissive:
		return services.NewPermissivePolicy(), nil

	case config.ModeStrict:
		roots, err := cfg.RootPool()
		if err != nil {
			return nil, err
		}

		pins, err := cfg.PinSet()
		if err != nil {
			return nil, err
		}
		if cfg.Pinning.File != "" {
			pins, err = config.LoadPinFile(cfg.Pinning.File)
			if err != nil {
				return nil, err
			}
		}

		return services.NewStrictPolicy(
			services.WithRoots(roots),
			services.WithPins(pins),
		), nil

	default:
		return nil, errors.NewConfigError(errors.ErrUnknownPolicyMode,
			fmt.Errorf("mode %q", cfg.Policy.Mode))
	}
}

// LoadPolicy is the one-call path from a configuration file to a ready
// policy.
func LoadPolicy(path string) (TrustPolicy, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewPolicyFromConfig(cfg)
}

// Instrument decorates a policy with structured logging and metrics. The
// name labels log entries and metric series, typically "strict" or
// "permissive".
func Instrument(policy TrustPolicy, name string, logger *slog.Logger, metrics services.MetricsReporter) TrustPolicy {
	return services.NewInstrumentedPolicy(policy, name, logger, metrics)
}

// PrometheusMetrics returns the Prometheus-backed reporter for Instrument.
func PrometheusMetrics() services.MetricsReporter {
	return services.NewPrometheusMetrics()
}

// WatchPins starts hot-reloading of a pin file into a policy that supports
// pin replacement (the strict variant, possibly instrumented). The returned
// watcher must be closed on shutdown.
func WatchPins(path string, policy TrustPolicy, logger *slog.Logger, metrics services.MetricsReporter) (*config.PinWatcher, error) {
	replacer, ok := policy.(ports.PinReplacer)
	if !ok {
		return nil, fmt.Errorf("policy does not support pin replacement")
	}

	watcher, err := config.NewPinWatcher(path, replacer, logger, metrics)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
