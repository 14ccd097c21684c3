package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Environment variable names for configuration.
const (
	EnvPrefix   = "TRUSTGATE"
	EnvTestMode = "TRUSTGATE_TEST_MODE"
)

// TestModeFromEnvironment reports whether the process-wide test-environment
// flag is set. It is the out-of-band counterpart to allow_test_mode, for test
// runners that cannot edit configuration files.
func TestModeFromEnvironment() bool {
	if value := os.Getenv(EnvTestMode); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return false
}

// Load reads configuration from an optional YAML file with TRUSTGATE_*
// environment overrides, applies defaults, and validates the result. An
// empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("policy.mode", ModeStrict)
	v.SetDefault("policy.allow_test_mode", false)
	v.SetDefault("pinning.algorithm", "spki-sha256")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only reflects env values for keys viper already knows
	// about; keys without defaults need an explicit binding to be
	// overridable.
	for _, key := range []string{"roots.bundle_file", "pinning.file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	// The comma hook lets environment overrides supply pin lists as a
	// single comma-separated value.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
