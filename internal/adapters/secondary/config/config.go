// Package config loads and validates trust-policy configuration.
package config

import (
	"crypto/x509"
	"fmt"
	"os"

	"github.com/sufield/trustgate/internal/core/domain"
	trusterrors "github.com/sufield/trustgate/internal/core/errors"
)

// Policy modes selectable in configuration.
const (
	ModeStrict     = "strict"
	ModePermissive = "permissive"
)

// Config is the complete configuration surface of the library: one policy
// selection plus the optional pinning and root-store settings the strict
// variant consumes. It is loaded once at startup and treated as immutable;
// the only runtime change is whole-snapshot pin replacement via the watcher.
type Config struct {
	Policy  PolicyConfig  `mapstructure:"policy" yaml:"policy"`
	Pinning PinningConfig `mapstructure:"pinning" yaml:"pinning"`
	Roots   RootsConfig   `mapstructure:"roots" yaml:"roots"`
}

// PolicyConfig selects the active trust-policy variant.
type PolicyConfig struct {
	// Mode picks the variant: "strict" for production, "permissive" for
	// test harnesses only.
	Mode string `mapstructure:"mode" yaml:"mode" validate:"required,oneof=strict permissive"`

	// AllowTestMode must be set for permissive mode to load. It exists so
	// a stray permissive selection fails at startup instead of silently
	// disabling validation in production.
	AllowTestMode bool `mapstructure:"allow_test_mode" yaml:"allow_test_mode"`
}

// PinningConfig declares the accepted fingerprints per hostname.
type PinningConfig struct {
	// Algorithm selects what fingerprints digest; defaults to spki-sha256.
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm" validate:"omitempty,pin_algorithm"`

	// Pins maps hostnames (or "*" for global pins) to accepted
	// fingerprints in "sha256/<base64>" form.
	Pins map[string][]string `mapstructure:"pins" yaml:"pins" validate:"omitempty,dive,keys,pin_host,endkeys,required,dive,required,pin"`

	// File optionally names a standalone pin file that the watcher can
	// hot-reload. When set, the file's pins replace the inline ones, the
	// same way every later reload replaces the whole snapshot.
	File string `mapstructure:"file" yaml:"file"`
}

// RootsConfig overrides the trust store for chain validation.
type RootsConfig struct {
	// BundleFile is a PEM bundle of root certificates. Empty means the
	// platform's system root store.
	BundleFile string `mapstructure:"bundle_file" yaml:"bundle_file"`
}

// Validate checks the configuration against its struct tags and enforces the
// permissive-mode gate.
func (c *Config) Validate() error {
	if err := domain.ValidateStruct(c); err != nil {
		issues := domain.ConvertValidationErrors(err)
		if len(issues) > 0 {
			return fmt.Errorf("invalid configuration: %w", issues[0])
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Policy.Mode == ModePermissive && !c.Policy.AllowTestMode && !TestModeFromEnvironment() {
		return trusterrors.ErrPermissiveNotAllowed
	}

	return nil
}

// PinSet builds the inline pinning configuration. The pin file, if any, is
// loaded separately so it can also be reloaded at runtime.
func (c *Config) PinSet() (*domain.PinSet, error) {
	pins, err := domain.NewPinSet(domain.PinAlgorithm(c.Pinning.Algorithm), c.Pinning.Pins)
	if err != nil {
		return nil, trusterrors.NewConfigError(trusterrors.ErrInvalidPinSet, err)
	}
	return pins, nil
}

// RootPool loads the configured root bundle, or returns nil to select the
// system root store.
func (c *Config) RootPool() (*x509.CertPool, error) {
	if c.Roots.BundleFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.Roots.BundleFile)
	if err != nil {
		return nil, trusterrors.NewConfigError(trusterrors.ErrRootBundleUnreadable, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, trusterrors.NewConfigError(trusterrors.ErrRootBundleUnreadable,
			fmt.Errorf("no certificates found in %s", c.Roots.BundleFile))
	}
	return pool, nil
}
