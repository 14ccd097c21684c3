package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/trustgate/internal/certtest"
	"github.com/sufield/trustgate/internal/core/domain"
	trusterrors "github.com/sufield/trustgate/internal/core/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeStrict, cfg.Policy.Mode)
	assert.False(t, cfg.Policy.AllowTestMode)
	assert.Equal(t, "spki-sha256", cfg.Pinning.Algorithm)
	assert.Empty(t, cfg.Pinning.Pins)
}

func TestLoadFromFile(t *testing.T) {
	ca := certtest.NewCA(t, "config-root")
	leaf := ca.IssueLeaf(t, certtest.LeafOptions{DNSNames: []string{"example.com"}})
	fp, err := domain.FingerprintOf(leaf, domain.PinAlgorithmSPKISHA256)
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "trustgate.yaml", `
policy:
  mode: strict
pinning:
  algorithm: spki-sha256
  pins:
    example.com:
      - `+fp.String()+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeStrict, cfg.Policy.Mode)
	require.Contains(t, cfg.Pinning.Pins, "example.com")

	pins, err := cfg.PinSet()
	require.NoError(t, err)
	assert.False(t, pins.IsEmpty())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trustgate.yaml", `
policy:
  mode: strict
`)

	t.Setenv("TRUSTGATE_PINNING_ALGORITHM", "cert-sha256")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cert-sha256", cfg.Pinning.Algorithm)
}

func TestLoadEnvironmentOverrideForUndefaultedKeys(t *testing.T) {
	// These keys have no defaults and no file presence; the explicit env
	// binding must still pick them up.
	t.Setenv("TRUSTGATE_ROOTS_BUNDLE_FILE", "/etc/trustgate/roots.pem")
	t.Setenv("TRUSTGATE_PINNING_FILE", "/etc/trustgate/pins.yaml")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/etc/trustgate/roots.pem", cfg.Roots.BundleFile)
	assert.Equal(t, "/etc/trustgate/pins.yaml", cfg.Pinning.File)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trustgate.yaml", `
policy:
  mode: lenient
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mode")
}

func TestLoadRejectsMalformedPins(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trustgate.yaml", `
policy:
  mode: strict
pinning:
  pins:
    example.com:
      - not-a-fingerprint
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadPermissiveGate(t *testing.T) {
	dir := t.TempDir()

	t.Run("refused without test mode", func(t *testing.T) {
		path := writeFile(t, dir, "bare.yaml", `
policy:
  mode: permissive
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, trusterrors.ErrPermissiveNotAllowed))
	})

	t.Run("allowed with config flag", func(t *testing.T) {
		path := writeFile(t, dir, "flagged.yaml", `
policy:
  mode: permissive
  allow_test_mode: true
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ModePermissive, cfg.Policy.Mode)
	})

	t.Run("allowed with environment flag", func(t *testing.T) {
		path := writeFile(t, dir, "env.yaml", `
policy:
  mode: permissive
`)
		t.Setenv(EnvTestMode, "1")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ModePermissive, cfg.Policy.Mode)
	})
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRootPool(t *testing.T) {
	ca := certtest.NewCA(t, "bundle-root")
	dir := t.TempDir()

	t.Run("empty path selects system roots", func(t *testing.T) {
		cfg := &Config{}
		pool, err := cfg.RootPool()
		require.NoError(t, err)
		assert.Nil(t, pool)
	})

	t.Run("valid bundle", func(t *testing.T) {
		path := writeFile(t, dir, "roots.pem", string(certtest.PEM(t, ca.Cert)))
		cfg := &Config{Roots: RootsConfig{BundleFile: path}}
		pool, err := cfg.RootPool()
		require.NoError(t, err)
		assert.NotNil(t, pool)
	})

	t.Run("bundle without certificates", func(t *testing.T) {
		path := writeFile(t, dir, "empty.pem", "not pem data")
		cfg := &Config{Roots: RootsConfig{BundleFile: path}}
		_, err := cfg.RootPool()
		require.Error(t, err)
		assert.True(t, errors.Is(err, trusterrors.ErrRootBundleUnreadable))
	})

	t.Run("missing bundle file", func(t *testing.T) {
		cfg := &Config{Roots: RootsConfig{BundleFile: filepath.Join(dir, "missing.pem")}}
		_, err := cfg.RootPool()
		require.Error(t, err)
		assert.True(t, errors.Is(err, trusterrors.ErrRootBundleUnreadable))
	})
}

func TestTestModeFromEnvironment(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{value: "", want: false},
		{value: "1", want: true},
		{value: "true", want: true},
		{value: "0", want: false},
		{value: "false", want: false},
		{value: "not-a-bool", want: false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			t.Setenv(EnvTestMode, tt.value)
			assert.Equal(t, tt.want, TestModeFromEnvironment())
		})
	}
}
