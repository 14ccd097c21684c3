package trustgate_test

import (
	"crypto/x509"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/trustgate/internal/certtest"
	trusterrors "github.com/sufield/trustgate/internal/core/errors"
	"github.com/sufield/trustgate/pkg/trustgate"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func evaluate(t *testing.T, policy trustgate.TrustPolicy, ca *certtest.CA, dnsName string) trustgate.Decision {
	t.Helper()
	leaf := ca.IssueLeaf(t, certtest.LeafOptions{DNSNames: []string{dnsName}})
	chain, err := trustgate.NewServerTrustChain([]*x509.Certificate{leaf})
	require.NoError(t, err)
	host, err := trustgate.NewHostname(dnsName)
	require.NoError(t, err)
	return policy.Evaluate(chain, host)
}

func TestLoadPolicyStrict(t *testing.T) {
	dir := t.TempDir()
	ca := certtest.NewCA(t, "factory-root")
	bundle := writeFile(t, dir, "roots.pem", string(certtest.PEM(t, ca.Cert)))

	path := writeFile(t, dir, "config.yaml", `
policy:
  mode: strict
roots:
  bundle_file: `+bundle+`
`)

	policy, err := trustgate.LoadPolicy(path)
	require.NoError(t, err)

	decision := evaluate(t, policy, ca, "api.example.com")
	assert.True(t, decision.IsTrusted(), "chain from configured root must be trusted: %s", decision)
}

func TestLoadPolicyPermissiveGate(t *testing.T) {
	dir := t.TempDir()

	t.Run("refused without test mode", func(t *testing.T) {
		path := writeFile(t, dir, "refused.yaml", `
policy:
  mode: permissive
`)
		_, err := trustgate.LoadPolicy(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, trusterrors.ErrPermissiveNotAllowed))
	})

	t.Run("allowed when opted in", func(t *testing.T) {
		path := writeFile(t, dir, "allowed.yaml", `
policy:
  mode: permissive
  allow_test_mode: true
`)
		policy, err := trustgate.LoadPolicy(path)
		require.NoError(t, err)

		selfSigned := certtest.NewCA(t, "fixture")
		decision := evaluate(t, policy, selfSigned, "localhost")
		assert.True(t, decision.IsTrusted())
	})
}

func TestNewPolicyFromConfigValidation(t *testing.T) {
	_, err := trustgate.NewPolicyFromConfig(nil)
	require.Error(t, err)

	cfg := &trustgate.Config{}
	cfg.Policy.Mode = "lenient"
	_, err = trustgate.NewPolicyFromConfig(cfg)
	require.Error(t, err)
}

func TestLoadPolicyPinFileReplacesInlinePins(t *testing.T) {
	dir := t.TempDir()
	ca := certtest.NewCA(t, "factory-root")
	bundle := writeFile(t, dir, "roots.pem", string(certtest.PEM(t, ca.Cert)))

	leaf := ca.IssueLeaf(t, certtest.LeafOptions{DNSNames: []string{"api.example.com"}})
	fp, err := trustgate.FingerprintOf(leaf, trustgate.PinAlgorithmSPKISHA256)
	require.NoError(t, err)

	pinFile := writeFile(t, dir, "pins.yaml", `
algorithm: spki-sha256
pins:
  api.example.com:
    - `+fp.String()+`
`)

	// The inline pin is bogus; the pin file must win.
	path := writeFile(t, dir, "config.yaml", `
policy:
  mode: strict
roots:
  bundle_file: `+bundle+`
pinning:
  pins:
    api.example.com:
      - sha256/AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=
  file: `+pinFile+`
`)

	policy, err := trustgate.LoadPolicy(path)
	require.NoError(t, err)

	chain, err := trustgate.NewServerTrustChain([]*x509.Certificate{leaf})
	require.NoError(t, err)
	host, err := trustgate.NewHostname("api.example.com")
	require.NoError(t, err)

	decision := policy.Evaluate(chain, host)
	assert.True(t, decision.IsTrusted(), "pin file fingerprint must apply: %s", decision)
}

func TestWatchPinsRequiresReplaceablePolicy(t *testing.T) {
	_, err := trustgate.WatchPins("pins.yaml", trustgate.NewPermissivePolicy(), nil, nil)
	require.Error(t, err)
}

func TestWatchPinsReplacesStrictPolicyPins(t *testing.T) {
	dir := t.TempDir()
	ca := certtest.NewCA(t, "factory-root")

	leaf := ca.IssueLeaf(t, certtest.LeafOptions{DNSNames: []string{"api.example.com"}})
	fp, err := trustgate.FingerprintOf(leaf, trustgate.PinAlgorithmSPKISHA256)
	require.NoError(t, err)

	path := writeFile(t, dir, "pins.yaml", `
algorithm: spki-sha256
pins:
  api.example.com:
    - `+fp.String()+`
`)

	policy := trustgate.NewStrictPolicy(trustgate.WithRoots(ca.Pool()))
	require.True(t, policy.Pins().IsEmpty())

	watcher, err := trustgate.WatchPins(path, policy, nil, nil)
	require.NoError(t, err)
	defer watcher.Close()

	require.False(t, policy.Pins().IsEmpty(), "initial load must install the file's pins")

	chain, err := trustgate.NewServerTrustChain([]*x509.Certificate{leaf})
	require.NoError(t, err)
	host, err := trustgate.NewHostname("api.example.com")
	require.NoError(t, err)
	assert.True(t, policy.Evaluate(chain, host).IsTrusted())
}
