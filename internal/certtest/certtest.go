// Package certtest builds throwaway certificate authorities and leaf chains
// in memory for trust-evaluation tests. Nothing here touches the filesystem
// or network, and nothing here is safe for production use.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/url"
	"testing"
	"time"
)

// CA is an in-memory certificate authority.
type CA struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// LeafOptions shape an issued end-entity certificate.
type LeafOptions struct {
	// CommonName overrides the subject CN. Leave DNSNames empty together
	// with this to issue a legacy SAN-less certificate.
	CommonName string
	DNSNames   []string
	URIs       []*url.URL
	NotBefore  time.Time
	NotAfter   time.Time
	// SelfSigned issues the leaf signed by its own key instead of the CA.
	SelfSigned bool
}

// NewCA creates a root CA valid for one hour around now.
func NewCA(t *testing.T, commonName string) *CA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate CA key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          nextSerial(t),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-30 * time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to self-sign CA certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse CA certificate: %v", err)
	}

	return &CA{Cert: cert, Key: key}
}

// NewIntermediate issues a subordinate CA signed by this one.
func (ca *CA) NewIntermediate(t *testing.T, commonName string) *CA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate intermediate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          nextSerial(t),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-30 * time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, ca.Cert, &key.PublicKey, ca.Key)
	if err != nil {
		t.Fatalf("failed to sign intermediate certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse intermediate certificate: %v", err)
	}

	return &CA{Cert: cert, Key: key}
}

// IssueLeaf issues an end-entity certificate for the given options.
func (ca *CA) IssueLeaf(t *testing.T, opts LeafOptions) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate leaf key: %v", err)
	}

	notBefore := opts.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-10 * time.Minute)
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(30 * time.Minute)
	}

	template := &x509.Certificate{
		SerialNumber: nextSerial(t),
		Subject:      pkix.Name{CommonName: leafCommonName(opts)},
		DNSNames:     opts.DNSNames,
		URIs:         opts.URIs,
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}

	parent := ca.Cert
	signer := ca.Key
	if opts.SelfSigned {
		parent = template
		signer = key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("failed to sign leaf certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse leaf certificate: %v", err)
	}

	return cert
}

// IssueServerCert issues a leaf and returns it as a tls.Certificate ready to
// serve, for handshake tests that need the private key.
func (ca *CA) IssueServerCert(t *testing.T, opts LeafOptions) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate server key: %v", err)
	}

	notBefore := opts.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-10 * time.Minute)
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(30 * time.Minute)
	}

	template := &x509.Certificate{
		SerialNumber: nextSerial(t),
		Subject:      pkix.Name{CommonName: leafCommonName(opts)},
		DNSNames:     opts.DNSNames,
		URIs:         opts.URIs,
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
	}

	parent := ca.Cert
	signer := ca.Key
	if opts.SelfSigned {
		parent = template
		signer = key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		t.Fatalf("failed to sign server certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse server certificate: %v", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}
}

// Pool returns a cert pool containing only this CA.
func (ca *CA) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	return pool
}

// PEM returns the PEM encoding of a certificate.
func PEM(t *testing.T, cert *x509.Certificate) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
}

func leafCommonName(opts LeafOptions) string {
	if opts.CommonName != "" {
		return opts.CommonName
	}
	if len(opts.DNSNames) > 0 {
		return opts.DNSNames[0]
	}
	return "leaf"
}

func nextSerial(t *testing.T) *big.Int {
	t.Helper()
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("failed to generate serial number: %v", err)
	}
	return serial
}
