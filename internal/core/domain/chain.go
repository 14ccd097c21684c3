package domain

import (
	"crypto/x509"
	"fmt"
)

// ServerTrustChain is the ordered sequence of certificates presented by the
// remote peer during a handshake, leaf first. It is immutable once built and
// lives only for the duration of one evaluation; policies only read it.
type ServerTrustChain struct {
	certs []*x509.Certificate
}

// NewServerTrustChain wraps already-parsed certificates. The slice is copied
// so later mutation by the caller cannot be observed by concurrent
// evaluations. Nil entries are a caller bug and reported as an error.
func NewServerTrustChain(certs []*x509.Certificate) (ServerTrustChain, error) {
	copied := make([]*x509.Certificate, len(certs))
	for i, cert := range certs {
		if cert == nil {
			return ServerTrustChain{}, fmt.Errorf("certificate at chain position %d is nil", i)
		}
		copied[i] = cert
	}
	return ServerTrustChain{certs: copied}, nil
}

// ParseServerTrustChain parses the raw DER certificates handed over by the
// TLS stack. A parse failure is a genuine fault (the underlying library could
// not process the handshake data) and propagates as an error, distinct from
// any trust Decision.
func ParseServerTrustChain(rawCerts [][]byte) (ServerTrustChain, error) {
	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for i, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return ServerTrustChain{}, fmt.Errorf("failed to parse certificate at chain position %d: %w", i, err)
		}
		certs = append(certs, cert)
	}
	return ServerTrustChain{certs: certs}, nil
}

// IsEmpty reports whether the peer presented no certificates.
func (c ServerTrustChain) IsEmpty() bool {
	return len(c.certs) == 0
}

// Count returns the number of certificates in the chain.
func (c ServerTrustChain) Count() int {
	return len(c.certs)
}

// Leaf returns the peer's end-entity certificate, or nil for an empty chain.
func (c ServerTrustChain) Leaf() *x509.Certificate {
	if len(c.certs) == 0 {
		return nil
	}
	return c.certs[0]
}

// Intermediates returns the certificates following the leaf.
func (c ServerTrustChain) Intermediates() []*x509.Certificate {
	if len(c.certs) <= 1 {
		return nil
	}
	return c.certs[1:]
}

// Certificates returns the full chain, leaf first. Callers must not modify
// the returned certificates.
func (c ServerTrustChain) Certificates() []*x509.Certificate {
	return c.certs
}

// RawCertificates returns the DER encoding of each certificate, leaf first,
// for adapters that interface with libraries speaking raw bytes.
func (c ServerTrustChain) RawCertificates() [][]byte {
	raw := make([][]byte, len(c.certs))
	for i, cert := range c.certs {
		raw[i] = cert.Raw
	}
	return raw
}
