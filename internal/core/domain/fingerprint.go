package domain

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
)

// PinAlgorithm selects what a fingerprint digests. The exact choice is
// configuration, not a fixed requirement of the evaluation algorithm.
type PinAlgorithm string

const (
	// PinAlgorithmSPKISHA256 digests the certificate's
	// SubjectPublicKeyInfo, so a pin survives certificate renewal as long
	// as the key pair is kept. This is the default.
	PinAlgorithmSPKISHA256 PinAlgorithm = "spki-sha256"

	// PinAlgorithmCertSHA256 digests the whole DER certificate, for
	// operators that pin exact certificates.
	PinAlgorithmCertSHA256 PinAlgorithm = "cert-sha256"
)

// Valid reports whether the algorithm is one this library computes.
func (a PinAlgorithm) Valid() bool {
	return a == PinAlgorithmSPKISHA256 || a == PinAlgorithmCertSHA256
}

// fingerprintPrefix is the textual tag on serialized fingerprints. Both
// algorithms produce SHA-256 digests, so the HPKP-style "sha256/" prefix is
// used for both; the algorithm is carried by the pin set, not the string.
const fingerprintPrefix = "sha256/"

// Fingerprint is a SHA-256 digest of a certificate or its public key,
// serialized as "sha256/<standard base64>" so values printed by the CLI can
// be pasted directly into configuration.
type Fingerprint struct {
	digest [sha256.Size]byte
}

// FingerprintOf computes the fingerprint of a certificate under the given
// algorithm.
func FingerprintOf(cert *x509.Certificate, alg PinAlgorithm) (Fingerprint, error) {
	if cert == nil {
		return Fingerprint{}, fmt.Errorf("certificate cannot be nil")
	}
	switch alg {
	case PinAlgorithmSPKISHA256:
		return Fingerprint{digest: sha256.Sum256(cert.RawSubjectPublicKeyInfo)}, nil
	case PinAlgorithmCertSHA256:
		return Fingerprint{digest: sha256.Sum256(cert.Raw)}, nil
	default:
		return Fingerprint{}, fmt.Errorf("unsupported pin algorithm %q", alg)
	}
}

// ParseFingerprint parses the "sha256/<base64>" serialized form.
func ParseFingerprint(value string) (Fingerprint, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, fingerprintPrefix) {
		return Fingerprint{}, fmt.Errorf("fingerprint %q must start with %q", value, fingerprintPrefix)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(trimmed, fingerprintPrefix))
	if err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint %q is not valid base64: %w", value, err)
	}
	if len(decoded) != sha256.Size {
		return Fingerprint{}, fmt.Errorf("fingerprint %q decodes to %d bytes, want %d", value, len(decoded), sha256.Size)
	}

	var fp Fingerprint
	copy(fp.digest[:], decoded)
	return fp, nil
}

// String returns the serialized "sha256/<base64>" form.
func (f Fingerprint) String() string {
	return fingerprintPrefix + base64.StdEncoding.EncodeToString(f.digest[:])
}

// Equal reports whether two fingerprints carry the same digest.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.digest == other.digest
}
