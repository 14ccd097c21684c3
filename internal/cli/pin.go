package cli

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sufield/trustgate/internal/core/domain"
)

var pinCmd = &cobra.Command{
	Use:   "pin <certificate.pem> [more.pem...]",
	Short: "Compute pin fingerprints for PEM certificates",
	Long: `Compute pin fingerprints for one or more PEM-encoded certificates.

Both supported fingerprints are printed for every certificate found: the
SubjectPublicKeyInfo digest (spki-sha256, survives certificate renewal when
the key is kept) and the whole-certificate digest (cert-sha256). The printed
values can be pasted directly into the pinning section of a configuration or
pin file.

Example:
  trustgate pin server.pem`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPin,
}

func runPin(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		certs, err := readPEMCertificates(path)
		if err != nil {
			return err
		}

		for _, cert := range certs {
			spki, err := domain.FingerprintOf(cert, domain.PinAlgorithmSPKISHA256)
			if err != nil {
				return fmt.Errorf("failed to fingerprint %s: %w", path, err)
			}
			whole, err := domain.FingerprintOf(cert, domain.PinAlgorithmCertSHA256)
			if err != nil {
				return fmt.Errorf("failed to fingerprint %s: %w", path, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subject:     %s\n", cert.Subject)
			fmt.Fprintf(cmd.OutOrStdout(), "Not After:   %s\n", cert.NotAfter.Format("2006-01-02"))
			fmt.Fprintf(cmd.OutOrStdout(), "spki-sha256: %s\n", spki)
			fmt.Fprintf(cmd.OutOrStdout(), "cert-sha256: %s\n\n", whole)
		}
	}
	return nil
}

func readPEMCertificates(path string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate in %s: %w", path, err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return certs, nil
}
