// trustgate-cli is the command-line interface for the trustgate
// trust-policy library.
//
// It provides utilities around TLS trust evaluation:
//   - Computing pin fingerprints from PEM certificates
//   - Validating policy configuration files before rollout
//   - Checking the decision a policy makes for a live endpoint
//
// Usage:
//
//	trustgate pin <certificate.pem>
//	trustgate validate-config <config.yaml>
//	trustgate check <host:port> [flags]
package main

import (
	"fmt"
	"os"

	"github.com/sufield/trustgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
