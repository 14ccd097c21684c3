// Package cli implements the trustgate command-line interface for inspecting
// certificates, validating configuration, and probing live endpoints against
// a configured trust policy.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trustgate",
	Short: "TLS trust-policy tooling",
	Long: `TLS trust-policy tooling.

Trustgate evaluates server certificate chains against a configurable trust
policy: standard chain and hostname validation plus optional certificate or
public-key pinning. Use this CLI to compute pin fingerprints, validate a
policy configuration, and check what decision a policy would make for a live
endpoint.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateConfigCmd)
}
