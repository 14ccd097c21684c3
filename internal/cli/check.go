package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/sufield/trustgate/internal/adapters/secondary/transport"
	"github.com/sufield/trustgate/internal/core/ports"
	"github.com/sufield/trustgate/internal/core/services"
	"github.com/sufield/trustgate/pkg/trustgate"
)

var checkCmd = &cobra.Command{
	Use:   "check <host:port>",
	Short: "Check what decision the policy makes for a live endpoint",
	Long: `Connect to an endpoint over TLS and report the trust decision the
configured policy makes for its certificate chain.

Without --config the endpoint is checked against a strict policy using the
system root store and no pins. The command exits non-zero when the policy
rejects the endpoint.

Example:
  trustgate check api.example.com:443
  trustgate check --config trustgate.yaml --server-name api.example.com 10.0.0.5:443`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("config", "", "Policy configuration file")
	checkCmd.Flags().String("server-name", "", "Hostname to validate against (default: the host part of the address)")
	checkCmd.Flags().Duration("timeout", 10*time.Second, "Connection timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	address := args[0]

	policy, err := policyFromFlags(cmd)
	if err != nil {
		return err
	}

	serverName, _ := cmd.Flags().GetString("server-name")
	if serverName == "" {
		host, _, err := net.SplitHostPort(address)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", address, err)
		}
		serverName = host
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	tlsConfig, err := transport.ClientTLSConfig(policy, serverName)
	if err != nil {
		return err
	}

	dialer := &tls.Dialer{Config: tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		var rejection *transport.RejectionError
		if errors.As(err, &rejection) {
			fmt.Fprintf(cmd.OutOrStdout(), "REJECTED %s\n", address)
			fmt.Fprintf(cmd.OutOrStdout(), "Reason: %s\n", rejection.Decision.Reason())
			if detail := rejection.Decision.Detail(); detail != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Detail: %s\n", detail)
			}
			return fmt.Errorf("policy rejected %s", address)
		}
		return fmt.Errorf("connection to %s failed: %w", address, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	fmt.Fprintf(cmd.OutOrStdout(), "TRUSTED %s\n", address)
	if len(state.PeerCertificates) > 0 {
		leaf := state.PeerCertificates[0]
		fmt.Fprintf(cmd.OutOrStdout(), "Leaf: %s (expires %s)\n",
			leaf.Subject, leaf.NotAfter.Format("2006-01-02"))
	}
	return nil
}

func policyFromFlags(cmd *cobra.Command) (ports.TrustPolicy, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		return services.NewStrictPolicy(), nil
	}
	return trustgate.LoadPolicy(configPath)
}
