package trustgate

import (
	"crypto/tls"

	"google.golang.org/grpc/credentials"

	"github.com/sufield/trustgate/internal/adapters/secondary/transport"
)

// RejectionError is the handshake-aborting error produced when the policy
// rejects a peer. Transports can errors.As for it to log the specific reason
// while reporting a generic failure upward.
type RejectionError = transport.RejectionError

// ClientTLSConfig builds a tls.Config that delegates server verification to
// the policy. The serverName is both the SNI value and the identity the
// policy evaluates.
func ClientTLSConfig(policy TrustPolicy, serverName string) (*tls.Config, error) {
	return transport.ClientTLSConfig(policy, serverName)
}

// GRPCTransportCredentials wraps the policy-backed TLS configuration as gRPC
// transport credentials.
func GRPCTransportCredentials(policy TrustPolicy, serverName string) (credentials.TransportCredentials, error) {
	return transport.GRPCTransportCredentials(policy, serverName)
}
