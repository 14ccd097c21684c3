package transport

import (
	"google.golang.org/grpc/credentials"

	"github.com/sufield/trustgate/internal/core/ports"
)

// GRPCTransportCredentials wraps the policy-backed TLS configuration as gRPC
// transport credentials, for clients dialing with grpc.WithTransportCredentials.
func GRPCTransportCredentials(policy ports.TrustPolicy, serverName string) (credentials.TransportCredentials, error) {
	cfg, err := ClientTLSConfig(policy, serverName)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}
