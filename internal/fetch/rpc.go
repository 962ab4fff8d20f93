package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/airdrop-checker/internal/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RPCClient reads account state from an Ethereum JSON-RPC node.
type RPCClient struct {
	client *rpc.Client
}

// NewRPCClient creates a client for endpoint. For HTTP endpoints no
// connection is made until the first call.
func NewRPCClient(ctx context.Context, endpoint string, httpClient *http.Client) (*RPCClient, error) {
	c, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: dial rpc endpoint: %w", ErrNetwork, err)
	}
	return &RPCClient{client: c}, nil
}

// Close releases the underlying connection.
func (c *RPCClient) Close() {
	c.client.Close()
}

// FetchCount returns the number of transactions sent from address as of the
// latest block. The address is forwarded verbatim so the node is the one to
// reject malformed input.
func (c *RPCClient) FetchCount(ctx context.Context, address string) (uint64, error) {
	ctx, span := otel.Tracer().Start(ctx, "rpc.getTransactionCount",
		trace.WithAttributes(attribute.String("wallet.address", address)))
	defer span.End()

	logrus.WithField("address", address).Debug("Fetching transaction count from node")

	var count hexutil.Uint64
	if err := c.client.CallContext(ctx, &count, "eth_getTransactionCount", address, "latest"); err != nil {
		err = fmt.Errorf("%w: eth_getTransactionCount: %w", ErrNetwork, err)
		otel.RecordError(ctx, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("tx.count", int64(count)))
	return uint64(count), nil
}
