//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/particle-injector/internal/api/grpc/supervisor"
	"github.com/oshokin/particle-injector/internal/config"
	"github.com/oshokin/particle-injector/internal/domain/pulse"
)

// Client wraps the gRPC supervisor client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the injector.
	conn *grpc.ClientConn
	// api is the supervisor client interface.
	api supervisor.SupervisorClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a gRPC connection to the injector supervisor.
// Note: this uses insecure transport credentials; keep the supervisor on a
// trusted bench network.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial injector supervisor: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         supervisor.NewSupervisorClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetStatus retrieves the current progress of the run.
func (c *Client) GetStatus(ctx context.Context) (*pulse.Progress, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return decode(resp)
}

// Stop asks the injector to end the run at the next phase boundary.
func (c *Client) Stop(ctx context.Context) (*pulse.Progress, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Stop(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("stop: %w", err)
	}

	return decode(resp)
}

func decode(resp *structpb.Struct) (*pulse.Progress, error) {
	progress, err := supervisor.ProgressFromStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	return progress, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// ErrNoSupervisorAddress indicates that neither the config nor the command line names the supervisor.
var ErrNoSupervisorAddress = errors.New("no supervisor address configured")

// SupervisorAddress picks the gRPC address to dial: override wins over the config.
func SupervisorAddress(cfg *config.Config, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if cfg == nil || cfg.Supervisor.GRPCAddress == "" {
		return "", ErrNoSupervisorAddress
	}

	return cfg.Supervisor.GRPCAddress, nil
}
