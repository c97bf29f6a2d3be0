package idrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote id service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// Dial connects to the id service at address without TLS; the service is
// only reachable inside the cluster.
func Dial(address string) (*Client, error) {
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to id service: %w", err)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClient wraps an existing connection. Calls force the json codec.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) GenerateID(ctx context.Context, in *GenerateIDRequest) (*GenerateIDResponse, error) {
	out := new(GenerateIDResponse)
	if err := c.invoke(ctx, MethodGenerateID, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GenerateBatchIDs(ctx context.Context, in *GenerateBatchIDsRequest) (*GenerateBatchIDsResponse, error) {
	out := new(GenerateBatchIDsResponse)
	if err := c.invoke(ctx, MethodGenerateBatchIDs, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ValidateID(ctx context.Context, in *ValidateIDRequest) (*ValidateIDResponse, error) {
	out := new(ValidateIDResponse)
	if err := c.invoke(ctx, MethodValidateID, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ParseID(ctx context.Context, in *ParseIDRequest) (*ParseIDResponse, error) {
	out := new(ParseIDResponse)
	if err := c.invoke(ctx, MethodParseID, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTypes(ctx context.Context) (*ListTypesResponse, error) {
	out := new(ListTypesResponse)
	if err := c.invoke(ctx, MethodListTypes, &ListTypesRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes a connection opened by Dial.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
