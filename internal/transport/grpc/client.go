package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nadzzz/dictado/internal/message"
)

// Client calls a remote Dictado service.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target (host:port). Extra options are appended after
// the defaults: plaintext credentials and the JSON codec.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Process sends one command and returns the response envelope.
func (c *Client) Process(ctx context.Context, msg *message.Message) (*message.Response, error) {
	resp := new(message.Response)
	if err := c.conn.Invoke(ctx, ProcessMethod, msg, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
