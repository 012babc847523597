package transport

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/sudhirerahul/meta-creation-agents/core"
)

// ClientOptions configure Dial.
type ClientOptions struct {
	// DialOptions are appended after the default insecure credentials.
	DialOptions []grpc.DialOption
}

// Client talks to a Host. It implements core.Sender.
type Client struct {
	conn grpc.ClientConnInterface
	// closer is nil when the connection is owned by the caller.
	closer interface{ Close() error }
}

var _ core.Sender = (*Client)(nil)

// Dial connects to the host at target.
func Dial(target string, optFns ...func(o *ClientOptions)) (*Client, error) {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts.DialOptions...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, closer: conn}, nil
}

// NewClient wraps an existing connection. Close leaves conn open.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Send delivers msg to addr on the host and returns the reply.
func (c *Client) Send(ctx context.Context, addr core.Address, msg core.Message) (core.Message, error) {
	fields := map[string]any{
		"type": addr.Type,
		"key":  addr.Key,
	}
	putContent(fields, msg.Content)
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return core.Message{}, &core.DeliveryError{Address: addr, Err: err}
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodSend, in, out); err != nil {
		return core.Message{}, fromStatus(err, addr)
	}
	content, err := getContent(out)
	if err != nil {
		return core.Message{}, &core.DeliveryError{Address: addr, Err: err}
	}
	return core.NewMessage(content), nil
}

// RegisterSpec asks the host to load spec, which must expose symbol, and
// register it under typ.
func (c *Client) RegisterSpec(ctx context.Context, typ, symbol, spec string) error {
	in, err := structpb.NewStruct(map[string]any{
		"type":   typ,
		"symbol": symbol,
		"spec":   spec,
	})
	if err != nil {
		return err
	}
	if err := c.conn.Invoke(ctx, methodRegister, in, new(structpb.Struct)); err != nil {
		return fromStatus(err, core.NewAddress(typ))
	}
	return nil
}

// Types lists the types registered on the host.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodTypes, &structpb.Struct{}, out); err != nil {
		return nil, fromStatus(err, core.Address{})
	}

	values := out.GetFields()["types"].GetListValue().GetValues()
	types := make([]string, 0, len(values))
	for _, v := range values {
		types = append(types, v.GetStringValue())
	}
	return types, nil
}

// Close releases the connection when the client owns it.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
