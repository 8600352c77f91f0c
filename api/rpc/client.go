package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Outcome mirrors localstore.Outcome on the client side.
type Outcome struct {
	Status string
	Value  any
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool { return o.Status == "success" }

// StoreClient calls the Store service over cc.
type StoreClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreClient(cc grpc.ClientConnInterface) *StoreClient {
	return &StoreClient{cc: cc}
}

// Request builds a request message. Keys may be any JSON-compatible value
// so the server's key validation can be exercised.
func Request(key, value any, ttl time.Duration) (*structpb.Struct, error) {
	fields := map[string]any{}
	if key != nil {
		fields["key"] = key
	}
	if value != nil {
		fields["value"] = value
	}
	if ttl != 0 {
		fields["ttl_ms"] = ttl.Milliseconds()
	}
	return structpb.NewStruct(fields)
}

func (c *StoreClient) invoke(ctx context.Context, name string, key, value any, ttl time.Duration) (*structpb.Struct, error) {
	in, err := Request(key, value, ttl)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(name), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StoreClient) outcome(ctx context.Context, name string, key, value any) (Outcome, error) {
	out, err := c.invoke(ctx, name, key, value, 0)
	if err != nil {
		return Outcome{}, err
	}
	m := out.AsMap()
	status, _ := m["status"].(string)
	return Outcome{Status: status, Value: m["value"]}, nil
}

func (c *StoreClient) Write(ctx context.Context, key string, value any) error {
	_, err := c.invoke(ctx, MethodWrite, key, value, 0)
	return err
}

func (c *StoreClient) Read(ctx context.Context, key string) (Outcome, error) {
	return c.outcome(ctx, MethodRead, key, nil)
}

func (c *StoreClient) Delete(ctx context.Context, key string) (Outcome, error) {
	return c.outcome(ctx, MethodDelete, key, nil)
}

func (c *StoreClient) Clear(ctx context.Context) (Outcome, error) {
	return c.outcome(ctx, MethodClear, nil, nil)
}

func (c *StoreClient) Update(ctx context.Context, key string, value any) (Outcome, error) {
	return c.outcome(ctx, MethodUpdate, key, value)
}

func (c *StoreClient) Has(ctx context.Context, key string) (bool, error) {
	out, err := c.invoke(ctx, MethodHas, key, nil, 0)
	if err != nil {
		return false, err
	}
	return out.GetFields()["found"].GetBoolValue(), nil
}

func (c *StoreClient) WriteWithExpiry(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err := c.invoke(ctx, MethodWriteWithExpiry, key, value, ttl)
	return err
}

func (c *StoreClient) ReadWithExpiry(ctx context.Context, key string) (Outcome, error) {
	return c.outcome(ctx, MethodReadWithExpiry, key, nil)
}

func (c *StoreClient) CleanExpired(ctx context.Context) error {
	_, err := c.invoke(ctx, MethodCleanExpired, nil, nil, 0)
	return err
}
