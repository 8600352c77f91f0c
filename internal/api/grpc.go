package api

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/heysubinoy/localkv/api/rpc"
	"github.com/heysubinoy/localkv/pkg/localstore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCServer implements the rpc.StoreServer interface.
// It wraps a localstore.Store and exposes it over gRPC.
type GRPCServer struct {
	Store *localstore.Store
}

var _ rpc.StoreServer = (*GRPCServer)(nil)

// NewGRPCServer creates a new gRPC server with the given store.
func NewGRPCServer(s *localstore.Store) *GRPCServer {
	return &GRPCServer{Store: s}
}

// LoggingInterceptor logs every unary call at debug level and failures at warn.
func LoggingInterceptor(logger hclog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc call failed", "method", info.FullMethod, "code", status.Code(err), "error", err)
			return resp, err
		}
		logger.Debug("grpc call", "method", info.FullMethod, "elapsed", time.Since(start))
		return resp, nil
	}
}

// field returns the Go value of a request field, nil when absent.
// Keys are passed through untyped so the store validates them.
func field(req *structpb.Struct, name string) any {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil
	}
	return v.AsInterface()
}

func outcomeMessage(out localstore.Outcome) (*structpb.Struct, error) {
	value, err := structpb.NewValue(out.Value)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode outcome value: %v", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"status": structpb.NewStringValue(string(out.Status)),
		"value":  value,
	}}, nil
}

func writeStatus(err error) error {
	var serr *localstore.SerializationError
	switch {
	case errors.Is(err, localstore.ErrInvalidKey), errors.As(err, &serr):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *GRPCServer) Write(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.Store.Write(field(req, "key"), field(req, "value")); err != nil {
		return nil, writeStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) Read(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return outcomeMessage(s.Store.Read(field(req, "key")))
}

func (s *GRPCServer) Delete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return outcomeMessage(s.Store.Delete(field(req, "key")))
}

func (s *GRPCServer) Clear(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return outcomeMessage(s.Store.Clear())
}

func (s *GRPCServer) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return outcomeMessage(s.Store.Update(field(req, "key"), field(req, "value")))
}

func (s *GRPCServer) Has(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	found := s.Store.Has(field(req, "key"))
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"found": structpb.NewBoolValue(found),
	}}, nil
}

func (s *GRPCServer) WriteWithExpiry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ttl := time.Duration(req.GetFields()["ttl_ms"].GetNumberValue()) * time.Millisecond
	if err := s.Store.WriteWithExpiry(field(req, "key"), field(req, "value"), ttl); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) ReadWithExpiry(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return outcomeMessage(s.Store.ReadWithExpiry(field(req, "key")))
}

func (s *GRPCServer) CleanExpired(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.Store.CleanExpired()
	return &structpb.Struct{}, nil
}
