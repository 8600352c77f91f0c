// Package rpc defines the localkv.v1.Store gRPC service. Messages are
// google.protobuf.Struct values so no generated code is needed:
//
//	request:  {"key": <any>, "value": <any>, "ttl_ms": <number>}
//	outcome:  {"status": "success"|"error", "value": <any>}
//	has:      {"found": <bool>}
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "localkv.v1.Store"

// Method names of the Store service.
const (
	MethodWrite           = "Write"
	MethodRead            = "Read"
	MethodDelete          = "Delete"
	MethodClear           = "Clear"
	MethodUpdate          = "Update"
	MethodHas             = "Has"
	MethodWriteWithExpiry = "WriteWithExpiry"
	MethodReadWithExpiry  = "ReadWithExpiry"
	MethodCleanExpired    = "CleanExpired"
)

// StoreServer is the server API for the Store service.
type StoreServer interface {
	Write(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Read(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Clear(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Has(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WriteWithExpiry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReadWithExpiry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CleanExpired(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(StoreServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StoreServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(StoreServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc is the grpc.ServiceDesc for the Store service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodWrite, StoreServer.Write),
		method(MethodRead, StoreServer.Read),
		method(MethodDelete, StoreServer.Delete),
		method(MethodClear, StoreServer.Clear),
		method(MethodUpdate, StoreServer.Update),
		method(MethodHas, StoreServer.Has),
		method(MethodWriteWithExpiry, StoreServer.WriteWithExpiry),
		method(MethodReadWithExpiry, StoreServer.ReadWithExpiry),
		method(MethodCleanExpired, StoreServer.CleanExpired),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "localkv/v1/store.proto",
}

// RegisterStoreServer registers srv on s.
func RegisterStoreServer(s grpc.ServiceRegistrar, srv StoreServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the "/service/method" path of a Store method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
