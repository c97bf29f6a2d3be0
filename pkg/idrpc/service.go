package idrpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "launch.id.v1.IDService"

const (
	MethodGenerateID       = "/" + ServiceName + "/GenerateID"
	MethodGenerateBatchIDs = "/" + ServiceName + "/GenerateBatchIDs"
	MethodValidateID       = "/" + ServiceName + "/ValidateID"
	MethodParseID          = "/" + ServiceName + "/ParseID"
	MethodListTypes        = "/" + ServiceName + "/ListTypes"
)

// IDServiceServer is the server API for the id service.
type IDServiceServer interface {
	GenerateID(context.Context, *GenerateIDRequest) (*GenerateIDResponse, error)
	GenerateBatchIDs(context.Context, *GenerateBatchIDsRequest) (*GenerateBatchIDsResponse, error)
	ValidateID(context.Context, *ValidateIDRequest) (*ValidateIDResponse, error)
	ParseID(context.Context, *ParseIDRequest) (*ParseIDResponse, error)
	ListTypes(context.Context, *ListTypesRequest) (*ListTypesResponse, error)
}

// ServiceDesc describes IDService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IDServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GenerateID", MethodGenerateID, IDServiceServer.GenerateID),
		unary("GenerateBatchIDs", MethodGenerateBatchIDs, IDServiceServer.GenerateBatchIDs),
		unary("ValidateID", MethodValidateID, IDServiceServer.ValidateID),
		unary("ParseID", MethodParseID, IDServiceServer.ParseID),
		unary("ListTypes", MethodListTypes, IDServiceServer.ListTypes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "launch/id/v1/id.json",
}

// RegisterIDServiceServer registers srv on s.
func RegisterIDServiceServer(s grpc.ServiceRegistrar, srv IDServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name, fullMethod string, call func(IDServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(IDServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IDServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
