package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vcboard.v1.Board"

const (
	methodPost   = "/" + ServiceName + "/Post"
	methodSync   = "/" + ServiceName + "/Sync"
	methodView   = "/" + ServiceName + "/View"
	methodGossip = "/" + ServiceName + "/Gossip"
)

// BoardServer is the server API for the Board service.
type BoardServer interface {
	Post(context.Context, *PostRequest) (*PostResponse, error)
	Sync(context.Context, *SyncRequest) (*SyncResponse, error)
	View(context.Context, *ViewRequest) (*ViewResponse, error)
	Gossip(context.Context, *GossipRequest) (*GossipResponse, error)
}

// ServiceDesc describes the Board service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Post", Handler: unaryHandler(methodPost, BoardServer.Post)},
		{MethodName: "Sync", Handler: unaryHandler(methodSync, BoardServer.Sync)},
		{MethodName: "View", Handler: unaryHandler(methodView, BoardServer.View)},
		{MethodName: "Gossip", Handler: unaryHandler(methodGossip, BoardServer.Gossip)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vcboard/v1/board.proto",
}

// RegisterBoardServer registers srv on s.
func RegisterBoardServer(s grpc.ServiceRegistrar, srv BoardServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(BoardServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BoardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BoardServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
