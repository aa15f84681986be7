package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ClusterServiceClient is the client API for ClusterService
type ClusterServiceClient interface {
	RegisterWorker(ctx context.Context, in *MRegisterRequest, opts ...grpc.CallOption) (*MRegisterResponse, error)
}

type clusterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClusterServiceClient creates a ClusterServiceClient
func NewClusterServiceClient(cc grpc.ClientConnInterface) ClusterServiceClient {
	return &clusterServiceClient{cc}
}

func (c *clusterServiceClient) RegisterWorker(ctx context.Context, in *MRegisterRequest, opts ...grpc.CallOption) (*MRegisterResponse, error) {
	out := new(MRegisterResponse)
	err := c.cc.Invoke(ctx, "/skyshade.ClusterService/RegisterWorker", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClusterServiceServer is the server API for ClusterService
type ClusterServiceServer interface {
	RegisterWorker(context.Context, *MRegisterRequest) (*MRegisterResponse, error)
}

// RegisterClusterServiceServer registers a ClusterServiceServer with a grpc.Server
func RegisterClusterServiceServer(s *grpc.Server, srv ClusterServiceServer) {
	s.RegisterService(&ClusterService_ServiceDesc, srv)
}

func _ClusterService_RegisterWorker_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MRegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).RegisterWorker(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/skyshade.ClusterService/RegisterWorker",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).RegisterWorker(ctx, req.(*MRegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ClusterService_ServiceDesc is the grpc.ServiceDesc for ClusterService
var ClusterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "skyshade.ClusterService",
	HandlerType: (*ClusterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterWorker",
			Handler:    _ClusterService_RegisterWorker_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "s_cluster",
}
