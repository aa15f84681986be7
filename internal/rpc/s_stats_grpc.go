package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// StatsServiceClient is the client API for StatsService
type StatsServiceClient interface {
	ProvideStatistics(ctx context.Context, in *MStatisticsRequest, opts ...grpc.CallOption) (*MStatisticsResponse, error)
}

type statsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewStatsServiceClient creates a StatsServiceClient
func NewStatsServiceClient(cc grpc.ClientConnInterface) StatsServiceClient {
	return &statsServiceClient{cc}
}

func (c *statsServiceClient) ProvideStatistics(ctx context.Context, in *MStatisticsRequest, opts ...grpc.CallOption) (*MStatisticsResponse, error) {
	out := new(MStatisticsResponse)
	err := c.cc.Invoke(ctx, "/skyshade.StatsService/ProvideStatistics", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StatsServiceServer is the server API for StatsService
type StatsServiceServer interface {
	ProvideStatistics(context.Context, *MStatisticsRequest) (*MStatisticsResponse, error)
}

// RegisterStatsServiceServer registers a StatsServiceServer with a grpc.Server
func RegisterStatsServiceServer(s *grpc.Server, srv StatsServiceServer) {
	s.RegisterService(&StatsService_ServiceDesc, srv)
}

func _StatsService_ProvideStatistics_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MStatisticsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatsServiceServer).ProvideStatistics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/skyshade.StatsService/ProvideStatistics",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(StatsServiceServer).ProvideStatistics(ctx, req.(*MStatisticsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// StatsService_ServiceDesc is the grpc.ServiceDesc for StatsService
var StatsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "skyshade.StatsService",
	HandlerType: (*StatsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProvideStatistics",
			Handler:    _StatsService_ProvideStatistics_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "s_stats",
}
