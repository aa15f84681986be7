package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// DatasetServiceClient is the client API for DatasetService
type DatasetServiceClient interface {
	AssignPartition(ctx context.Context, in *MAssignPartitionRequest, opts ...grpc.CallOption) (*MAssignPartitionResponse, error)
	Accumulate(ctx context.Context, in *MAccumulateRequest, opts ...grpc.CallOption) (DatasetService_AccumulateClient, error)
	Head(ctx context.Context, in *MHeadRequest, opts ...grpc.CallOption) (DatasetService_HeadClient, error)
	Release(ctx context.Context, in *MReleaseRequest, opts ...grpc.CallOption) (*MReleaseResponse, error)
}

type datasetServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDatasetServiceClient creates a DatasetServiceClient
func NewDatasetServiceClient(cc grpc.ClientConnInterface) DatasetServiceClient {
	return &datasetServiceClient{cc}
}

func (c *datasetServiceClient) AssignPartition(ctx context.Context, in *MAssignPartitionRequest, opts ...grpc.CallOption) (*MAssignPartitionResponse, error) {
	out := new(MAssignPartitionResponse)
	err := c.cc.Invoke(ctx, "/skyshade.DatasetService/AssignPartition", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datasetServiceClient) Accumulate(ctx context.Context, in *MAccumulateRequest, opts ...grpc.CallOption) (DatasetService_AccumulateClient, error) {
	stream, err := c.cc.NewStream(ctx, &DatasetService_ServiceDesc.Streams[0], "/skyshade.DatasetService/Accumulate", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &datasetServiceAccumulateClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// DatasetService_AccumulateClient receives the chunks of a serialized Accumulator
type DatasetService_AccumulateClient interface {
	Recv() (*MAccumulatorChunk, error)
	grpc.ClientStream
}

type datasetServiceAccumulateClient struct {
	grpc.ClientStream
}

func (x *datasetServiceAccumulateClient) Recv() (*MAccumulatorChunk, error) {
	m := new(MAccumulatorChunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *datasetServiceClient) Head(ctx context.Context, in *MHeadRequest, opts ...grpc.CallOption) (DatasetService_HeadClient, error) {
	stream, err := c.cc.NewStream(ctx, &DatasetService_ServiceDesc.Streams[1], "/skyshade.DatasetService/Head", withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &datasetServiceHeadClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// DatasetService_HeadClient receives the chunks of serialized Partitions
type DatasetService_HeadClient interface {
	Recv() (*MPartitionChunk, error)
	grpc.ClientStream
}

type datasetServiceHeadClient struct {
	grpc.ClientStream
}

func (x *datasetServiceHeadClient) Recv() (*MPartitionChunk, error) {
	m := new(MPartitionChunk)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *datasetServiceClient) Release(ctx context.Context, in *MReleaseRequest, opts ...grpc.CallOption) (*MReleaseResponse, error) {
	out := new(MReleaseResponse)
	err := c.cc.Invoke(ctx, "/skyshade.DatasetService/Release", in, out, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DatasetServiceServer is the server API for DatasetService
type DatasetServiceServer interface {
	AssignPartition(context.Context, *MAssignPartitionRequest) (*MAssignPartitionResponse, error)
	Accumulate(*MAccumulateRequest, DatasetService_AccumulateServer) error
	Head(*MHeadRequest, DatasetService_HeadServer) error
	Release(context.Context, *MReleaseRequest) (*MReleaseResponse, error)
}

// RegisterDatasetServiceServer registers a DatasetServiceServer with a grpc.Server
func RegisterDatasetServiceServer(s *grpc.Server, srv DatasetServiceServer) {
	s.RegisterService(&DatasetService_ServiceDesc, srv)
}

func _DatasetService_AssignPartition_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MAssignPartitionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).AssignPartition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/skyshade.DatasetService/AssignPartition",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).AssignPartition(ctx, req.(*MAssignPartitionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatasetService_Release_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MReleaseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).Release(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/skyshade.DatasetService/Release",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).Release(ctx, req.(*MReleaseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatasetService_Accumulate_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(MAccumulateRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DatasetServiceServer).Accumulate(m, &datasetServiceAccumulateServer{stream})
}

// DatasetService_AccumulateServer sends the chunks of a serialized Accumulator
type DatasetService_AccumulateServer interface {
	Send(*MAccumulatorChunk) error
	grpc.ServerStream
}

type datasetServiceAccumulateServer struct {
	grpc.ServerStream
}

func (x *datasetServiceAccumulateServer) Send(m *MAccumulatorChunk) error {
	return x.ServerStream.SendMsg(m)
}

func _DatasetService_Head_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(MHeadRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DatasetServiceServer).Head(m, &datasetServiceHeadServer{stream})
}

// DatasetService_HeadServer sends the chunks of serialized Partitions
type DatasetService_HeadServer interface {
	Send(*MPartitionChunk) error
	grpc.ServerStream
}

type datasetServiceHeadServer struct {
	grpc.ServerStream
}

func (x *datasetServiceHeadServer) Send(m *MPartitionChunk) error {
	return x.ServerStream.SendMsg(m)
}

// DatasetService_ServiceDesc is the grpc.ServiceDesc for DatasetService
var DatasetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "skyshade.DatasetService",
	HandlerType: (*DatasetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AssignPartition",
			Handler:    _DatasetService_AssignPartition_Handler,
		},
		{
			MethodName: "Release",
			Handler:    _DatasetService_Release_Handler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Accumulate",
			Handler:       _DatasetService_Accumulate_Handler,
			ServerStreams: true,
		},
		{
			StreamName:    "Head",
			Handler:       _DatasetService_Head_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "s_dataset",
}
