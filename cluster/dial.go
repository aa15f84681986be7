package cluster

import (
	"context"
	"fmt"
	"log"
	"time"

	pb "github.com/go-sif/skyshade/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// maxMessageSize bounds individual RPC messages, which may carry serialized PartitionLoaders
const maxMessageSize = 64 * 1024 * 1024

func dialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxMessageSize), grpc.MaxCallSendMsgSize(maxMessageSize)),
		grpc.WithUnaryInterceptor(observeUnaryRPC),
	}
}

func serverOptions() []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxMessageSize),
		grpc.MaxSendMsgSize(maxMessageSize),
	}
}

func dialWorker(w *pb.MWorkerDescriptor) (*grpc.ClientConn, error) {
	conn, err := grpc.Dial(fmt.Sprintf("%s:%d", w.Host, w.Port), dialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("fail to dial worker %s: %w", w.Id, err)
	}
	return conn, nil
}

func dialWorkers(workers []*pb.MWorkerDescriptor) ([]*grpc.ClientConn, error) {
	conns := make([]*grpc.ClientConn, 0, len(workers))
	for _, w := range workers {
		conn, err := dialWorker(w)
		if err != nil {
			closeGRPCConnections(conns)
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, nil
}

func closeGRPCConnections(conns []*grpc.ClientConn) {
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Printf("WARNING: unable to close connection to %s: %v", conn.Target(), err)
		}
	}
}

// observeUnaryRPC records the duration of unary RPCs made by the coordinator
func observeUnaryRPC(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	started := time.Now()
	err := invoker(ctx, method, req, reply, cc, opts...)
	rpcDurations.WithLabelValues(method).Observe(time.Since(started).Seconds())
	return err
}
