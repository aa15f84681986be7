package cluster

import (
	"context"
	"log"
	"time"

	pb "github.com/go-sif/skyshade/internal/rpc"
)

type lifecycleServer struct {
	node Node
}

// createLifecycleServer creates a new lifecycleServer
func createLifecycleServer(node Node) *lifecycleServer {
	return &lifecycleServer{node: node}
}

// Stop stops a node, either immediately or after in-flight RPCs finish
func (s *lifecycleServer) Stop(ctx context.Context, req *pb.MStopRequest) (*pb.MStopResponse, error) {
	if req.Graceful {
		log.Println("Received request to stop gracefully...")
		// we can't wait for the error to respond, because this counts as an open RPC, which blocks GracefulStop
		go s.node.GracefulStop()
	} else {
		log.Println("Received request to stop...")
		go s.node.Stop()
	}
	return &pb.MStopResponse{Time: time.Now().Unix()}, nil
}
