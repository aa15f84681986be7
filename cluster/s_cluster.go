package cluster

import (
	"context"
	"fmt"
	"log"
	"net"
	"sort"
	"sync"
	"time"

	pb "github.com/go-sif/skyshade/internal/rpc"
	"google.golang.org/grpc/peer"
)

type clusterServer struct {
	lock    sync.Mutex
	workers map[string]*pb.MWorkerDescriptor
	order   []string // registration order
}

// createClusterServer creates a new cluster server
func createClusterServer() *clusterServer {
	return &clusterServer{workers: make(map[string]*pb.MWorkerDescriptor)}
}

// RegisterWorker registers new workers with the cluster
func (s *clusterServer) RegisterWorker(ctx context.Context, req *pb.MRegisterRequest) (*pb.MRegisterResponse, error) {
	peer, ok := peer.FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("Unable to fetch peer data for connecting worker %s", req.Id)
	}
	tcpAddr, ok := peer.Addr.(*net.TCPAddr)
	if !ok {
		return nil, fmt.Errorf("Connecting worker %s is not using TCP", req.Id)
	}
	wDescriptor := &pb.MWorkerDescriptor{
		Id:   req.Id,
		Host: tcpAddr.IP.String(),
		Port: req.Port,
	}
	// test connection
	conn, err := dialWorker(wDescriptor)
	if err != nil {
		return nil, fmt.Errorf("Unable to connect to worker %s: %w", wDescriptor.Id, err)
	}
	defer conn.Close()

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.workers[req.Id]; exists {
		return nil, fmt.Errorf("Worker %s is already registered", req.Id)
	}
	s.workers[req.Id] = wDescriptor
	s.order = append(s.order, req.Id)
	workersRegistered.Set(float64(len(s.workers)))
	log.Printf("Registered worker %s at %s:%d", wDescriptor.Id, wDescriptor.Host, wDescriptor.Port)
	return &pb.MRegisterResponse{Time: time.Now().Unix()}, nil
}

// NumberOfWorkers returns the current worker count
func (s *clusterServer) NumberOfWorkers() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.workers)
}

// Workers retrieves a slice of connected workers, in the order in which they registered
func (s *clusterServer) Workers() []*pb.MWorkerDescriptor {
	s.lock.Lock()
	defer s.lock.Unlock()
	result := make([]*pb.MWorkerDescriptor, 0, len(s.order))
	for _, id := range s.order {
		w := *s.workers[id]
		result = append(result, &w)
	}
	return result
}

// WorkerIDs returns the sorted IDs of connected workers
func (s *clusterServer) WorkerIDs() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	sort.Strings(ids)
	return ids
}

func (s *clusterServer) waitForWorkers(ctx context.Context, numWorkers int) error {
	for {
		if s.NumberOfWorkers() >= numWorkers {
			break
		}
		select {
		case <-ctx.Done():
			// Did we time out?
			return fmt.Errorf("%d of %d workers joined: %w", s.NumberOfWorkers(), numWorkers, ctx.Err())
		case <-time.After(100 * time.Millisecond):
			// Wait and check again (iterate)
		}
	}
	return nil
}
