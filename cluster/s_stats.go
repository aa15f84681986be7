package cluster

import (
	"context"

	pb "github.com/go-sif/skyshade/internal/rpc"
	"github.com/go-sif/skyshade/internal/stats"
)

type statsServer struct {
	workerID      string
	statsTracker  *stats.RunStatistics
	datasetServer *datasetServer
}

// createStatsServer creates a new stats server
func createStatsServer(workerID string, statsTracker *stats.RunStatistics, datasetServer *datasetServer) *statsServer {
	return &statsServer{workerID: workerID, statsTracker: statsTracker, datasetServer: datasetServer}
}

// ProvideStatistics reports statistics about this worker, and optionally the datasets it holds
func (s *statsServer) ProvideStatistics(ctx context.Context, req *pb.MStatisticsRequest) (*pb.MStatisticsResponse, error) {
	res := s.statsTracker.ToMessage(s.workerID)
	if req.IncludeDatasets {
		res.Datasets = s.datasetServer.describe()
	}
	return res, nil
}
