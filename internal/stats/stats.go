package stats

import (
	"sync"
	"time"

	pb "github.com/go-sif/skyshade/internal/rpc"
)

const statisticRollingWindows = 5

// RunStatistics contains statistics about a running skyshade node
type RunStatistics struct {
	lock                    sync.Mutex
	started                 bool
	startTime               time.Time
	rowsPersisted           int64
	partitionsPersisted     int64
	accumulations           int64
	recentLoadRuntimes      []int64 // for rolling average of recent PartitionLoader processing times
	recentLoadRuntimesHead  int
	recentPersistRuntimes   []int64 // most recent runtimes of persist operations
	recentPersistHead       int
	recentAccumRuntimes     []int64 // most recent runtimes of accumulations
	recentAccumRuntimesHead int
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.recentLoadRuntimes = make([]int64, statisticRollingWindows)
		rs.recentPersistRuntimes = make([]int64, statisticRollingWindows)
		rs.recentAccumRuntimes = make([]int64, statisticRollingWindows)
	}
}

// EndLoad tracks the completion of a PartitionLoader
func (rs *RunStatistics) EndLoad(started time.Time, numRows int64, numPartitions int64) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.recentLoadRuntimes[rs.recentLoadRuntimesHead] = time.Since(started).Nanoseconds()
	rs.recentLoadRuntimesHead = (rs.recentLoadRuntimesHead + 1) % statisticRollingWindows
	rs.rowsPersisted += numRows
	rs.partitionsPersisted += numPartitions
}

// EndPersist tracks the completion of the persistence of a dataset
func (rs *RunStatistics) EndPersist(started time.Time) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.recentPersistRuntimes[rs.recentPersistHead] = time.Since(started).Nanoseconds()
	rs.recentPersistHead = (rs.recentPersistHead + 1) % statisticRollingWindows
}

// EndAccumulate tracks the completion of an accumulation
func (rs *RunStatistics) EndAccumulate(started time.Time) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.recentAccumRuntimes[rs.recentAccumRuntimesHead] = time.Since(started).Nanoseconds()
	rs.recentAccumRuntimesHead = (rs.recentAccumRuntimesHead + 1) % statisticRollingWindows
	rs.accumulations++
}

// GetStartTime returns the start time of the node
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the node
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return time.Since(rs.startTime)
}

// GetNumRowsPersisted returns the number of Rows which have been persisted so far
func (rs *RunStatistics) GetNumRowsPersisted() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.rowsPersisted
}

// GetNumPartitionsPersisted returns the number of Partitions which have been persisted so far
func (rs *RunStatistics) GetNumPartitionsPersisted() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.partitionsPersisted
}

// GetNumAccumulations returns the number of accumulations which have completed
func (rs *RunStatistics) GetNumAccumulations() int64 {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.accumulations
}

// GetCurrentLoadTime returns a rolling average of PartitionLoader processing time
func (rs *RunStatistics) GetCurrentLoadTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total, n int64
	for _, d := range rs.recentLoadRuntimes {
		if d > 0 {
			total += d
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return time.Duration(total / n)
}

// GetPersistRuntimes returns the most recent persist runtimes
func (rs *RunStatistics) GetPersistRuntimes() []time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return toDurations(rs.recentPersistRuntimes)
}

// GetAccumulateRuntimes returns the most recent accumulation runtimes
func (rs *RunStatistics) GetAccumulateRuntimes() []time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return toDurations(rs.recentAccumRuntimes)
}

func toDurations(nanos []int64) []time.Duration {
	res := make([]time.Duration, 0, len(nanos))
	for _, n := range nanos {
		if n > 0 {
			res = append(res, time.Duration(n))
		}
	}
	return res
}

// ToMessage converts this struct into an rpc message
func (rs *RunStatistics) ToMessage(workerID string) *pb.MStatisticsResponse {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	loads := make([]int64, len(rs.recentLoadRuntimes))
	copy(loads, rs.recentLoadRuntimes)
	accums := make([]int64, len(rs.recentAccumRuntimes))
	copy(accums, rs.recentAccumRuntimes)
	return &pb.MStatisticsResponse{
		WorkerId:            workerID,
		StartTime:           rs.startTime.UnixNano(),
		RowsPersisted:       rs.rowsPersisted,
		PartitionsPersisted: rs.partitionsPersisted,
		Accumulations:       rs.accumulations,
		RecentLoadRuntimes:  loads,
		RecentAccumRuntimes: accums,
	}
}
