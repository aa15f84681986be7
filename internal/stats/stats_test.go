package stats

import (
	"testing"
	"time"

	"github.com/go-sif/skyshade"
	"github.com/stretchr/testify/require"
)

func TestRunStatistics(t *testing.T) {
	rs := &RunStatistics{}
	var _ skyshade.RuntimeStatistics = rs
	rs.Start()
	started := time.Now().Add(-10 * time.Millisecond)
	rs.EndLoad(started, 100, 2)
	rs.EndLoad(started, 50, 1)
	rs.EndPersist(started)
	rs.EndAccumulate(started)
	require.EqualValues(t, 150, rs.GetNumRowsPersisted())
	require.EqualValues(t, 3, rs.GetNumPartitionsPersisted())
	require.EqualValues(t, 1, rs.GetNumAccumulations())
	require.GreaterOrEqual(t, rs.GetCurrentLoadTime(), 10*time.Millisecond)
	require.Len(t, rs.GetPersistRuntimes(), 1)
	require.Len(t, rs.GetAccumulateRuntimes(), 1)

	msg := rs.ToMessage("w1")
	require.Equal(t, "w1", msg.WorkerId)
	require.EqualValues(t, 150, msg.RowsPersisted)
}
