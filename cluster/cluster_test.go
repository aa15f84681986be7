package cluster_test

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/cluster"
	"github.com/go-sif/skyshade/datasource/memory"
	"github.com/go-sif/skyshade/datasource/parser/jsonl"
	"github.com/go-sif/skyshade/schema"
	skyshadetest "github.com/go-sif/skyshade/testing"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// createStarFrame produces numBuffers buffers of rowsPerBuffer stars each. Every tenth star has no dec.
func createStarFrame(numBuffers int, rowsPerBuffer int) skyshade.DataFrame {
	data := make([][]byte, numBuffers)
	for b := 0; b < numBuffers; b++ {
		var sb strings.Builder
		for r := 0; r < rowsPerBuffer; r++ {
			i := b*rowsPerBuffer + r
			if i%10 == 9 {
				fmt.Fprintf(&sb, "{\"ra\": %d}\n", i%360)
			} else {
				fmt.Fprintf(&sb, "{\"ra\": %d, \"dec\": %d}\n", i%360, (i%180)-90)
			}
		}
		data[b] = []byte(sb.String())
	}
	s := schema.CreateSchema()
	s.CreateColumn("ra", &skyshade.Float64ColumnType{})
	s.CreateColumn("dec", &skyshade.Float64ColumnType{})
	parser := jsonl.CreateParser(&jsonl.ParserConf{PartitionSize: 16})
	return memory.CreateDataFrame(data, parser, s)
}

func startCluster(t *testing.T, port int, numWorkers int) *skyshadetest.Cluster {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := skyshadetest.LocalCluster(ctx, &cluster.NodeOptions{Port: port, TempDir: t.TempDir()}, numWorkers)
	require.Nil(t, err)
	require.Len(t, c.Client.Workers(), numWorkers)
	return c
}

func TestPersistCountAccumulate(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := startCluster(t, 8180, 2)
	ctx := context.Background()

	pf := c.Client.Persist(ctx, createStarFrame(4, 50))
	require.Nil(t, pf.Wait(ctx))
	require.EqualValues(t, 200, pf.Rows())
	require.EqualValues(t, 0, pf.RowErrors())

	count, err := c.Client.Count(ctx, pf)
	require.Nil(t, err)
	require.EqualValues(t, 200, count)

	acc, err := c.Client.Accumulate(ctx, pf, accumulators.Ranger("ra", "dec"))
	require.Nil(t, err)
	extent := acc.(*accumulators.Extent)
	ra, ok := extent.Get("ra")
	require.True(t, ok)
	require.Equal(t, accumulators.Range{Min: 0, Max: 199}, ra)

	acc, err = c.Client.Accumulate(ctx, pf, accumulators.Binner(accumulators.CanvasSpec{
		X: "ra", Y: "dec", Width: 10, Height: 10,
		XRange: accumulators.Range{Min: 0, Max: 360},
		YRange: accumulators.Range{Min: -90, Max: 90},
	}))
	require.Nil(t, err)
	canvas := acc.(*accumulators.Canvas)
	// stars without a dec are skipped
	require.EqualValues(t, 180, canvas.Total())

	rows, err := c.Client.Head(ctx, pf, 5)
	require.Nil(t, err)
	require.Len(t, rows, 5)

	stats, err := c.Client.Statistics(ctx)
	require.Nil(t, err)
	require.Len(t, stats, 2)
	var persisted int64
	for _, ws := range stats {
		persisted += ws.RowsPersisted
		require.Len(t, ws.Datasets, 1)
		require.Equal(t, pf.ID(), ws.Datasets[0].ID)
	}
	require.EqualValues(t, 200, persisted)

	require.Equal(t, []string{pf.ID()}, c.Client.PersistedFrames())
	require.Nil(t, pf.Release(ctx))
	require.Nil(t, pf.Release(ctx))
	require.Empty(t, c.Client.PersistedFrames())
	require.Nil(t, c.Teardown(ctx))
}

func TestPersistFilters(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := startCluster(t, 8280, 2)
	ctx := context.Background()

	frame := createStarFrame(3, 40).Where(skyshade.Filter{Column: "ra", Min: 0, Max: 59.5})
	pf := c.Client.Persist(ctx, frame)
	count, err := c.Client.Count(ctx, pf)
	require.Nil(t, err)
	require.EqualValues(t, 60, count)

	pf = c.Client.Persist(ctx, createStarFrame(3, 40).DropNil())
	count, err = c.Client.Count(ctx, pf)
	require.Nil(t, err)
	require.EqualValues(t, 108, count)

	// closing the client releases everything it persisted
	require.Len(t, c.Client.PersistedFrames(), 2)
	require.Nil(t, c.Teardown(ctx))
}

func TestPersistFailureSurfacesLater(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := startCluster(t, 8380, 1)
	ctx := context.Background()

	// a filter on a missing column fails analysis
	frame := createStarFrame(1, 10).Where(skyshade.Filter{Column: "parallax", Min: 0, Max: math.Inf(1)})
	pf := c.Client.Persist(ctx, frame)
	<-pf.Done()
	require.NotNil(t, pf.Wait(ctx))
	_, err := c.Client.Count(ctx, pf)
	require.NotNil(t, err)
	require.Nil(t, c.Teardown(ctx))
}

func TestPersistFewerLoadersThanWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := startCluster(t, 8980, 3)
	ctx := context.Background()

	// a single buffer yields a single PartitionLoader, so two workers hold nothing
	pf := c.Client.Persist(ctx, createStarFrame(1, 20))
	require.Nil(t, pf.Wait(ctx))

	count, err := c.Client.Count(ctx, pf)
	require.Nil(t, err)
	require.EqualValues(t, 20, count)

	acc, err := c.Client.Accumulate(ctx, pf, accumulators.Binner(accumulators.CanvasSpec{
		X: "ra", Y: "dec", Width: 4, Height: 4,
		XRange: accumulators.Range{Min: 0, Max: 19},
		YRange: accumulators.Range{Min: -90, Max: -71},
	}))
	require.Nil(t, err)
	require.EqualValues(t, 18, acc.(*accumulators.Canvas).Total())

	rows, err := c.Client.Head(ctx, pf, 50)
	require.Nil(t, err)
	require.Len(t, rows, 20)

	stats, err := c.Client.Statistics(ctx)
	require.Nil(t, err)
	holding := 0
	for _, ws := range stats {
		holding += len(ws.Datasets)
	}
	require.Equal(t, 1, holding)

	require.Nil(t, pf.Release(ctx))
	require.Nil(t, c.Teardown(ctx))
}

func TestAccumulateRejectsInvalidCanvas(t *testing.T) {
	defer goleak.VerifyNone(t)
	c := startCluster(t, 9080, 2)
	ctx := context.Background()

	pf := c.Client.Persist(ctx, createStarFrame(2, 10))
	require.Nil(t, pf.Wait(ctx))

	_, err := c.Client.Accumulate(ctx, pf, accumulators.Binner(accumulators.CanvasSpec{
		X: "ra", Y: "dec", Width: 4, Height: 4,
		XRange: accumulators.Range{Min: 10, Max: 5},
		YRange: accumulators.Range{Min: -90, Max: 90},
	}))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "invalid x range")

	// the cluster is still usable
	count, err := c.Client.Count(ctx, pf)
	require.Nil(t, err)
	require.EqualValues(t, 20, count)
	require.Nil(t, c.Teardown(ctx))
}
