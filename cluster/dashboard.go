package cluster

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// statusTimeout bounds the statistics requests made to workers while rendering /status
const statusTimeout = 5 * time.Second

type datasetStatus struct {
	ID         string  `json:"id"`
	Source     string  `json:"source"`
	Done       bool    `json:"done"`
	Error      string  `json:"error,omitempty"`
	Rows       int64   `json:"rows"`
	Partitions int64   `json:"partitions"`
	RowErrors  int64   `json:"row_errors"`
	Seconds    float64 `json:"seconds"`
}

type clusterStatus struct {
	Workers  []string           `json:"workers"`
	Expected int                `json:"expected_workers"`
	Datasets []datasetStatus    `json:"datasets"`
	Stats    []WorkerStatistics `json:"stats,omitempty"`
	Warning  string             `json:"warning,omitempty"`
}

func (c *Coordinator) dashboardHandler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.status(ctx.Request.Context()))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// status summarizes the cluster for the dashboard
func (c *Coordinator) status(ctx context.Context) clusterStatus {
	st := clusterStatus{
		Workers:  c.Workers(),
		Expected: c.opts.NumWorkers,
		Datasets: make([]datasetStatus, 0),
	}
	client := c.currentClient()
	if client == nil {
		return st
	}
	for _, pf := range client.persistedFrames() {
		ds := datasetStatus{
			ID:         pf.ID(),
			Source:     pf.Frame().GetDataSource().String(),
			Done:       pf.isDone(),
			Rows:       pf.Rows(),
			Partitions: pf.Partitions(),
			RowErrors:  pf.RowErrors(),
			Seconds:    pf.Elapsed().Seconds(),
		}
		if ds.Done && pf.err != nil {
			ds.Error = pf.err.Error()
		}
		st.Datasets = append(st.Datasets, ds)
	}
	statsCtx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	stats, err := client.Statistics(statsCtx)
	if err != nil {
		st.Warning = err.Error()
	} else {
		st.Stats = stats
	}
	return st
}
