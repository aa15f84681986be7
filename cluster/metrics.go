package cluster

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workersRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyshade",
		Name:      "workers_registered",
		Help:      "Number of workers registered with the coordinator",
	})
	rowsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyshade",
		Name:      "rows_loaded_total",
		Help:      "Total number of rows loaded into worker caches",
	})
	rowErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "skyshade",
		Name:      "row_errors_total",
		Help:      "Total number of rows which could not be parsed while loading",
	})
	partitionsCached = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyshade",
		Name:      "partitions_cached",
		Help:      "Number of partitions currently persisted across workers",
	})
	accumulations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyshade",
		Name:      "accumulations_total",
		Help:      "Total number of accumulations, by accumulator",
	}, []string{"accumulator"})
	rpcDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyshade",
		Name:      "rpc_duration_seconds",
		Help:      "Duration of unary RPCs made by the coordinator",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)
