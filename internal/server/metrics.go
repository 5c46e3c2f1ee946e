package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChicagoDave/zoneplanner/pkg/zoning"
)

type metrics struct {
	requests   *prometheus.CounterVec
	partitions *prometheus.CounterVec
	duration   prometheus.Histogram
	efficiency prometheus.Gauge
	repairs    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoneplanner_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zoneplanner_partitions_total",
			Help: "Partition runs by algorithm and outcome.",
		}, []string{"algorithm", "success"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "zoneplanner_partition_duration_seconds",
			Help:    "Time spent partitioning a field.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "zoneplanner_balance_efficiency_percent",
			Help: "Water balance efficiency of the most recent partition.",
		}),
		repairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zoneplanner_overlap_repairs_total",
			Help: "Partitions that needed the overlap repair pass.",
		}),
	}
	reg.MustRegister(m.requests, m.partitions, m.duration, m.efficiency, m.repairs)
	return m
}

func (m *metrics) observe(res zoning.Result) {
	algorithm := res.Debug.Algorithm
	if algorithm == "" {
		algorithm = "none"
	}
	m.partitions.WithLabelValues(algorithm, strconv.FormatBool(res.Success)).Inc()
	if !res.Success {
		return
	}
	m.duration.Observe(res.Debug.Elapsed.Seconds())
	m.efficiency.Set(res.Debug.BalanceEfficiency)
	if res.Debug.RepairApplied {
		m.repairs.Inc()
	}
}
