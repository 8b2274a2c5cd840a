package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shorts",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Number of reads served from the cache.",
	})
	misses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shorts",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Number of reads that fell through to the backend.",
	})
	faults = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shorts",
		Subsystem: "cache",
		Name:      "faults_total",
		Help:      "Number of cache operations that failed and were degraded.",
	})
)
