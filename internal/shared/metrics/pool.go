package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatsFunc returns the current connection counts of a database pool.
type PoolStatsFunc func() (acquired, idle, total int32, ok bool)

// RegisterPoolGauges exposes pool connection counts as gauges. Registering
// twice is a no-op.
func RegisterPoolGauges(reg prometheus.Registerer, stats PoolStatsFunc) {
	gauge := func(name, help string, pick func(a, i, t int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}, func() float64 {
			a, i, t, ok := stats()
			if !ok {
				return 0
			}
			return float64(pick(a, i, t))
		})
	}

	collectors := []prometheus.Collector{
		gauge("catalog_db_pool_acquired_conns", "Connections currently in use",
			func(a, _, _ int32) int32 { return a }),
		gauge("catalog_db_pool_idle_conns", "Idle connections in the pool",
			func(_, i, _ int32) int32 { return i }),
		gauge("catalog_db_pool_total_conns", "Total connections in the pool",
			func(_, _, t int32) int32 { return t }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, dup := err.(prometheus.AlreadyRegisteredError); !dup {
				panic(err)
			}
		}
	}
}
