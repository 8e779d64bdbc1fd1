package convert

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RecordsConverted prometheus.Counter
	RecordsSkipped   prometheus.Counter
	BatchesFlushed   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bio2parquet_records_converted_total",
			Help: "Number of records written to parquet output.",
		}),
		RecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bio2parquet_records_skipped_total",
			Help: "Number of malformed records skipped in skip mode.",
		}),
		BatchesFlushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bio2parquet_batches_flushed_total",
			Help: "Number of record batches flushed as row groups.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RecordsConverted, m.RecordsSkipped, m.BatchesFlushed)
	}
	return m
}
