package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ReportsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drai_reports_processed_total",
		Help: "Total number of reports turned into a metrics record",
	})
	ConversionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drai_conversion_failures_total",
		Help: "Total number of input files that could not be read or converted",
	})
	BytesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drai_bytes_read_total",
		Help: "Total bytes of report documents read",
	})
	ValuesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drai_values_rejected_total",
		Help: "Extracted values zeroed by the plausibility range check",
	}, []string{"metric"})
	SectionsMissing = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drai_sections_missing_total",
		Help: "Section headings that were not found in a report",
	}, []string{"section"})
	StoredWeeks = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "drai_store_weeks",
		Help: "Number of distinct weeks currently held by the session store",
	})
)

func init() {
	prometheus.MustRegister(ReportsProcessed, ConversionFailures, BytesRead,
		ValuesRejected, SectionsMissing, StoredWeeks)
}
