package extract

import (
	"go.uber.org/zap"

	"drai-go/internal/metrics"
)

// Validate returns value when min <= value <= max and 0 otherwise. A
// rejected non-zero value is logged with the metric and week and counted;
// rejection is routine, not an error.
func Validate(value, min, max int, metric string, week int, log *zap.Logger) int {
	if min <= value && value <= max {
		return value
	}
	if value != 0 {
		if log == nil {
			log = zap.NewNop()
		}
		log.Warn("value out of range, using 0",
			zap.String("metric", metric),
			zap.Int("week", week),
			zap.Int("value", value),
			zap.Int("min", min),
			zap.Int("max", max),
		)
		metrics.ValuesRejected.WithLabelValues(metric).Inc()
	}
	return 0
}
