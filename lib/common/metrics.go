package common

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// MetricName builds a metric name with optional labels in the
// VictoriaMetrics notation, e.g. fssync_counter_ops_total{op="inc"}.
func MetricName(name string, labels ...string) string {
	if len(labels) == 0 {
		return name
	}
	s := name + "{"
	for i := 0; i+1 < len(labels); i += 2 {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", labels[i], labels[i+1])
	}
	return s + "}"
}

// WriteMetrics writes all fsSync metrics in Prometheus text format to w.
// Process metrics are only included if withProcess is set.
func WriteMetrics(w io.Writer, withProcess bool) {
	metrics.WritePrometheus(w, withProcess)
}
