// Package metrics reports run accounting gathered from the harness
// counters: how many wallet requests went out and how many reconciliation
// checks ran, by outcome.
package metrics

import (
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "walletcheck_"

// LogSummary gathers every harness counter from the default registry and
// logs one line per metric family with its total and per-label breakdown.
func LogSummary(logger *slog.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		logger.Warn("failed to gather metrics", "error", err)
		return
	}

	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), namespace) {
			continue
		}
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}

		var total float64
		args := []any{}
		for _, m := range family.GetMetric() {
			value := m.GetCounter().GetValue()
			total += value
			if key := labelKey(m); key != "" {
				args = append(args, key, value)
			}
		}
		args = append([]any{"total", total}, args...)
		logger.Info(strings.TrimPrefix(family.GetName(), namespace), args...)
	}
}

func labelKey(m *dto.Metric) string {
	parts := make([]string, 0, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		parts = append(parts, l.GetValue())
	}
	return strings.Join(parts, "/")
}
