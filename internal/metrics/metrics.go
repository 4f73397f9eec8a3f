// Package metrics exposes Prometheus collectors for payment detection and
// ledger storage.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	amountsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paybot_amounts_detected_total",
		Help: "Amounts recognized in chat text",
	}, []string{"currency", "marker"})

	ledgerOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paybot_ledger_operations_total",
		Help: "Ledger storage operations by result",
	}, []string{"operation", "result"})

	ledgerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paybot_ledger_operation_duration_seconds",
		Help:    "Ledger storage latency",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation"})

	exportsRendered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paybot_exports_rendered_total",
		Help: "Spreadsheet exports produced",
	})

	storageUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paybot_storage_up",
		Help: "1 if the last storage health check succeeded",
	})

	taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paybot_scheduled_task_runs_total",
		Help: "Scheduled task runs by result",
	}, []string{"task", "result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "paybot_storage_breaker_state",
		Help: "Storage circuit breaker state: 0 closed, 1 half-open, 2 open",
	}, []string{"breaker"})
)

// AmountDetected counts one recognized amount.
func AmountDetected(currency, marker string) {
	amountsDetected.WithLabelValues(currency, marker).Inc()
}

// ObserveLedger records the outcome and latency of a storage call.
func ObserveLedger(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ledgerOps.WithLabelValues(operation, result).Inc()
	ledgerLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ExportRendered counts one export.
func ExportRendered() {
	exportsRendered.Inc()
}

// SetStorageUp records the last health check result.
func SetStorageUp(up bool) {
	if up {
		storageUp.Set(1)
		return
	}
	storageUp.Set(0)
}

// SetBreakerState records a circuit breaker transition.
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}

// TaskRun counts one scheduled task run.
func TaskRun(task string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	taskRuns.WithLabelValues(task, result).Inc()
}
