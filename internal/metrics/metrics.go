package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: длительность внешнего вызова банка
	DispatchDuration *prometheus.HistogramVec

	// Traffic: решения по заявкам (approve/deny × исход)
	DecisionTotal *prometheus.CounterVec

	// Errors: классификация отказов workflow
	ErrorTotal *prometheus.CounterVec

	// Saturation: состояние Circuit Breaker банка (0 - ок, 1 - выбило)
	CircuitBreakerState *prometheus.GaugeVec

	// Ежедневный сброс лимитов: сколько записей обнулили
	LimitResetRecords prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		DispatchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verigate_bank_dispatch_duration_seconds",
			Help:    "Histogram of bank dispatch latencies.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"verification_type", "decision", "status"}),

		DecisionTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_decisions_total",
			Help: "Total number of processed approve/deny decisions.",
		}, []string{"decision", "outcome"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_errors_total",
			Help: "Total number of workflow errors by type.",
		}, []string{"type"}), // типы: not_found, bank_failure, database, unsupported_type

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "verigate_bank_circuit_breaker_state",
			Help: "Current state of the bank circuit breaker (0=closed, 1=open).",
		}, []string{"name"}),

		LimitResetRecords: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "verigate_limit_reset_records",
			Help: "Number of limit records zeroed by the last daily reset.",
		}),
	}
}
