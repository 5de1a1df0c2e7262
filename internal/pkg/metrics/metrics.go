package metrics

import (
	stderrors "errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperror "stockledger/internal/errors"
)

const namespace = "stockledger"

// OutcomeSuccess é o rótulo de resultado para operações concluídas.
const OutcomeSuccess = "success"

// Metrics agrupa os coletores Prometheus do serviço. É criado uma vez no main
// e injetado nos serviços e no middleware HTTP.
type Metrics struct {
	AdjustmentsTotal    *prometheus.CounterVec
	AdjustmentDuration  *prometheus.HistogramVec
	LowStockItems       prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registra os coletores no registry informado.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AdjustmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adjustments_total",
			Help:      "Total de ajustes de estoque por operação e resultado.",
		}, []string{"operation", "outcome"}),
		AdjustmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adjustment_duration_seconds",
			Help:      "Duração dos ajustes de estoque, incluindo a espera pelo lock.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"operation"}),
		LowStockItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_items",
			Help:      "Quantidade de ledgers com estoque baixo na última varredura.",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de requisições HTTP.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duração das requisições HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Outcome traduz o erro de uma operação no rótulo de resultado (categoria do AppError).
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var appErr apperror.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Category()
	}
	return "UNKNOWN_ERROR"
}

// ObserveAdjustment registra o resultado e a duração de um ajuste.
func (m *Metrics) ObserveAdjustment(operation string, err error, elapsed time.Duration) {
	m.AdjustmentsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	m.AdjustmentDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) SetLowStock(n int) {
	m.LowStockItems.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
