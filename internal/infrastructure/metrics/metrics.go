package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "loan_ledger"

// Metrics holds the ledger's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	loansCreated    *prometheus.CounterVec
	loansClosed     *prometheus.CounterVec
	payments        *prometheus.CounterVec
	collateral      *prometheus.CounterVec
	liquidations    *prometheus.CounterVec
	operationErrors *prometheus.CounterVec
	keeperSweeps    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loansCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "loans", Name: "created_total",
			Help: "Loans originated, by product.",
		}, []string{"product"}),
		loansClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "loans", Name: "closed_total",
			Help: "Loans moved to a terminal status, by status.",
		}, []string{"status"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payments", Name: "applied_total",
			Help: "Payments applied, by kind.",
		}, []string{"kind"}),
		collateral: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "collateral", Name: "changes_total",
			Help: "Collateral changes, by kind.",
		}, []string{"kind"}),
		liquidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "liquidations", Name: "executed_total",
			Help: "Liquidations executed, by reason.",
		}, []string{"reason"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "operations", Name: "errors_total",
			Help: "Failed lifecycle operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		keeperSweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "keeper", Name: "sweeps_total",
			Help: "Liquidation sweeps, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
	}
	m.registry.MustRegister(
		m.loansCreated, m.loansClosed, m.payments, m.collateral, m.liquidations,
		m.operationErrors, m.keeperSweeps, m.httpRequests, m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) LoanCreated(productID string) {
	if m != nil {
		m.loansCreated.WithLabelValues(productID).Inc()
	}
}

func (m *Metrics) LoanClosed(status string) {
	if m != nil {
		m.loansClosed.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) PaymentApplied(kind string) {
	if m != nil {
		m.payments.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) CollateralChanged(kind string) {
	if m != nil {
		m.collateral.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Liquidated(reason string) {
	if m != nil {
		m.liquidations.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) OperationFailed(operation, kind string) {
	if m != nil {
		m.operationErrors.WithLabelValues(operation, kind).Inc()
	}
}

func (m *Metrics) KeeperSweep(result string) {
	if m != nil {
		m.keeperSweeps.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}
