package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	deliveryCommits      *prometheus.CounterVec
	quotationTransitions *prometheus.CounterVec
	ordersMaterialized   prometheus.Counter
	notifications        *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry, metrik HTTP dasar, dan metrik ledger.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_delivery_commits_total",
		Help: "Jumlah commit surat jalan berdasarkan hasil.",
	}, []string{"result"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_quotation_transitions_total",
		Help: "Jumlah perubahan status penawaran berdasarkan status tujuan.",
	}, []string{"to"})
	materialized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_sales_orders_materialized_total",
		Help: "Jumlah sales order yang dibentuk dari penawaran.",
	})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_notifications_total",
		Help: "Jumlah notifikasi latar belakang berdasarkan tipe dan hasil.",
	}, []string{"type", "result"})
	registry.MustRegister(requests, duration, commits, transitions, materialized, notifications)
	return &Metrics{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:        requests,
		requestDuration:      duration,
		deliveryCommits:      commits,
		quotationTransitions: transitions,
		ordersMaterialized:   materialized,
		notifications:        notifications,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// DeliveryCommit mencatat hasil commit surat jalan.
func (m *Metrics) DeliveryCommit(result string) {
	if m == nil {
		return
	}
	m.deliveryCommits.WithLabelValues(result).Inc()
}

// QuotationTransition mencatat perubahan status penawaran.
func (m *Metrics) QuotationTransition(to string) {
	if m == nil {
		return
	}
	m.quotationTransitions.WithLabelValues(to).Inc()
}

// SalesOrderMaterialized mencatat pembentukan sales order.
func (m *Metrics) SalesOrderMaterialized() {
	if m == nil {
		return
	}
	m.ordersMaterialized.Inc()
}

// Notification mencatat hasil pengiriman notifikasi.
func (m *Metrics) Notification(taskType, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(taskType, result).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
