package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Lifecycle metrics
	LeadsCreated           *prometheus.CounterVec
	NotificationsSent      *prometheus.CounterVec
	SendGateAttempts       *prometheus.CounterVec
	FollowUps              *prometheus.CounterVec
	PaymentsCompleted      prometheus.Counter
	SignatureFailures      *prometheus.CounterVec
	ExportsCreated         *prometheus.CounterVec
	WebhookDuplicates      prometheus.Counter
	StoreOperationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Lifecycle metrics
		LeadsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_created_total",
				Help: "Total number of leads created",
			},
			[]string{"source"}, // intake, voice, booking, send_info
		),
		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Outbound texts and calls by kind and result",
			},
			[]string{"kind", "result"}, // result: sent, failed
		),
		SendGateAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_send_gate_attempts_total",
				Help: "Attempts to acquire the exclusive follow-up text gate",
			},
			[]string{"result"}, // acquired, contended
		),
		FollowUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "followup_calls_total",
				Help: "Delayed follow-up calls by outcome",
			},
			[]string{"result"}, // placed, skipped, failed
		),
		PaymentsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "payments_completed_total",
			Help: "Checkout sessions matched to a lead",
		}),
		SignatureFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_signature_failures_total",
				Help: "Provider callbacks rejected for a bad signature",
			},
			[]string{"provider"}, // twilio, stripe
		),
		ExportsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of lead exports",
			},
			[]string{"format"},
		),
		WebhookDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "webhook_duplicates_total",
			Help: "Stripe deliveries skipped because the event id was already processed",
		}),
		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Record store operation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"operation"},
		),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, e.g. /api/ai/admin/leads/:id

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordLeadCreated increments the leads created counter
func (m *Metrics) RecordLeadCreated(source string) {
	m.LeadsCreated.WithLabelValues(source).Inc()
}

// RecordNotification counts an outbound text or call
func (m *Metrics) RecordNotification(kind string, ok bool) {
	result := "failed"
	if ok {
		result = "sent"
	}
	m.NotificationsSent.WithLabelValues(kind, result).Inc()
}

// RecordSendGate counts a TryBeginSend outcome
func (m *Metrics) RecordSendGate(acquired bool) {
	result := "contended"
	if acquired {
		result = "acquired"
	}
	m.SendGateAttempts.WithLabelValues(result).Inc()
}

// RecordFollowUp counts a fired follow-up by result
func (m *Metrics) RecordFollowUp(result string) {
	m.FollowUps.WithLabelValues(result).Inc()
}

// RecordPayment increments the payments counter
func (m *Metrics) RecordPayment() {
	m.PaymentsCompleted.Inc()
}

// RecordSignatureFailure counts a rejected callback
func (m *Metrics) RecordSignatureFailure(provider string) {
	m.SignatureFailures.WithLabelValues(provider).Inc()
}

// RecordExportCreated increments the exports counter
func (m *Metrics) RecordExportCreated(format string) {
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// RecordWebhookDuplicate increments the duplicate delivery counter
func (m *Metrics) RecordWebhookDuplicate() {
	m.WebhookDuplicates.Inc()
}

// RecordStoreOperation records a store operation duration
func (m *Metrics) RecordStoreOperation(operation string, duration time.Duration) {
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
