package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Metrics provides observability for registration intake and the HTTP layer.
type Metrics struct {
	// Submission outcomes by result and whether the submitter was signed in
	Submissions *prometheus.CounterVec

	// Store latency for the submission write
	SubmitLatency prometheus.Histogram

	// Best-effort publish failures
	PublishFailures prometheus.Counter

	// Listing loads by result
	ListingLoads *prometheus.CounterVec

	// Export downloads by format
	Exports *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every metric on reg. A nil reg uses the default registry.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if prefix == "" {
		prefix = "agriedge"
	}
	f := promauto.With(reg)

	m := &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_registration_submissions_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome", "authenticated"}),

		SubmitLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_registration_submit_duration_seconds",
			Help:    "Duration of the duplicate check and write of a submission",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_registration_publish_failures_total",
			Help: "Registration events that could not be published",
		}),

		ListingLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_listing_loads_total",
			Help: "Admin listing loads by result",
		}, []string{"result"}),

		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_exports_total",
			Help: "Export downloads by format",
		}, []string{"format"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

func (m *Metrics) IncSubmission(outcome string, authenticated bool) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome, strconv.FormatBool(authenticated)).Inc()
	}
}

func (m *Metrics) ObserveSubmit(d time.Duration) {
	if m != nil {
		m.SubmitLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncPublishFailure() {
	if m != nil {
		m.PublishFailures.Inc()
	}
}

func (m *Metrics) IncListingLoad(result string) {
	if m != nil {
		m.ListingLoads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncExport(format string) {
	if m != nil {
		m.Exports.WithLabelValues(format).Inc()
	}
}

// Middleware records request count and duration per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
