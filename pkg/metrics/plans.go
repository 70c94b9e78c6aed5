package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sipcourse"

// Recorder exports plan and HTTP metrics. A nil Recorder discards every
// observation so callers never need to guard.
type Recorder struct {
	quotes       *prometheus.CounterVec
	created      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder registers the plan metrics on the provided registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_quotes_total",
		Help:      "Plan projections computed, by duration in months.",
	}, []string{"duration"})
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_records_created_total",
		Help:      "Plan records persisted.",
	}, []string{"duration", "type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_record_failures_total",
		Help:      "Plan record submissions rejected or failed.",
	}, []string{"reason"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(quotes, created, failures, httpDuration)
	return &Recorder{
		quotes:       quotes,
		created:      created,
		failures:     failures,
		httpDuration: httpDuration,
	}
}

// IncQuote counts a computed projection.
func (r *Recorder) IncQuote(months int) {
	if r == nil || r.quotes == nil {
		return
	}
	r.quotes.WithLabelValues(strconv.Itoa(months)).Inc()
}

// IncRecordCreated counts a persisted plan record.
func (r *Recorder) IncRecordCreated(months int, planType string) {
	if r == nil || r.created == nil {
		return
	}
	r.created.WithLabelValues(strconv.Itoa(months), normalizeLabel(planType)).Inc()
}

// IncRecordFailure counts a rejected or failed submission.
func (r *Recorder) IncRecordFailure(reason string) {
	if r == nil || r.failures == nil {
		return
	}
	r.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil || r.httpDuration == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
