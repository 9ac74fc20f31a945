package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	followupsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followups_scheduled_total",
			Help: "Total number of follow-ups scheduled",
		},
	)

	followupsRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followups_removed_total",
			Help: "Total number of follow-ups removed",
		},
	)

	validationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_validation_rejections_total",
			Help: "Follow-up submissions rejected by validation, per field",
		},
		[]string{"field"},
	)

	leadsByTier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "leads_aging_tier",
			Help: "Number of leads in each aging tier at the last refresh",
		},
		[]string{"tier"},
	)

	overdueFollowups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "followups_overdue",
			Help: "Number of overdue follow-ups at the last refresh",
		},
	)

	remindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_reminders_total",
			Help: "Overdue follow-up reminders by channel and outcome",
		},
		[]string{"channel", "status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush repassa o flush para o writer original (necessário para SSE).
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/leads/{id}/aging) para não explodir a
// cardinalidade com um label por lead.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func RecordFollowupScheduled() {
	followupsScheduled.Inc()
}

func RecordFollowupRemoved() {
	followupsRemoved.Inc()
}

func RecordValidationRejection(field string) {
	validationRejections.WithLabelValues(field).Inc()
}

// SetTierCounts substitui a fotografia das faixas. Faixas ausentes vão a zero.
func SetTierCounts(counts map[string]int, tiers []string, overdue int) {
	for _, t := range tiers {
		leadsByTier.WithLabelValues(t).Set(float64(counts[t]))
	}
	overdueFollowups.Set(float64(overdue))
}

const (
	ReminderSent    = "sent"
	ReminderFailed  = "failed"
	ReminderSkipped = "skipped"
)

// RecordReminder conta um lembrete por canal; status é ReminderSent,
// ReminderFailed ou ReminderSkipped.
func RecordReminder(channel, status string) {
	remindersSent.WithLabelValues(channel, status).Inc()
}
