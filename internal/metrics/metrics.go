// Package metrics exposes Prometheus instrumentation for the survey bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// =============================================================================
// TELEGRAM
// =============================================================================

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_updates_total",
			Help: "Telegram updates received",
		},
		[]string{"kind"}, // callback, message, location, document, other
	)

	broadcastMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_broadcast_messages_total",
			Help: "Announcement messages handed to the sender",
		},
		[]string{"status"}, // queued, dropped
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kuaf_build_info",
			Help: "Build identity; the value is always 1",
		},
		[]string{"version", "commit"},
	)
)

// =============================================================================
// SURVEY
// =============================================================================

var (
	surveyTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_survey_transitions_total",
			Help: "Questionnaire transitions by source and target step",
		},
		[]string{"from", "to", "kind"}, // kind: answer, back, bind
	)

	surveyRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_survey_rejected_total",
			Help: "Inputs rejected by the answer collector",
		},
		[]string{"step"},
	)

	surveyCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_survey_completions_total",
			Help: "Completion attempts by outcome",
		},
		[]string{"status"}, // saved, duplicate, failed
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_search_total",
			Help: "Student searches by query kind and result",
		},
		[]string{"kind", "result"}, // result: found, not_found, error
	)

	subscriptionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_subscription_checks_total",
			Help: "Channel subscription checks by result",
		},
		[]string{"result"}, // member, not_member, skipped, error
	)
)

// =============================================================================
// STORAGE
// =============================================================================

var (
	storeQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_store_queries_total",
			Help: "Record store queries",
		},
		[]string{"op", "status"},
	)

	storeQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kuaf_store_query_duration_seconds",
			Help:    "Record store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"op"},
	)

	sessionOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_session_ops_total",
			Help: "Session store operations",
		},
		[]string{"op", "status"},
	)

	exchangeRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kuaf_exchange_rows_total",
			Help: "Spreadsheet rows processed",
		},
		[]string{"direction", "result"}, // import: added, updated, skipped, error; export: responses, students
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordUpdate counts one inbound update.
func RecordUpdate(kind string) {
	updatesTotal.WithLabelValues(kind).Inc()
}

// RecordBroadcast counts announcement messages by queue outcome.
func RecordBroadcast(status string, n int) {
	if n <= 0 {
		return
	}
	broadcastMessagesTotal.WithLabelValues(status).Add(float64(n))
}

// SetBuildInfo publishes the running build.
func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

// RecordTransition counts a move between two steps.
func RecordTransition(from, to, kind string) {
	surveyTransitionsTotal.WithLabelValues(from, to, kind).Inc()
}

// RecordRejected counts an input the current step did not accept.
func RecordRejected(step string) {
	surveyRejectedTotal.WithLabelValues(step).Inc()
}

// RecordCompletion counts a completion attempt.
func RecordCompletion(status string) {
	surveyCompletionsTotal.WithLabelValues(status).Inc()
}

// RecordSearch counts a student lookup.
func RecordSearch(kind, result string) {
	searchesTotal.WithLabelValues(kind, result).Inc()
}

// RecordSubscriptionCheck counts a channel membership check.
func RecordSubscriptionCheck(result string) {
	subscriptionChecksTotal.WithLabelValues(result).Inc()
}

// RecordStoreQuery matches the record store observer signature.
func RecordStoreQuery(op string, took time.Duration, err error) {
	storeQueriesTotal.WithLabelValues(op, status(err)).Inc()
	storeQueryDurationSeconds.WithLabelValues(op).Observe(took.Seconds())
}

// RecordSessionOp matches the session store observer signature.
func RecordSessionOp(op string, err error) {
	sessionOpsTotal.WithLabelValues(op, status(err)).Inc()
}

// RecordExchangeRows counts processed spreadsheet rows.
func RecordExchangeRows(direction, result string, n int) {
	if n <= 0 {
		return
	}
	exchangeRowsTotal.WithLabelValues(direction, result).Add(float64(n))
}
