package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(surveyTransitionsTotal.WithLabelValues("q1_phone", "q2_address", "answer"))
	RecordTransition("q1_phone", "q2_address", "answer")
	RecordTransition("q1_phone", "q2_address", "answer")
	after := testutil.ToFloat64(surveyTransitionsTotal.WithLabelValues("q1_phone", "q2_address", "answer"))
	assert.Equal(t, before+2, after)
}

func TestRecordCompletion(t *testing.T) {
	for _, status := range []string{"saved", "duplicate", "failed"} {
		t.Run(status, func(t *testing.T) {
			before := testutil.ToFloat64(surveyCompletionsTotal.WithLabelValues(status))
			RecordCompletion(status)
			assert.Equal(t, before+1, testutil.ToFloat64(surveyCompletionsTotal.WithLabelValues(status)))
		})
	}
}

func TestRecordStoreQuery(t *testing.T) {
	RecordStoreQuery("insert_survey", 12*time.Millisecond, nil)
	RecordStoreQuery("insert_survey", 3*time.Millisecond, errors.New("conn reset"))

	assert.GreaterOrEqual(t, testutil.ToFloat64(storeQueriesTotal.WithLabelValues("insert_survey", StatusOK)), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(storeQueriesTotal.WithLabelValues("insert_survey", StatusError)), 1.0)
	assert.Equal(t, 1, testutil.CollectAndCount(storeQueryDurationSeconds))
}

func TestRecordSessionOp(t *testing.T) {
	before := testutil.ToFloat64(sessionOpsTotal.WithLabelValues("merge", StatusError))
	RecordSessionOp("merge", errors.New("redis down"))
	assert.Equal(t, before+1, testutil.ToFloat64(sessionOpsTotal.WithLabelValues("merge", StatusError)))
}

func TestCountersIgnoreNonPositive(t *testing.T) {
	before := testutil.ToFloat64(exchangeRowsTotal.WithLabelValues("import", "added"))
	RecordExchangeRows("import", "added", 0)
	RecordExchangeRows("import", "added", -3)
	RecordExchangeRows("import", "added", 4)
	assert.Equal(t, before+4, testutil.ToFloat64(exchangeRowsTotal.WithLabelValues("import", "added")))

	qBefore := testutil.ToFloat64(broadcastMessagesTotal.WithLabelValues("queued"))
	RecordBroadcast("queued", 0)
	RecordBroadcast("queued", 5)
	assert.Equal(t, qBefore+5, testutil.ToFloat64(broadcastMessagesTotal.WithLabelValues("queued")))
}

func TestSimpleCounters(t *testing.T) {
	RecordUpdate("callback")
	RecordRejected("q3_location")
	RecordSearch("passport", "found")
	RecordSubscriptionCheck("error")
	SetBuildInfo("dev", "local")

	assert.GreaterOrEqual(t, testutil.ToFloat64(updatesTotal.WithLabelValues("callback")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(surveyRejectedTotal.WithLabelValues("q3_location")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(searchesTotal.WithLabelValues("passport", "found")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(subscriptionChecksTotal.WithLabelValues("error")), 1.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(buildInfo.WithLabelValues("dev", "local")))
}
