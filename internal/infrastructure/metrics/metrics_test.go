package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CycleFinished(OutcomeDelivered)
	m.CycleFinished(OutcomeDelivered)
	m.CycleFinished(OutcomeFailed)
	m.NotificationSent("status")
	m.ErrorObserved("transport", false)
	m.ErrorObserved("transport", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeDelivered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("status")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues("transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuppressedErrors))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CycleFinished(OutcomeSkipped)
		m.NotificationSent("error")
		m.ErrorObserved("schema", true)
		m.ObserveAPIRequest(time.Second, errors.New("x"))
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveAPIRequest(50*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "homework_bot_api_request_duration_seconds_count"))
}
