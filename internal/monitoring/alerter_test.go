package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sentiment-cli/internal/config"
	"github.com/sells-group/sentiment-cli/internal/model"
)

func TestAlerter_Evaluate_NoAlerts(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10})

	snap := &MetricsSnapshot{
		Total:    100,
		Done:     95,
		Failed:   5,
		FailRate: 0.05,
		ByKind: map[model.RunKind]*KindMetrics{
			model.RunKindNews: {Total: 95, Done: 95, Rows: 900},
		},
		LookbackHours: 24,
	}

	assert.Empty(t, a.Evaluate(snap))
}

func TestAlerter_Evaluate_FailureRate(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10})

	snap := &MetricsSnapshot{
		Total:         20,
		Done:          12,
		Failed:        8,
		FailRate:      0.4,
		LookbackHours: 24,
	}

	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFailureRate, alerts[0].Type)
	assert.Equal(t, "high", alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "40.0%")
}

func TestAlerter_Evaluate_MinimumRunsRequired(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10})

	// Only 3 finished runs, below the minimum for a failure rate alert.
	snap := &MetricsSnapshot{
		Total:         3,
		Done:          1,
		Failed:        2,
		FailRate:      0.666,
		LookbackHours: 24,
	}

	assert.Empty(t, a.Evaluate(snap))
}

func TestAlerter_Evaluate_StaleRuns(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10, StaleAfterMins: 90})

	alerts := a.Evaluate(&MetricsSnapshot{InFlight: 3, Stale: 2, LookbackHours: 24})
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertStaleRuns, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "2 run(s)")
	assert.Contains(t, alerts[0].Message, "90m")
}

func TestAlerter_Evaluate_EmptyRuns(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10})

	snap := &MetricsSnapshot{
		Total: 11,
		Done:  11,
		Empty: 6,
		ByKind: map[model.RunKind]*KindMetrics{
			model.RunKindSocial: {Total: 6, Done: 6, Empty: 6},
			model.RunKindNews:   {Total: 5, Done: 5, Empty: 0, Rows: 50},
		},
		LookbackHours: 24,
	}

	alerts := a.Evaluate(snap)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertEmptyRuns, alerts[0].Type)
	assert.Contains(t, alerts[0].Message, "All 6 social run(s)")
}

func TestAlerter_Evaluate_MultipleAlerts(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{FailureRateThreshold: 0.10, StaleAfterMins: 60})

	snap := &MetricsSnapshot{
		Total:    26,
		Done:     10,
		Failed:   10,
		InFlight: 6,
		Stale:    1,
		FailRate: 0.5,
		ByKind: map[model.RunKind]*KindMetrics{
			model.RunKindScore: {Total: 10, Done: 10, Empty: 10},
		},
		LookbackHours: 24,
	}

	alerts := a.Evaluate(snap)
	assert.Len(t, alerts, 3)

	types := make(map[AlertType]bool)
	for _, a := range alerts {
		types[a.Type] = true
	}
	assert.True(t, types[AlertFailureRate])
	assert.True(t, types[AlertStaleRuns])
	assert.True(t, types[AlertEmptyRuns])
}

func TestAlerter_SendAlerts_Webhook(t *testing.T) {
	var received atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var alert Alert
		err := json.NewDecoder(r.Body).Decode(&alert)
		require.NoError(t, err)
		assert.NotEmpty(t, alert.Type)
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: ts.URL})

	alerts := []Alert{
		{Type: AlertFailureRate, Severity: "high", Message: "test alert 1"},
		{Type: AlertStaleRuns, Severity: "medium", Message: "test alert 2"},
	}

	sent := a.SendAlerts(context.Background(), alerts)
	assert.Equal(t, 2, sent)
	assert.Equal(t, int32(2), received.Load())
}

func TestAlerter_SendAlerts_EmptyURL(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{})

	sent := a.SendAlerts(context.Background(), []Alert{
		{Type: AlertFailureRate, Message: "test"},
	})
	assert.Equal(t, 0, sent)
}

func TestAlerter_SendAlerts_EmptyAlerts(t *testing.T) {
	a := NewAlerter(config.MonitoringConfig{WebhookURL: "http://example.com"})

	assert.Equal(t, 0, a.SendAlerts(context.Background(), nil))
}

func TestAlerter_SendAlerts_WebhookError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	a := NewAlerter(config.MonitoringConfig{WebhookURL: ts.URL})

	sent := a.SendAlerts(context.Background(), []Alert{{Type: AlertFailureRate, Message: "test"}})
	assert.Equal(t, 0, sent)
}
