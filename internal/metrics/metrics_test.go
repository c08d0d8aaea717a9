package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FolderMove("moved")
	m.FolderMove("moved")
	m.FolderMove("cycle")
	m.EventDropped("folder-updated")
	m.AIRequest("recognize", nil)
	m.AIRequest("recognize", errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `belongings_folder_moves_total{outcome="moved"} 2`)
	assert.Contains(t, body, `belongings_folder_moves_total{outcome="cycle"} 1`)
	assert.Contains(t, body, `belongings_events_dropped_total{type="folder-updated"} 1`)
	assert.Contains(t, body, `belongings_ai_requests_total{operation="recognize",result="error"} 1`)
	assert.Contains(t, body, `belongings_ai_requests_total{operation="recognize",result="ok"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.FolderMove("moved")
	m.EventDropped("x")
	m.AIRequest("price", nil)
	m.ObserveRequest("GET /health", "GET", 200, time.Millisecond)
}

func TestMetrics_ObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("PATCH /api/folders/{id}", http.MethodPatch, http.StatusConflict, 5*time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `belongings_http_requests_total{method="PATCH",route="PATCH /api/folders/{id}",status="409"} 1`)
	assert.Contains(t, body, `belongings_http_request_duration_seconds_count{method="PATCH",route="PATCH /api/folders/{id}"} 1`)
}
