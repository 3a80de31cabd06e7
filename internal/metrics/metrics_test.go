package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	Register(registry)

	before := testutil.ToFloat64(rollbacksTotal.WithLabelValues("Contact", "success"))
	IncRollback("Contact", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(rollbacksTotal.WithLabelValues("Contact", "success")))

	IncAuditRecorded()
	IncAuditFailed()
	IncTrailRecorded("Deal")
	IncTrailFailed("Deal")
	SetActiveTrails(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(activeTrails))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(registry).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "crm_rollbacks_total"))
	assert.True(t, strings.Contains(body, "crm_decision_trails_active 7"))
}
