package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountDomainEvents(t *testing.T) {
	m := NewMetrics()

	m.RecordAccessDenied("unauthorized")
	m.RecordAccessDenied("unauthorized")
	m.RecordAccessDenied("not_approved")
	m.RecordAutoExpiration()
	m.RecordAuditEntry("Grant Admin")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accessDenied.WithLabelValues("unauthorized")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.accessDenied.WithLabelValues("not_approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.autoExpirations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditEntries.WithLabelValues("Grant Admin")))
}

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/v1/me/role", "GET", 200, time.Millisecond)
		m.RecordError("/v1/me/role", "GET", "UNAUTHORIZED")
		m.RecordAccessDenied("unauthorized")
		m.RecordAutoExpiration()
		m.RecordAuditEntry("Revoke Admin")
	})
}

func TestMetricsHandlerExposesRequests(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/v1/admins", "GET", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/v1/admins",status="200"} 1`), body)
}
