package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	m := New()

	m.RecordOperation("createRole", OutcomeSuccess)
	m.RecordOperation("createRole", OutcomeSuccess)
	m.RecordOperation("createRole", "DuplicateError")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("createRole", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("createRole", "DuplicateError")))
}

func TestRecordDeniedAndCache(t *testing.T) {
	m := New()

	m.RecordDenied("user:delete")
	m.RecordCache("roles", true)
	m.RecordCache("roles", false)
	m.RecordCache("roles", false)
	m.RecordRevalidation("roles", "local")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthzDeniedTotal.WithLabelValues("user:delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("roles")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("roles")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RevalidationsTotal.WithLabelValues("roles", "local")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("x", OutcomeSuccess)
		m.RecordDenied("x")
		m.RecordCache("x", true)
		m.RecordRevalidation("x", "local")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordOperation("login", OutcomeSuccess)

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `mqk_operations_total{operation="login",outcome="success"} 1`))
}
