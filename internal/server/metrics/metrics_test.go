package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRegistration(t *testing.T) {
	c := New()

	c.ObserveRegistration(nil)
	c.ObserveRegistration(nil)
	c.ObserveRegistration(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.registrations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registrations.WithLabelValues("error")))
}

func TestObserveHTTPAndReport(t *testing.T) {
	c := New()

	c.ObserveHTTP("GET", "/api/reports/{report}", 200, 10*time.Millisecond)
	c.ObserveReport("monthly_revenue", 5*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/reports/{report}", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.reportDuration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	c := New()
	c.ObserveRegistration(nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `subdash_registrations_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
