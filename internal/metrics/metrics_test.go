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

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("POST", 10*time.Millisecond, nil)
	m.ObserveRequest("POST", 20*time.Millisecond, []string{"STORE_ERROR", "STORE_ERROR"})
	m.ObserveRequest("GET", time.Millisecond, []string{"TYPE_MISMATCH"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("POST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.failedRequests.WithLabelValues("STORE_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failedRequests.WithLabelValues("TYPE_MISMATCH")))
}

func TestObserveRebuild(t *testing.T) {
	m := New()

	m.ObserveRebuild(nil, 12, 3)
	m.ObserveRebuild(errors.New("boom"), 0, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.rebuilds.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rebuilds.WithLabelValues("failed")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.schemaTypes))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.storageTypes), "failed rebuild keeps last values")
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "worldgraph_graphql_requests")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_Independent(t *testing.T) {
	// Separate registries: constructing twice must not panic.
	a, b := New(), New()
	assert.NotSame(t, a.Registry(), b.Registry())
}
