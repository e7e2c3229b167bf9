package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibin_discover/matching"
)

var _ matching.Observer = (*Metrics)(nil)

func TestMetrics_Counters(t *testing.T) {
	m := New(func() int { return 3 })

	m.CandidatesFetched("load", 10, nil, time.Millisecond)
	m.CandidatesFetched("refill", 0, errors.New("boom"), time.Millisecond)
	m.SwipeRecorded(true, nil, time.Millisecond)
	m.SwipeRecorded(false, errors.New("boom"), time.Millisecond)
	m.SwipeDeleted(nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("refill", "error")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.fetchedTotal.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swipes.WithLabelValues("like", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.swipes.WithLabelValues("dislike", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.undos.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.liveSessions))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.SwipeRecorded(true, nil, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `discover_swipes_total{decision="like",outcome="ok"} 1`)
	assert.Contains(t, w.Body.String(), "discover_sessions_live 0")
}
