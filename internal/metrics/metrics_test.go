package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/interviews/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/interviews/"+id+"/status", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	count := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/interviews/{id}/status", "418"))
	assert.Equal(t, 2.0, count)
}

func TestMiddlewareUnmatchedRoute(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	count := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "unmatched", "200"))
	assert.GreaterOrEqual(t, count, 1.0)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(interviewsStarted)
	RecordInterviewStarted()
	assert.Equal(t, before+1, testutil.ToFloat64(interviewsStarted))

	RecordMessage(ResultReplayed)
	assert.GreaterOrEqual(t, testutil.ToFloat64(interviewMessages.WithLabelValues(ResultReplayed)), 1.0)

	RecordPhaseTransition("technical", "project")
	assert.GreaterOrEqual(t, testutil.ToFloat64(phaseTransitions.WithLabelValues("technical", "project")), 1.0)

	RecordCollaboratorCall("interviewer", ResultTimeout, 20*time.Millisecond)
	assert.GreaterOrEqual(t, testutil.ToFloat64(collaboratorCalls.WithLabelValues("interviewer", ResultTimeout)), 1.0)

	RecordScoring(ResultPartial)
	RecordResumeAnalysis(ResultOK)
	assert.GreaterOrEqual(t, testutil.ToFloat64(scoringRuns.WithLabelValues(ResultPartial)), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(resumeAnalyses.WithLabelValues(ResultOK)), 1.0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordInterviewStarted()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "talentscout_interviews_started_total"))
}
