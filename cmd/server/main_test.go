package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentscout/interview/internal/config"
	"talentscout/interview/internal/handlers"
	"talentscout/interview/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		LogLevel:              "error",
		SessionStore:          config.StoreGorm,
		SQLitePath:            fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano()),
		LockMode:              "queue",
		LockTTL:               time.Minute,
		Interviewer:           config.InterviewerScripted,
		Judge:                 config.JudgeHeuristic,
		AdvancePolicy:         "fixed",
		AnswersPerPhase:       1,
		CollaboratorTimeout:   time.Second,
		AdminPassword:         "hunter2",
		JWTSecret:             "secret",
		TokenTTL:              time.Hour,
		ScoreBackfillSchedule: "off",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	a, err := buildApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	srv := httptest.NewServer(a.router)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv
}

func call(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

const startBody = `{"candidate":{"name":"Grace Hopper","email":"grace@example.com","experience":12,"position":"Backend Engineer","tech_stack":["Go","PostgreSQL"]}}`

func TestInterviewEndToEnd(t *testing.T) {
	srv := newTestApp(t, testConfig())

	resp := call(t, http.MethodPost, srv.URL+"/interviews/start", "", startBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	start := decodeBody[models.StartInterviewResponse](t, resp)
	require.NotEmpty(t, start.InterviewID)
	assert.Equal(t, models.PhaseTechnical, start.CurrentStep)

	var last models.MessageResponse
	for i := 0; i < 4; i++ {
		body := `{"content":"I designed a Go service with PostgreSQL, measured latency, and fixed a slow query with an index."}`
		resp := call(t, http.MethodPost, srv.URL+"/interviews/"+start.InterviewID+"/message", "", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		last = decodeBody[models.MessageResponse](t, resp)
	}
	assert.Equal(t, models.PhaseCompleted, last.CurrentStep)

	resp = call(t, http.MethodGet, srv.URL+"/interviews/"+start.InterviewID+"/status", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decodeBody[models.StatusResponse](t, resp)
	assert.True(t, status.Completed)
	assert.Equal(t, "Grace Hopper", status.CandidateName)

	resp = call(t, http.MethodGet, srv.URL+"/interviews/"+start.InterviewID+"/scores", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/interviews/"+start.InterviewID+"/report", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, http.MethodPost, srv.URL+"/auth/login", "", `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[models.LoginResponse](t, resp)
	require.NotEmpty(t, login.AccessToken)

	resp = call(t, http.MethodGet, srv.URL+"/interviews/"+start.InterviewID+"/scores", login.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scores := decodeBody[[]models.ScoreEntry](t, resp)
	assert.Len(t, scores, 4)

	resp = call(t, http.MethodGet, srv.URL+"/interviews/"+start.InterviewID+"/report", login.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/candidates/stats/summary", login.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[models.CandidateStats](t, resp)
	assert.Equal(t, 1, stats.TotalCandidates)
	assert.Equal(t, 1, stats.CompletedInterviews)

	resp = call(t, http.MethodGet, srv.URL+"/resumes/keywords", login.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, http.MethodGet, srv.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyzWithRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()
	srv := newTestApp(t, cfg)

	resp := call(t, http.MethodGet, srv.URL+"/readyz", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ready := decodeBody[handlers.ReadinessResponse](t, resp)
	assert.Equal(t, "ready", ready.Status)
	for _, name := range []string{"store", "redis", "resume_store"} {
		assert.Equal(t, "ok", ready.Checks[name].Status, name)
	}
}

func TestBuildAppMemoryStore(t *testing.T) {
	cfg := testConfig()
	cfg.SessionStore = config.StoreMemory
	srv := newTestApp(t, cfg)

	resp := call(t, http.MethodPost, srv.URL+"/interviews/start", "", startBody)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestBuildAppFailures(t *testing.T) {
	t.Run("unreachable redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig()
		cfg.RedisAddr = addr
		_, err := buildApp(context.Background(), cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("gemini without api key", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "")
		cfg := testConfig()
		cfg.Judge = config.ProviderGemini
		_, err := buildApp(context.Background(), cfg, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("empty jwt secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecret = ""
		_, err := buildApp(context.Background(), cfg, zap.NewNop())
		assert.Error(t, err)
	})
}
