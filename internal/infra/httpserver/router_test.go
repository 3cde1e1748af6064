package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalysis "github.com/bryanwahyu/aio-strategy/internal/application/analysis"
	domain "github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
	"github.com/bryanwahyu/aio-strategy/internal/infra/db/memory"
	"github.com/bryanwahyu/aio-strategy/internal/middleware"
)

type stubCompletion struct {
	text  string
	err   error
	calls int
}

func (s *stubCompletion) Generate(ctx context.Context, _ string) (string, error) {
	s.calls++
	if s.err == context.DeadlineExceeded {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) *domain.Caller {
	switch token {
	case "alice":
		return &domain.Caller{Subject: "u-alice", Email: "alice@example.com"}
	case "bob":
		return &domain.Caller{Subject: "u-bob"}
	}
	return nil
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func setup(t *testing.T, comp *stubCompletion) (http.Handler, *memory.AnalysisRepository) {
	t.Helper()
	log, _ := test.NewNullLogger()
	store := memory.NewAnalysisRepository()
	svc := &appanalysis.Service{
		Store:      store,
		Completion: comp,
		Verifier:   stubVerifier{},
		Log:        log,
		Timeout:    50 * time.Millisecond,
	}
	h := NewRouter(Options{
		Service:  svc,
		Metrics:  middleware.NewMetrics(),
		Checkers: map[string]middleware.HealthChecker{"store": store},
		Ready:    store,
		Log:      log,
	})
	return h, store
}

func do(t *testing.T, h http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestAnalyzeSuccess(t *testing.T) {
	h, store := setup(t, &stubCompletion{text: "## Overview"})

	w, env := do(t, h, http.MethodPost, "/analyze", "alice", `{"brandName":"Acme","goal":"visibility"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var data struct{ ID, Result string }
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "## Overview", data.Result)

	rec, err := store.GetByID(context.Background(), data.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "u-alice", rec.OwnerID)
}

func TestAnalyzeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		comp   *stubCompletion
		token  string
		body   string
		status int
		code   string
		calls  int
	}{
		{"empty brand", &stubCompletion{text: "x"}, "alice", `{"brandName":" "}`, http.StatusBadRequest, CodeValidation, 0},
		{"bad json", &stubCompletion{text: "x"}, "alice", `{`, http.StatusBadRequest, CodeValidation, 0},
		{"no token", &stubCompletion{text: "x"}, "", `{"brandName":"Acme"}`, http.StatusUnauthorized, CodeUnauthorized, 0},
		{"bad token", &stubCompletion{text: "x"}, "mallory", `{"brandName":"Acme"}`, http.StatusUnauthorized, CodeUnauthorized, 0},
		{"no api key", &stubCompletion{err: domain.Configuration("GEMINI_API_KEY is not set")}, "alice", `{"brandName":"Acme"}`, http.StatusInternalServerError, CodeConfiguration, 1},
		{"upstream", &stubCompletion{err: domain.UpstreamMessage("quota exceeded")}, "alice", `{"brandName":"Acme"}`, http.StatusInternalServerError, CodeUpstream, 1},
		{"empty text", &stubCompletion{text: ""}, "alice", `{"brandName":"Acme"}`, http.StatusInternalServerError, CodeUpstream, 1},
		{"timeout", &stubCompletion{err: context.DeadlineExceeded}, "alice", `{"brandName":"Acme"}`, http.StatusGatewayTimeout, CodeTimeout, 1},
		{"unexpected", &stubCompletion{err: errors.New("boom")}, "alice", `{"brandName":"Acme"}`, http.StatusInternalServerError, CodeInternal, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setup(t, tt.comp)

			w, env := do(t, h, http.MethodPost, "/analyze", tt.token, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
			assert.NotEmpty(t, env.Error)
			assert.Equal(t, tt.calls, tt.comp.calls)
		})
	}
}

func TestConfigurationErrorIsGeneric(t *testing.T) {
	h, _ := setup(t, &stubCompletion{err: domain.Configuration("GEMINI_API_KEY is not set")})

	_, env := do(t, h, http.MethodPost, "/analyze", "alice", `{"brandName":"Acme"}`)

	assert.NotContains(t, env.Error, "GEMINI_API_KEY")
}

func TestGetAnalysis(t *testing.T) {
	h, store := setup(t, &stubCompletion{})
	require.NoError(t, store.Save(context.Background(), &domain.Record{
		ID: "analysis_1_abc", OwnerID: "u-alice", Result: "r", Input: domain.Input{BrandName: "Acme"},
	}))

	w, env := do(t, h, http.MethodGet, "/analysis/analysis_1_abc", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rec domain.Record
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "Acme", rec.Input.BrandName)

	w, env = do(t, h, http.MethodGet, "/analysis/analysis_2_missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, env.Code)
}

func TestHistory(t *testing.T) {
	h, store := setup(t, &stubCompletion{})
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.Record{ID: "a1", OwnerID: "u-alice", CreatedAt: base}))
	require.NoError(t, store.Save(ctx, &domain.Record{ID: "a2", OwnerID: "u-alice", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, &domain.Record{ID: "b1", OwnerID: "u-bob", CreatedAt: base}))

	w, env := do(t, h, http.MethodGet, "/history?limit=5", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		Analyses []domain.Record `json:"analyses"`
		Total    int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 2, data.Total)
	require.Len(t, data.Analyses, 2)
	assert.Equal(t, "a2", data.Analyses[0].ID)
	assert.Equal(t, "a1", data.Analyses[1].ID)

	w, env = do(t, h, http.MethodGet, "/history?limit=5&offset=1", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Total)
	require.Len(t, data.Analyses, 1)
	assert.Equal(t, "a1", data.Analyses[0].ID)

	w, env = do(t, h, http.MethodGet, "/history", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthorized, env.Code)
}

func TestPreflightAlwaysOK(t *testing.T) {
	h, _ := setup(t, &stubCompletion{})

	for _, path := range []string{"/analyze", "/history", "/anything/else"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type, Authorization")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
	}

	// no CORS request headers at all
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/analyze", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	h, _ := setup(t, &stubCompletion{})

	for _, path := range []string{"/health", "/healthz/live", "/healthz/ready", "/metrics"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
