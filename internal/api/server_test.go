package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/internal/metrics"
	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		DataDir:     filepath.Join(t.TempDir(), "data"),
		Retention:   contract.DefaultRetention,
		FreshWindow: contract.DefaultFreshWindow,
		Sort:        schema.SortNovelty,
	}
}

func seedData(t *testing.T, cfg *contract.Config) {
	t.Helper()
	rounds := [][]schema.Entity{
		{{Name: "AI Agents", Score: 6}, {Name: "Restaking", Score: 7}},
		{{Name: "AI Agents", Score: 8}, {Name: "Restaking", Score: 4}, {Name: "DePIN", Score: 5}},
	}
	for i, entities := range rounds {
		stamp := base.Add(time.Duration(i) * time.Hour)
		store := history.NewStore(cfg.HistoryPath(), history.WithClock(func() time.Time { return stamp }))
		_, err := store.Append(entities, nil)
		require.NoError(t, err)
	}
	require.NoError(t, contract.WriteJSONAtomic(cfg.NarrativesPath(), []schema.Narrative{
		{Name: "Restaking", NoveltyScore: 4},
		{Name: "AI Agents", NoveltyScore: 8},
		{Name: "DePIN", NoveltyScore: 5},
	}))
	require.NoError(t, contract.WriteJSONAtomic(cfg.IdeasPath(), []schema.IdeaSet{
		{NarrativeName: "AI Agents", Ideas: []schema.Idea{{Title: "Agent wallet"}}},
	}))
	require.NoError(t, contract.WriteJSONAtomic(cfg.SignalsPath(), schema.SignalReport{
		Timestamp:        base,
		SignalCounts:     map[string]int{"github": 15},
		NarrativesCount:  3,
		GenerationMethod: "rules",
	}))
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	s := NewServer(newTestConfig(t), nil)
	rec := do(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	info := decode[rootInfo](t, rec)
	assert.Equal(t, "SignalVane API", info.Name)
	assert.Contains(t, info.Endpoints, "/trends")
}

func TestNarratives(t *testing.T) {
	cfg := newTestConfig(t)
	seedData(t, cfg)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/narratives")
	require.Equal(t, http.StatusOK, rec.Code)
	narratives := decode[[]schema.Narrative](t, rec)
	require.Len(t, narratives, 3)
	assert.Equal(t, "AI Agents", narratives[0].Name)
	assert.Equal(t, schema.TrendRising, narratives[0].Trend)

	rec = do(t, s, http.MethodGet, "/narratives?sort_by=alphabetical&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	narratives = decode[[]schema.Narrative](t, rec)
	require.Len(t, narratives, 2)
	assert.Equal(t, "DePIN", narratives[1].Name)

	rec = do(t, s, http.MethodGet, "/narratives?sort_by=none")
	narratives = decode[[]schema.Narrative](t, rec)
	assert.Equal(t, "Restaking", narratives[0].Name, "none keeps artifact order")

	rec = do(t, s, http.MethodGet, "/narratives?trend=falling")
	narratives = decode[[]schema.Narrative](t, rec)
	require.Len(t, narratives, 1)
	assert.Equal(t, "Restaking", narratives[0].Name)

	rec = do(t, s, http.MethodGet, "/narratives?sort_by=sideways")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/narratives?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNarrative(t *testing.T) {
	cfg := newTestConfig(t)
	seedData(t, cfg)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/narratives/ai%20agents")
	require.Equal(t, http.StatusOK, rec.Code)
	n := decode[schema.Narrative](t, rec)
	assert.Equal(t, "AI Agents", n.Name)
	assert.Equal(t, schema.TrendRising, n.Trend)

	rec = do(t, s, http.MethodGet, "/narratives/Unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Detail, "Unknown")
}

func TestNarratives_MissingArtifact(t *testing.T) {
	s := NewServer(newTestConfig(t), nil)
	rec := do(t, s, http.MethodGet, "/narratives")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Detail, "narratives.json")
}

func TestTrends(t *testing.T) {
	cfg := newTestConfig(t)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/trends")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]schema.Trend](t, rec))

	seedData(t, cfg)
	rec = do(t, s, http.MethodGet, "/trends")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]schema.Trend{
		"AI Agents": schema.TrendRising,
		"Restaking": schema.TrendFalling,
		"DePIN":     schema.TrendNew,
	}, decode[map[string]schema.Trend](t, rec))
}

func TestTrends_CorruptHistory(t *testing.T) {
	cfg := newTestConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	require.NoError(t, os.WriteFile(cfg.HistoryPath(), []byte("{not json"), 0o644))

	rec := do(t, NewServer(cfg, nil), http.MethodGet, "/trends")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Detail, "corrupt")
}

func TestIdeas(t *testing.T) {
	cfg := newTestConfig(t)
	seedData(t, cfg)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/ideas?narrative_name=AI%20AGENTS")
	require.Equal(t, http.StatusOK, rec.Code)
	sets := decode[[]schema.IdeaSet](t, rec)
	require.Len(t, sets, 1)
	assert.Equal(t, "Agent wallet", sets[0].Ideas[0].Title)

	rec = do(t, s, http.MethodGet, "/ideas?narrative_name=DePIN")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotAndHistory(t *testing.T) {
	cfg := newTestConfig(t)
	seedData(t, cfg)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[schema.SignalReport](t, rec)
	assert.Equal(t, 3, report.NarrativesCount)

	rec = do(t, s, http.MethodGet, "/history/Restaking")
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[schema.EntityHistory](t, rec)
	assert.Equal(t, schema.TrendFalling, h.Trend)
	assert.Len(t, h.Points, 2)

	rec = do(t, s, http.MethodGet, "/history/Nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefresh(t *testing.T) {
	cfg := newTestConfig(t)
	var got *contract.Config
	s := NewServer(cfg, nil, WithRefreshFunc(func(_ context.Context, c *contract.Config) (schema.RefreshOutcome, error) {
		got = c
		return schema.RefreshOutcome{
			Refreshed:  true,
			Reason:     "forced refresh",
			State:      schema.RefreshState{LastRefresh: base, Known: true},
			Narratives: 3,
		}, nil
	}))

	rec := do(t, s, http.MethodPost, "/refresh?regenerate=true")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[refreshResponse](t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.True(t, resp.Regenerated)
	require.NotNil(t, resp.Timestamp)
	assert.True(t, base.Equal(*resp.Timestamp))

	require.NotNil(t, got)
	assert.True(t, got.Force, "the API forces a refresh by default")
	assert.True(t, got.GenerateIdeas)
	assert.False(t, cfg.Force, "the base config is never mutated")

	rec = do(t, s, http.MethodPost, "/refresh?force=false")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.Force)
	assert.False(t, got.GenerateIdeas)

	rec = do(t, s, http.MethodPost, "/refresh?force=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/refresh")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRefresh_Failure(t *testing.T) {
	s := NewServer(newTestConfig(t), nil, WithRefreshFunc(func(context.Context, *contract.Config) (schema.RefreshOutcome, error) {
		return schema.RefreshOutcome{}, errors.New("github unavailable")
	}))

	rec := do(t, s, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "refresh error: github unavailable", decode[errorBody](t, rec).Detail)
}

func TestRefresh_Skipped(t *testing.T) {
	s := NewServer(newTestConfig(t), nil, WithRefreshFunc(func(context.Context, *contract.Config) (schema.RefreshOutcome, error) {
		return schema.RefreshOutcome{Reason: "using cached data (last refresh 2 min ago)"}, nil
	}))

	rec := do(t, s, http.MethodPost, "/refresh?force=no&regenerate=yes")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[refreshResponse](t, rec)
	assert.False(t, resp.Refreshed)
	assert.False(t, resp.Regenerated)
	assert.Nil(t, resp.Timestamp)
	assert.Contains(t, resp.Message, "skipped")
}

func TestHealth(t *testing.T) {
	cfg := newTestConfig(t)
	s := NewServer(cfg, nil)

	rec := do(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Nil(t, body["data_age_minutes"])
	assert.Equal(t, false, body["data_fresh"])

	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	require.NoError(t, os.WriteFile(cfg.MarkerPath(), []byte(time.Now().UTC().Format(time.RFC3339Nano)), 0o644))
	rec = do(t, s, http.MethodGet, "/health")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["data_fresh"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))
	s := NewServer(newTestConfig(t), nil, WithGatherer(reg))

	rec := do(t, s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signalvane_refresh_seconds")
	assert.Contains(t, rec.Body.String(), "signalvane_narratives")
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, NewServer(newTestConfig(t), nil), http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[errorBody](t, rec).Detail)
}
