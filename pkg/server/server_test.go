package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elonfeng/repradar/internal/store"
	"github.com/elonfeng/repradar/pkg/report"
	"github.com/elonfeng/repradar/pkg/serp"
	"github.com/elonfeng/repradar/pkg/server"
)

type stubProvider struct {
	results []serp.RawResult
	err     error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Fetch(ctx context.Context, keyword string) ([]serp.RawResult, error) {
	return s.results, s.err
}

func newTestServer(t *testing.T, provider *stubProvider) http.Handler {
	t.Helper()

	db, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tracker := report.NewTracker(provider, db, report.Scorer{Policy: report.PolicyWeighted}, 0)
	return server.New(tracker, db, 0).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) report.KeywordReport {
	t.Helper()
	var rep report.KeywordReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	return rep
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &stubProvider{})
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrackAndReport(t *testing.T) {
	provider := &stubProvider{results: []serp.RawResult{
		{Rank: 1, Title: "A", URL: "https://a.com"},
		{Rank: 2, Title: "B", URL: "https://b.com"},
	}}
	h := newTestServer(t, provider)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "jane doe"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rep := decodeReport(t, rec)
	assert.Equal(t, "jane doe", rep.Keyword)
	assert.Len(t, rep.Results, 2)
	assert.Equal(t, 50, rep.Score)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/report?keyword=jane+doe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rep = decodeReport(t, rec)
	assert.Len(t, rep.Results, 2)
}

func TestTrack_MissingKeyword(t *testing.T) {
	h := newTestServer(t, &stubProvider{})
	rec := doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrack_ProviderFailure(t *testing.T) {
	h := newTestServer(t, &stubProvider{err: errors.New("quota exceeded")})
	rec := doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "jane doe"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReport_UnknownKeyword(t *testing.T) {
	h := newTestServer(t, &stubProvider{})
	rec := doJSON(t, h, http.MethodGet, "/api/v1/report?keyword=nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSentimentEdit(t *testing.T) {
	provider := &stubProvider{results: []serp.RawResult{
		{Rank: 1, URL: "https://a.com"},
		{Rank: 2, URL: "https://b.com"},
	}}
	h := newTestServer(t, provider)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "acme"})
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decodeReport(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sentiment", map[string]string{
		"keyword":   "acme",
		"id":        rep.Results[0].ID,
		"sentiment": "negative",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	edited := decodeReport(t, rec)
	assert.Equal(t, report.SentimentNegative, edited.Results[0].Sentiment)
	assert.Less(t, edited.Score, rep.Score)
}

func TestSentimentEdit_InvalidLabel(t *testing.T) {
	h := newTestServer(t, &stubProvider{})
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sentiment", map[string]string{
		"keyword":   "acme",
		"id":        "x",
		"sentiment": "meh",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestControlToggle(t *testing.T) {
	provider := &stubProvider{results: []serp.RawResult{{Rank: 1, URL: "https://a.com"}}}
	h := newTestServer(t, provider)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "acme"})
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decodeReport(t, rec)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/control", map[string]string{
		"keyword": "acme",
		"id":      rep.Results[0].ID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeReport(t, rec).Results[0].HasControl)
}

func TestKeywords(t *testing.T) {
	provider := &stubProvider{results: []serp.RawResult{{Rank: 1, URL: "https://a.com"}}}
	h := newTestServer(t, provider)

	doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "acme"})
	doJSON(t, h, http.MethodPost, "/api/v1/track", map[string]string{"keyword": "jane doe"})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/keywords", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []string `json:"data"`
		Count int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, []string{"acme", "jane doe"}, resp.Data)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &stubProvider{})

	rec := doJSON(t, h, http.MethodGet, "/api/v1/track", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/report", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
