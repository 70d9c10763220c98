package radar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"ticker":"NVDA","name":"NVIDIA Corporation","price":181.25,"ivRank":72.4,"skew":1.2,"putCallRatio":0.71,
   "strategy":"Income Generator","rationale":"High premiums available.","expiration":"2026-01-16","daysToExpiration":60,
   "optionRecommendations":[{"strike":190,"otmPercent":5,"premium":6.4,"optionYield":3.53,"annualizedYield":21.48,
   "upsidePercent":4.83,"daysToExpiration":60,"iv":47.2,"volume":1200,"openInterest":8800,"recommended":true}]},
  {"ticker":"KO","name":"Coca-Cola","price":69.1,"ivRank":40,"skew":-0.5,"putCallRatio":0.9,
   "strategy":"Neutral","rationale":"No edge.","expiration":"2026-01-16","daysToExpiration":60}
]`

func TestHTTPFetcher(t *testing.T) {
	var gotQuery, gotCacheControl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/market_data.json", 5*time.Second)
	f.now = func() time.Time { return time.UnixMilli(1762180200123) }

	records, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "NVDA", records[0].Ticker)
	require.Len(t, records[0].CoveredCalls, 1)
	assert.True(t, records[0].CoveredCalls[0].Recommended)

	assert.Equal(t, "1762180200123", gotQuery)
	assert.Equal(t, "no-cache", gotCacheControl)
}

func TestHTTPFetcherNonceWithExistingQuery(t *testing.T) {
	f := NewHTTPFetcher("http://example.test/data.json?v=2", time.Second)
	f.now = func() time.Time { return time.UnixMilli(42) }
	assert.Equal(t, "http://example.test/data.json?v=2&42", f.requestURL())
}

func TestHTTPFetcherFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"not found", http.StatusNotFound, "missing", "unexpected status 404"},
		{"server error", http.StatusInternalServerError, "", "unexpected status 500"},
		{"malformed json", http.StatusOK, "<html>oops</html>", "failed to decode"},
		{"trailing garbage", http.StatusOK,
			`[{"ticker":"AAPL","name":"Apple Inc","price":190,"ivRank":30,"strategy":"Neutral"}] <html>truncated`, "trailing data"},
		{"second document", http.StatusOK, `[] []`, "trailing data"},
		{"mismatched recommendations", http.StatusOK,
			`[{"ticker":"WMT","strategy":"Cheap Protection","optionRecommendations":{"bad":true}}]`, "invalid collar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	f, err := NewFetcher("file://"+path, time.Second)
	require.NoError(t, err)
	require.IsType(t, &FileFetcher{}, f)
	assert.Equal(t, "file://"+path, f.Source())

	records, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = NewFileFetcher(filepath.Join(t.TempDir(), "absent.json")).Fetch(context.Background())
	assert.Error(t, err)
}

func TestNewFetcher(t *testing.T) {
	f, err := NewFetcher("http://localhost:3000/market_data.json", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	_, err = NewFetcher("ftp://example.test/data.json", time.Second)
	assert.Error(t, err)
}

func TestControllerWithHTTPFetcherFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewController(NewHTTPFetcher(srv.URL, time.Second))
	require.NoError(t, c.Activate(context.Background()))

	assert.Equal(t, StateReady, c.State())
	assert.Empty(t, c.Records())
	assert.Contains(t, c.Status().LastError, "unexpected status 502")
}
