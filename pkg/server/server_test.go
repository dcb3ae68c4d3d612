package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/celltower/pkg/celltower"
	"github.com/matzehuels/celltower/pkg/declutter"
	"github.com/matzehuels/celltower/pkg/geo"
	"github.com/matzehuels/celltower/pkg/pipeline"
)

func testResult() *pipeline.Result {
	d := &celltower.Dataset{
		Name: "test",
		CellTowers: []celltower.Site{
			{Coordinates: geo.GeoPoint{Latitude: 46.5, Longitude: 7.5}, Operator: "Swisscom", Technology: "5G", Power: celltower.PowerHigh},
		},
	}
	return &pipeline.Result{
		RunID:       "0a1b2c3d-0000-0000-0000-000000000000",
		Dataset:     d,
		DatasetHash: "0123456789abcdef0123456789abcdef",
		Declutter:   declutter.Stats{Sites: 1, Anchors: 1},
		Artifacts: map[string][]byte{
			pipeline.FormatHTML: []byte("<html></html>"),
			pipeline.FormatJSON: []byte(`{"name":"test"}`),
		},
	}
}

func get(t *testing.T, h http.Handler, path string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func TestServer_Artifacts(t *testing.T) {
	h := New(testResult(), nil).Handler()

	tests := []struct {
		path        string
		status      int
		contentType string
		body        string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8", "<html></html>"},
		{"/celltowers.json", http.StatusOK, "application/json", `{"name":"test"}`},
		{"/plot.png", http.StatusNotFound, "application/json", ""},
		{"/nope", http.StatusNotFound, "application/json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, h, tt.path)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
				assert.Equal(t, `"0123456789abcdef0123456789abcdef"`, resp.Header.Get("ETag"))
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	h := New(testResult(), nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Health(t *testing.T) {
	resp := get(t, New(testResult(), nil).Handler(), "/healthz")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 1, got.Sites)
	assert.Equal(t, 1, got.Anchors)
	assert.Equal(t, []string{pipeline.FormatHTML, pipeline.FormatJSON}, got.Formats)
}

func TestServer_ListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(testResult(), nil).ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
