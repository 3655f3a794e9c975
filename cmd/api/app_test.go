package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Addr:            "127.0.0.1:0",
		Env:             "test",
		RateLimitRPS:    1000,
		RateLimitBurst:  1000,
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*app, http.Handler) {
	t.Helper()
	a := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return a, a.routes()
}

func serve(h http.Handler, method, path string, body interface{}) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.NewRequest(method, path, body))
	return testutil.RecordHTTPResponse(w)
}

func TestBookLifecycle(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	created := serve(h, http.MethodPost, "/books", map[string]any{"name": "Harry", "pageCount": 100, "readPage": 100})
	require.Equal(t, http.StatusCreated, created.Code)
	id := created.Data()["bookId"].(string)
	assert.Len(t, id, 16)
	assert.NotEmpty(t, created.Header.Get("X-Request-Id"))

	got := serve(h, http.MethodGet, "/books/"+id, nil)
	require.Equal(t, http.StatusOK, got.Code)
	b := got.Data()["book"].(map[string]any)
	assert.Equal(t, true, b["finished"])
	assert.Equal(t, "Harry", b["name"])

	updated := serve(h, http.MethodPut, "/books/"+id, map[string]any{"name": "Harry 2", "pageCount": 100, "readPage": 20})
	require.Equal(t, http.StatusOK, updated.Code)

	got = serve(h, http.MethodGet, "/books/"+id, nil)
	b = got.Data()["book"].(map[string]any)
	assert.Equal(t, false, b["finished"])

	deleted := serve(h, http.MethodDelete, "/books/"+id, nil)
	require.Equal(t, http.StatusOK, deleted.Code)

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/books/"+id, nil).Code)
}

func TestUpdateUnknownLeavesCollectionUnchanged(t *testing.T) {
	a, h := newTestServer(t, testConfig())
	serve(h, http.MethodPost, "/books", map[string]any{"name": "Only"})

	resp := serve(h, http.MethodPut, "/books/does-not-exist", map[string]any{"name": "X"})

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Gagal memperbarui buku. Id tidak ditemukan", resp.Body["message"])
	assert.Equal(t, 1, a.books.Count())
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, testConfig())
	serve(h, http.MethodPost, "/books", map[string]any{"name": "Counted"})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "bookshelf_books 1")
	assert.Contains(t, body, `bookshelf_http_requests_total{method="POST",status="201"} 1`)
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	_, h := newTestServer(t, cfg)

	resp := serve(h, http.MethodPost, "/books", map[string]any{"name": strings.Repeat("x", 200)})

	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	_, h := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/books", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodGet, "/books", nil).Code)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books:\n  - name: Seeded\n    reading: true\n"), 0o644))

	cfg := testConfig()
	cfg.SeedFile = path
	a, h := newTestServer(t, cfg)
	require.NoError(t, a.loadSeed(context.Background()))

	resp := serve(h, http.MethodGet, "/books?reading=1", nil)
	books := resp.Data()["books"].([]any)
	require.Len(t, books, 1)
	assert.Equal(t, "Seeded", books[0].(map[string]any)["name"])
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	a, _ := newTestServer(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "bookshelf version "+Version+"\n", out.String())
}

func TestSeedCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books:\n  - name: Good\n  - name: Bad\n    pageCount: 1\n    readPage: 2\n"), 0o644))

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"seed-check", path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1 accepted, 1 rejected\n", out.String())
}

func TestRoutes_BuildTwice(t *testing.T) {
	a, _ := newTestServer(t, testConfig())

	var h http.Handler
	require.NotPanics(t, func() { h = a.routes() })

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/books", nil).Code)
}

func TestBodyLimit_Chunked(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodyBytes = 64
	_, h := newTestServer(t, cfg)

	body := `{"name":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/books", io.MultiReader(strings.NewReader(body)))
	req.ContentLength = -1
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	resp := testutil.RecordHTTPResponse(w)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, "Request body too large", resp.Body["message"])
}

func TestSeedCheckCommand_AllRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books:\n  - name: \"\"\n  - name: \" \"\n"), 0o644))

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"seed-check", path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "0 accepted, 2 rejected\n", out.String())
}
