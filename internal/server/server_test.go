package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantauharga/internal/importer"
	"pantauharga/internal/model"
	"pantauharga/internal/service/dashboard"
	"pantauharga/internal/store"
	"pantauharga/internal/testutil"
)

func newTestServer(t *testing.T, workbook string) *Server {
	t.Helper()

	dir := t.TempDir()
	src := importer.NewSource(importer.SourceOptions{
		Path:        workbook,
		ChoiceSheet: "choice",
		DailySheets: []string{"jan26", "feb26"},
	})
	dash := dashboard.New(src, store.NewCSVStore(filepath.Join(dir, "data_input.csv")))

	srv, err := NewServer(dash, Options{DevMode: true, ExportDir: filepath.Join(dir, "exports")})
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func postForm(t *testing.T, srv *Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestIndex_MissingSourceShowsOnlyBanner(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "2 Pemantauan Harga 2026 (1).xlsx"))

	for _, target := range []string{"/", "/?tab=tabel", "/?tab=tren"} {
		w := get(t, srv, target)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "File data tidak ditemukan:")
		assert.Contains(t, body, "2 Pemantauan Harga 2026 (1).xlsx")
		assert.NotContains(t, body, "<nav>")
		assert.NotContains(t, body, "<form")
	}
}

func TestIndex_InputTabDefaults(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	w := get(t, srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Input Data")
	assert.Contains(t, body, `value="SP2KP"`)
	assert.Contains(t, body, `value="`+model.Today().String()+`"`)
	assert.Contains(t, body, `min="0" step="100"`)
	assert.Contains(t, body, "Belum ada data input.")
}

func TestSubmitInput_SavesAndRedirects(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	w := postForm(t, srv, "/input", url.Values{
		"sumber":   {"Test"},
		"komoditi": {"Beras"},
		"tingkat":  {"Eceran"},
		"provinsi": {"DKI Jakarta"},
		"tanggal":  {"2026-03-01"},
		"harga":    {"15000"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "saved=1")

	w = get(t, srv, location)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Data berhasil disimpan.")
	assert.Contains(t, body, "<td>Test</td>")
	assert.Contains(t, body, "2026-03-01")
	assert.Contains(t, body, "15.000")
}

func TestSubmitInput_InvalidPrice(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	w := postForm(t, srv, "/input", url.Values{
		"sumber":   {"Test"},
		"komoditi": {"Beras"},
		"tingkat":  {"Eceran"},
		"provinsi": {"DKI Jakarta"},
		"tanggal":  {"2026-03-01"},
		"harga":    {"mahal"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)
	assert.Contains(t, w.Body.String(), `value="mahal"`)
}

func TestIndex_TableTab(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	w := get(t, srv, "/?tab=tabel")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Rekapan Tabular")
	assert.Contains(t, body, `<option value="Beras" selected>`)
	assert.Contains(t, body, `<option value="Gula">`)
	assert.Equal(t, 3, strings.Count(body, "<td>Beras</td>"))
	assert.Contains(t, body, "10.000")

	w = get(t, srv, "/?tab=tabel&applied=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<td>Beras</td>")
}

func TestIndex_ChartTab(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	w := get(t, srv, "/?tab=tren")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Tren Harga Harian")
	assert.Contains(t, body, "/api/chart.png?")
	assert.Contains(t, body, `<option value="Gula" selected>`)
	assert.Contains(t, body, `value="2026-01-01" min="2026-01-01" max="2026-02-01"`)

	w = get(t, srv, "/?tab=tren&applied=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tidak ada data untuk filter yang dipilih.")
	assert.NotContains(t, w.Body.String(), "/api/chart.png")

	w = get(t, srv, "/?tab=tren&start=tidak")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))
	w := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestServer_ShutdownBeforeRun(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	require.NoError(t, srv.Shutdown(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Run("127.0.0.1:0") }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestServer_ServeThenShutdown(t *testing.T) {
	srv := newTestServer(t, testutil.StandardWorkbook(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
