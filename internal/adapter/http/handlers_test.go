package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adapthttp "fitlog/internal/adapter/http"
	"fitlog/internal/adapter/memory"
	"fitlog/internal/app"
	"fitlog/internal/domain"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

func services(db *memory.DB) adapthttp.Services {
	return adapthttp.Services{
		Weight:   app.NewWeightService(db),
		Notes:    app.NewNoteService(db),
		Summary:  app.NewSummaryService(db),
		Transfer: app.NewTransferService(db, db, db),
		Charts:   app.NewChartsService(db),
		Auth:     app.NewAuthService(db, db.NewSessionRepo()),
	}
}

func webDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0o600))
	return dir
}

func newTestServer(t *testing.T, db *memory.DB) *httptest.Server {
	t.Helper()
	if db == nil {
		db = memory.New()
	}
	srv := adapthttp.New(services(db), webDir(t), zap.NewNop()).WithoutAuth(1)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["ok"])
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

func TestWeightLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodPost, ts.URL+"/api/weight", map[string]any{
		"date": "2024-01-01", "weight": "80", "height": "180", "fatPercentage": "14",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody(t, resp)
	entry := body["entry"].(map[string]any)
	assert.Equal(t, "24.69", entry["imc"])
	assert.Equal(t, "Peso normal", body["classification"].(map[string]any)["classification"])
	id := entry["id"].(string)

	resp = do(t, http.MethodPut, ts.URL+"/api/weight/"+id, map[string]any{
		"date": "2024-01-01", "weight": "81", "height": "180",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/weight", map[string]any{"date": "2024-01-08", "weight": "79", "height": "180"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/weight", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody(t, resp)["items"].([]any)
	require.Len(t, items, 2)
	newest := items[0].(map[string]any)
	assert.Equal(t, "2024-01-08", newest["date"])
	assert.Equal(t, "decrease", newest["trends"].(map[string]any)["weight"])

	resp = do(t, http.MethodDelete, ts.URL+"/api/weight/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodDelete, ts.URL+"/api/weight/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "deleting twice is not an error")
}

func TestWeightSaveRejections(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		payload    any
		wantStatus int
	}{
		{"bad date", http.MethodPost, "/api/weight", map[string]any{"date": "01/02/2024"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/weight", map[string]any{"imc": "99"}, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/api/weight", "{", http.StatusBadRequest},
		{"missing entry", http.MethodPut, "/api/weight/nope", map[string]any{"date": "2024-01-01"}, http.StatusNotFound},
	}

	ts := newTestServer(t, nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, ts.URL+tc.path, tc.payload)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Contains(t, decodeBody(t, resp), "error")
		})
	}
}

func TestWeightDefaultsAndPreview(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/api/weight/new", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, app.DefaultHeight, body["height"])
	assert.NotEmpty(t, body["date"])

	resp = do(t, http.MethodGet, ts.URL+"/api/weight/imc?weight=95&height=173", nil)
	body = decodeBody(t, resp)
	assert.Equal(t, "31.74", body["imc"])
	assert.Equal(t, "Obesidad Ligera", body["classification"].(map[string]any)["classification"])

	resp = do(t, http.MethodGet, ts.URL+"/api/weight/imc?weight=abc&height=173", nil)
	body = decodeBody(t, resp)
	assert.Equal(t, "", body["imc"])
	assert.Equal(t, "N/A", body["classification"].(map[string]any)["classification"])
}

func TestFatGoal(t *testing.T) {
	db := memory.New()
	_, err := db.AddWeightEntry(context.Background(), 1, domain.WeightEntry{Date: "2024-01-01", FatPercentage: "12,5"})
	require.NoError(t, err)
	ts := newTestServer(t, db)

	resp := do(t, http.MethodGet, ts.URL+"/api/weight/fat-goal", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, 12.5, body["value"])
	assert.Equal(t, true, body["met"])
}

func TestNotesEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodPost, ts.URL+"/api/notes", map[string]any{
		"title":   "Press banca",
		"content": "Codos a 45°",
		"media": []map[string]any{
			{"type": "image", "dataUrl": "data:image/png;base64,AA=="},
			{"type": "video", "dataUrl": "data:video/mp4;base64,AA=="},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody(t, resp)["id"].(string)

	resp = do(t, http.MethodPost, ts.URL+"/api/notes/"+id+"/links", map[string]any{"url": "  https://youtu.be/abc  "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	links := decodeBody(t, resp)["videoLinks"].([]any)
	require.Len(t, links, 1)
	link := links[0].(map[string]any)
	assert.Equal(t, "https://youtu.be/abc", link["url"])
	assert.Equal(t, "Video 1", link["name"])
	linkID := link["id"].(string)

	resp = do(t, http.MethodPost, ts.URL+"/api/notes/"+id+"/links", map[string]any{"url": "https://youtu.be/abc"})
	assert.Len(t, decodeBody(t, resp)["videoLinks"], 1, "duplicate URLs are ignored")

	resp = do(t, http.MethodPatch, ts.URL+"/api/notes/"+id+"/links/"+linkID, map[string]any{"name": "Técnica"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	link = decodeBody(t, resp)["videoLinks"].([]any)[0].(map[string]any)
	assert.Equal(t, "Técnica", link["name"])
	assert.Equal(t, "https://youtu.be/abc", link["url"])

	resp = do(t, http.MethodDelete, ts.URL+"/api/notes/"+id+"/media/0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	media := decodeBody(t, resp)["media"].([]any)
	require.Len(t, media, 1)
	assert.Equal(t, "video", media[0].(map[string]any)["type"])

	resp = do(t, http.MethodDelete, ts.URL+"/api/notes/"+id+"/media/x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/notes/"+id+"/links/"+linkID, nil)
	assert.Empty(t, decodeBody(t, resp)["videoLinks"])

	resp = do(t, http.MethodPut, ts.URL+"/api/notes/missing", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/notes/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL+"/api/notes", nil)
	assert.Empty(t, decodeBody(t, resp)["items"])
}

func TestSummaryEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	for _, l := range []map[string]any{
		{"date": "2024-03-01", "day": "Día 1", "exerciseName": "Press", "sede": "Centro", "kilos": "40", "calorias": "100"},
		{"date": "2024-03-08", "day": "Día 1", "exerciseName": "Press", "sede": "Centro", "kilos": "45", "calorias": "120"},
		{"date": "2024-03-08", "day": "Día 5", "exerciseName": "Cinta", "kilos": "8", "reps": "5", "distanceUnit": "KM"},
	} {
		resp := do(t, http.MethodPost, ts.URL+"/api/logs/summary", l)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, http.MethodPost, ts.URL+"/api/logs/weekly", map[string]any{"date": "2024-03-08", "exerciseName": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/logs/summary", nil)
	assert.Len(t, decodeBody(t, resp)["items"], 3)

	resp = do(t, http.MethodGet, ts.URL+"/api/summary/sessions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessions := decodeBody(t, resp)["items"].([]any)
	require.Len(t, sessions, 2)
	latest := sessions[0].(map[string]any)
	assert.Equal(t, "2024-03-08", latest["date"])
	assert.Equal(t, 120.0, latest["totalCalories"])
	days := latest["days"].([]any)
	require.Len(t, days, 2)
	assert.Equal(t, "Día 5", days[0].(map[string]any)["tag"], "cardio comes first")

	resp = do(t, http.MethodGet, ts.URL+"/api/summary/sessions/2024-03-08?format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(text), "Resumen de Sesión - Viernes, 8 de Marzo de 2024")
	assert.Contains(t, string(text), "Kilómetros")

	resp = do(t, http.MethodGet, ts.URL+"/api/summary/sessions/2024-01-01", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/api/summary/sessions/2024-03-08", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2.0, decodeBody(t, resp)["deleted"])

	resp = do(t, http.MethodGet, ts.URL+"/api/summary/sessions", nil)
	assert.Len(t, decodeBody(t, resp)["items"], 1)
}

func TestExportDownloads(t *testing.T) {
	db := memory.New()
	logID, err := db.AddExerciseLog(context.Background(), 1, domain.BookSummary,
		domain.ExerciseLog{Date: "2024-03-01", Day: "Día 2", ExerciseName: "Sentadilla frontal"})
	require.NoError(t, err)
	ts := newTestServer(t, db)

	resp := do(t, http.MethodGet, ts.URL+"/api/export?scope=summary&format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cd := resp.Header.Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(cd, "attachment"))
	assert.Contains(t, cd, "fitlog-resumen-")
	assert.Contains(t, cd, ".txt")

	resp = do(t, http.MethodGet, ts.URL+"/api/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "fitlog-backup-")
	var exp app.Export
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&exp))
	assert.Equal(t, app.ExportVersion, exp.Version)
	assert.Len(t, exp.SummaryLogs, 1)

	resp = do(t, http.MethodGet, ts.URL+"/api/export?scope=session&date=2024-03-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sesion-2024-03-01.json")

	resp = do(t, http.MethodGet, ts.URL+"/api/export?scope=session&date=2020-01-01", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/export?scope=log&id="+logID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ejercicio-Sentadilla-frontal-2024-03-01.json")
	var doc struct {
		SummaryLogs []domain.ExerciseLog `json:"summaryLogs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Len(t, doc.SummaryLogs, 1)
	assert.Equal(t, logID, doc.SummaryLogs[0].ID)

	resp = do(t, http.MethodGet, ts.URL+"/api/export?scope=log&id="+logID+"&format=text", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ejercicio-Sentadilla-frontal-2024-03-01.txt")

	resp = do(t, http.MethodGet, ts.URL+"/api/export?scope=log&id=missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImport(t *testing.T) {
	db := memory.New()
	ts := newTestServer(t, db)

	resp := do(t, http.MethodPost, ts.URL+"/api/import", "{not json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "JSON mal formado")

	resp = do(t, http.MethodPost, ts.URL+"/api/import", map[string]any{
		"version": 1,
		"weightEntries": []map[string]any{
			{"date": "2024-01-01", "weight": "176.37", "height": "180", "unit": "lb"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "¡Datos importados con éxito!", body["message"])

	entries, err := db.ListWeightEntries(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "80.0", entries[0].Weight)
	assert.Equal(t, "24.69", entries[0].IMC)
}

func TestCharts(t *testing.T) {
	db := memory.New()
	today := domain.Today(time.Now())
	_, err := db.AddWeightEntry(context.Background(), 1, domain.WeightEntry{Date: today, Weight: "80", Height: "180", IMC: "24.69"})
	require.NoError(t, err)
	ts := newTestServer(t, db)

	resp := do(t, http.MethodGet, ts.URL+"/api/charts/series?days=30&unit=kg", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decodeBody(t, resp)["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 80.0, items[0].(map[string]any)["weight"])

	resp = do(t, http.MethodGet, ts.URL+"/api/charts/series?unit=stone", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/charts/weight.html", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "echarts")
	assert.Contains(t, string(page), "Peso (kg)")
}

func TestSPAFallback(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/consejos", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<html></html>", string(page))
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func newAuthServer(t *testing.T, db *memory.DB) *httptest.Server {
	t.Helper()
	srv := adapthttp.New(services(db), webDir(t), zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestAuthRequired(t *testing.T) {
	ts := newAuthServer(t, memory.New())

	resp := do(t, http.MethodGet, ts.URL+"/api/weight", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health is public")
}

func TestSetupLoginAndLogout(t *testing.T) {
	db := memory.New()
	ts := newAuthServer(t, db)

	resp := do(t, http.MethodGet, ts.URL+"/api/config", nil)
	assert.Equal(t, true, decodeBody(t, resp)["needs_setup"])

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": "ana", "password": "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": "otro", "password": "secreto123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{"username": "ana", "password": "mal"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{"username": "ana", "password": "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	require.NotNil(t, session)

	get := func() *http.Response {
		req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/weight", nil)
		require.NoError(t, err)
		req.AddCookie(session)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}
	assert.Equal(t, http.StatusOK, get().StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/auth/logout", nil)
	require.NoError(t, err)
	req.AddCookie(session)
	out, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = out.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, get().StatusCode)
}

func TestForwardAuthHeader(t *testing.T) {
	db := memory.New()
	ts := newAuthServer(t, db)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Remote-User", "proxy-user")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	u, err := db.GetByUsername(context.Background(), "proxy-user")
	require.NoError(t, err)
	assert.NotNil(t, u, "forward-auth users are provisioned on first sight")
}

func TestSSODisabled(t *testing.T) {
	ts := newAuthServer(t, memory.New())
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp, err := client.Get(ts.URL + "/api/auth/sso/login")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// Store failures
// ---------------------------------------------------------------------------

type failingNotes struct {
	*memory.DB
	err error
}

func (f failingNotes) ListNotes(context.Context, int64) ([]domain.Note, error) { return nil, f.err }

func TestInternalErrorsAreHidden(t *testing.T) {
	db := memory.New()
	svc := services(db)
	svc.Notes = app.NewNoteService(failingNotes{DB: db, err: errors.New("disk on fire")})
	srv := adapthttp.New(svc, webDir(t), zap.NewNop()).WithoutAuth(1)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp := do(t, http.MethodGet, ts.URL+"/api/notes", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal error", decodeBody(t, resp)["error"])
}

func TestCORS(t *testing.T) {
	srv := adapthttp.New(services(memory.New()), webDir(t), zap.NewNop()).
		WithoutAuth(1).
		WithCORS([]string{"https://fit.example"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/notes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://fit.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, "https://fit.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
