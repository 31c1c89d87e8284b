package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regalagram/sspe-sub013/internal/common/config"
	"github.com/regalagram/sspe-sub013/internal/editor/session"
	"github.com/regalagram/sspe-sub013/internal/prefs/repository"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.New(db)
	require.NoError(t, repo.Init(context.Background()))

	prefs := service.New(repo)
	sessions := session.NewManager(config.Default(), prefs)
	t.Cleanup(sessions.CloseAll)

	app := fiber.New()
	NewHealth(repo).Register(app)
	NewEditorHandler(sessions, prefs).Register(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

func createSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, data := do(t, app, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, status)
	id, _ := decodeJSON(t, data)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthProbes(t *testing.T) {
	app := newApp(t)
	for _, path := range []string{"/health/live", "/health/ready", "/health/startup"} {
		status, _ := do(t, app, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, status, path)
	}

	down := fiber.New()
	NewHealth(pingFunc(func(context.Context) error { return errors.New("db gone") })).Register(down)
	status, data := do(t, down, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "db gone", decodeJSON(t, data)["error"])
}

func TestPathLifecycle(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id

	status, data := do(t, app, http.MethodPost, base+"/paths", `{"d":"M0 0 L10 0","style":{"fill":{"value":"none"},"stroke":{"value":"#000"},"strokeWidth":1}}`)
	require.Equal(t, http.StatusCreated, status, string(data))
	pathID := decodeJSON(t, data)["id"].(string)

	status, data = do(t, app, http.MethodGet, base+"/svg", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `d="M 0 0 L 10 0"`)

	status, data = do(t, app, http.MethodPost, base+"/select", `{"kind":"path","ids":["`+pathID+`"]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{pathID}, decodeJSON(t, data)["selectedPaths"])

	status, data = do(t, app, http.MethodGet, base+"/state", "")
	require.Equal(t, http.StatusOK, status)
	state := decodeJSON(t, data)
	assert.Equal(t, true, state["canUndo"])
	assert.Len(t, state["document"].(map[string]any)["paths"], 1)

	status, data = do(t, app, http.MethodPost, base+"/history/undo", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeJSON(t, data)["changed"])

	status, data = do(t, app, http.MethodGet, base+"/state", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeJSON(t, data)["document"].(map[string]any)["paths"])

	status, _ = do(t, app, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, app, http.MethodGet, base+"/state", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCommandRoutes(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id

	status, _ := do(t, app, http.MethodPost, base+"/paths", `{"d":"M0 0 L10 0"}`)
	require.Equal(t, http.StatusCreated, status)

	_, data := do(t, app, http.MethodGet, base+"/state", "")
	paths := decodeJSON(t, data)["document"].(map[string]any)["paths"].([]any)
	sp := paths[0].(map[string]any)["subPaths"].([]any)[0].(map[string]any)
	spID := sp["id"].(string)
	lineID := sp["commands"].([]any)[1].(map[string]any)["id"].(string)

	status, data = do(t, app, http.MethodPost, base+"/commands/"+lineID+"/move", `{"x":20,"y":5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeJSON(t, data)["updated"])

	status, data = do(t, app, http.MethodPatch, base+"/commands/"+lineID, `{"y":7}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeJSON(t, data)["updated"])

	status, data = do(t, app, http.MethodPost, base+"/subpaths/"+spID+"/commands", `{"command":"L","x":30,"y":30}`)
	require.Equal(t, http.StatusCreated, status, string(data))

	_, data = do(t, app, http.MethodGet, base+"/svg", "")
	assert.Contains(t, string(data), `d="M 0 0 L 20 7 L 30 30"`)

	status, _ = do(t, app, http.MethodPatch, base+"/commands/missing", `{"y":1}`)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, app, http.MethodPost, base+"/subpaths/"+spID+"/commands", `{"command":"A"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, app, http.MethodPost, base+"/subpaths/missing/commands", `{"command":"L"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRejectsBadInput(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, base + "/paths", `{"d":"L1 1"}`, http.StatusUnprocessableEntity},
		{http.MethodPost, base + "/paths", `not json`, http.StatusBadRequest},
		{http.MethodPost, base + "/paths", ``, http.StatusBadRequest},
		{http.MethodPost, base + "/arrange/spin", ``, http.StatusBadRequest},
		{http.MethodPost, base + "/select", `{"kind":"widget","ids":["x"]}`, http.StatusBadRequest},
		{http.MethodPost, base + "/select", `{}`, http.StatusBadRequest},
		{http.MethodPost, base + "/history/rewind", ``, http.StatusNotFound},
		{http.MethodPut, base + "/mode", `{"mode":"lasso"}`, http.StatusBadRequest},
		{http.MethodPost, base + "/pointer", `{"phase":"hover"}`, http.StatusBadRequest},
		{http.MethodPost, base + "/keys", `{}`, http.StatusBadRequest},
		{http.MethodPut, base + "/text", `{"content":"x"}`, http.StatusConflict},
		{http.MethodPost, base + "/import", `<html/>`, http.StatusUnprocessableEntity},
		{http.MethodGet, "/api/v1/sessions/nope/state", ``, http.StatusNotFound},
		{http.MethodDelete, "/api/v1/sessions/nope", ``, http.StatusNotFound},
	}
	for _, tc := range cases {
		status, data := do(t, app, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.want, status, "%s %s: %s", tc.method, tc.path, data)
	}
}

func TestModeKeysAndPointer(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id

	status, data := do(t, app, http.MethodPut, base+"/mode", `{"mode":"pencil"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pencil", decodeJSON(t, data)["tool"].(map[string]any)["activeMode"])

	for _, phase := range []string{
		`{"phase":"down","event":{"point":{"x":0,"y":0}}}`,
		`{"phase":"move","event":{"point":{"x":10,"y":0}}}`,
		`{"phase":"move","event":{"point":{"x":20,"y":0}}}`,
		`{"phase":"up","event":{"point":{"x":20,"y":0}}}`,
	} {
		status, data = do(t, app, http.MethodPost, base+"/pointer", phase)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, decodeJSON(t, data)["consumed"], phase)
	}

	status, data = do(t, app, http.MethodPost, base+"/keys", `{"key":"Escape"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeJSON(t, data)["consumed"])

	status, data = do(t, app, http.MethodPost, base+"/keys", `{"key":"a","ctrl":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, decodeJSON(t, data)["consumed"])

	_, data = do(t, app, http.MethodGet, base+"/state", "")
	state := decodeJSON(t, data)
	assert.Equal(t, "select", state["tool"].(map[string]any)["activeMode"])
	assert.Len(t, state["selection"].(map[string]any)["selectedPaths"], 1)
}

func TestTextEditing(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id

	status, _ := do(t, app, http.MethodPut, base+"/mode", `{"mode":"text"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, app, http.MethodPost, base+"/pointer", `{"phase":"down","event":{"point":{"x":5,"y":5}}}`)
	require.Equal(t, http.StatusOK, status)

	status, data := do(t, app, http.MethodPut, base+"/text", `{"content":"hello","commit":true}`)
	require.Equal(t, http.StatusOK, status, string(data))

	_, data = do(t, app, http.MethodGet, base+"/state", "")
	texts := decodeJSON(t, data)["document"].(map[string]any)["texts"].([]any)
	require.Len(t, texts, 1)
	assert.Equal(t, "hello", texts[0].(map[string]any)["content"])
}

func TestImportSVG(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)

	status, data := do(t, app, http.MethodPost, "/api/v1/sessions/"+id+"/import",
		`<svg><path d="M0 0 L1 1"/><g><path d="M5 5 h5"/></g></svg>`)
	require.Equal(t, http.StatusCreated, status, string(data))
	assert.Len(t, decodeJSON(t, data)["ids"], 2)
}

func TestPrefsRoutes(t *testing.T) {
	app := newApp(t)
	id := createSession(t, app)
	base := "/api/v1/sessions/" + id + "/prefs/"

	status, _ := do(t, app, http.MethodGet, base+service.KeyBottomSheetOpen, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, app, http.MethodPut, base+service.KeyBottomSheetOpen, `true`)
	require.Equal(t, http.StatusNoContent, status)

	status, data := do(t, app, http.MethodGet, base+service.KeyBottomSheetOpen, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "true", string(data))

	status, _ = do(t, app, http.MethodPut, base+service.KeySelectedPlugin, `{broken`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}
