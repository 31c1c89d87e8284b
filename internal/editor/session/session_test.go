package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regalagram/sspe-sub013/internal/common/config"
	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
	"github.com/regalagram/sspe-sub013/internal/prefs/repository"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

func seqIDs() store.Option {
	n := 0
	return store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newPrefs(t *testing.T) *service.Prefs {
	t.Helper()
	db, err := repository.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repository.New(db)
	require.NoError(t, repo.Init(context.Background()))
	return service.New(repo)
}

func newEditor(t *testing.T, prefs *service.Prefs) *Editor {
	t.Helper()
	e := New(config.Default(), prefs, WithStoreOptions(seqIDs()))
	t.Cleanup(e.Close)
	return e
}

func addLine(e *Editor) string {
	pathID, spID := e.Store.AddPath(nil)
	e.Store.AddCommand(spID, models.Command{Command: models.MoveTo, X: 0, Y: 0})
	e.Store.AddCommand(spID, models.Command{Command: models.LineTo, X: 10, Y: 10})
	return pathID
}

func TestNewRegistersEveryManager(t *testing.T) {
	e := newEditor(t, nil)

	for mode, want := range map[toolmode.Mode]toolmode.Activatable{
		toolmode.ModePencil:   e.Pencil,
		toolmode.ModeCurves:   e.Curves,
		toolmode.ModeShapes:   e.Shapes,
		toolmode.ModeText:     e.Text,
		toolmode.ModeTextEdit: e.TextEdit,
		toolmode.ModeCreation: e.Creation,
	} {
		got, ok := e.Modes.Manager(mode)
		require.True(t, ok, mode)
		assert.Same(t, want, got, mode)
	}
	assert.Equal(t, toolmode.ModeSelect, e.Modes.ActiveMode())
	assert.Equal(t, 2, e.Store.Precision())
}

func TestCoreShortcuts(t *testing.T) {
	e := newEditor(t, nil)
	pathID := addLine(e)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "a", Ctrl: true}))
	assert.Equal(t, []string{pathID}, e.Store.Selection().SelectedPaths)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "Delete"}))
	assert.Empty(t, e.Store.Document().Paths)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "z", Meta: true}))
	assert.Len(t, e.Store.Document().Paths, 1)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "Z", Ctrl: true, Shift: true}))
	assert.Empty(t, e.Store.Document().Paths)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "y", Ctrl: true}))
	assert.Empty(t, e.Store.Document().Paths, "nothing left to redo")

	assert.False(t, e.HandleKey(input.KeyEvent{Key: "q"}))
}

func TestEscapeLeavesToolThenClearsSelection(t *testing.T) {
	e := newEditor(t, nil)
	pathID := addLine(e)

	require.True(t, e.HandleKey(input.KeyEvent{Key: "p"}))
	assert.Equal(t, toolmode.ModePencil, e.Modes.ActiveMode())
	require.True(t, e.HandleKey(input.KeyEvent{Key: "Escape"}))
	assert.Equal(t, toolmode.ModeSelect, e.Modes.ActiveMode())

	e.Store.Select(selection.Path, pathID, false)
	require.True(t, e.HandleKey(input.KeyEvent{Key: "Escape"}))
	assert.Empty(t, e.Store.Selection().SelectedPaths)

	e.Store.Select(selection.Path, pathID, false)
	require.True(t, e.HandleKey(input.KeyEvent{Key: "Escape", Shift: true}))
	assert.Empty(t, e.Store.Selection().SelectedPaths)
}

func TestTypingWhileEditingTextSkipsToolKeys(t *testing.T) {
	e := newEditor(t, nil)
	id := e.Store.AddText(0, 0, "hello", nil)

	require.True(t, e.Modes.SetMode(toolmode.ModeTextEdit, toolmode.Options{EditingTextID: id}))
	require.True(t, e.TextEdit.State().IsEditing)

	assert.False(t, e.HandleKey(input.KeyEvent{Key: "v"}))
	assert.Equal(t, toolmode.ModeTextEdit, e.Modes.ActiveMode())

	require.True(t, e.HandleKey(input.KeyEvent{Key: "Escape"}))
	assert.Equal(t, toolmode.ModeSelect, e.Modes.ActiveMode())
	assert.False(t, e.TextEdit.State().IsEditing)
}

func TestPointerRoutesThroughDispatcher(t *testing.T) {
	e := newEditor(t, nil)
	pathID := addLine(e)

	require.True(t, e.PointerDown(input.PointerEvent{Target: input.Target{Kind: input.TargetPath, ID: pathID}}))
	e.PointerUp(input.PointerEvent{})
	assert.Equal(t, []string{pathID}, e.Store.Selection().SelectedPaths)
}

func TestToolbarStateIsRememberedAcrossSessions(t *testing.T) {
	prefs := newPrefs(t)
	first := newEditor(t, prefs)

	require.True(t, first.Modes.SetMode(toolmode.ModeShapes, toolmode.Options{ShapeID: "circle"}))
	assert.Equal(t, "circle", first.Toolbar().ShapeID)

	var saved service.ToolbarState
	require.True(t, prefs.Load(context.Background(), service.KeyToolbarState, &saved))
	assert.Equal(t, service.ToolbarState{ActiveMode: "shapes", ShapeID: "circle"}, saved)

	second := newEditor(t, prefs)
	assert.Equal(t, toolmode.ModeShapes, second.Modes.ActiveMode())
	assert.Equal(t, "circle", second.Shapes.Shape())

	// the sub-option survives leaving the tool
	require.True(t, second.HandleKey(input.KeyEvent{Key: "v"}))
	require.True(t, second.HandleKey(input.KeyEvent{Key: "s"}))
	assert.Equal(t, "circle", second.Modes.State().ShapeID)
}

func TestTextEditIsNeverRestored(t *testing.T) {
	prefs := newPrefs(t)
	require.True(t, prefs.Save(context.Background(), service.KeyToolbarState, service.ToolbarState{ActiveMode: "text-edit"}))

	e := newEditor(t, prefs)
	assert.Equal(t, toolmode.ModeSelect, e.Modes.ActiveMode())
}

// ============================================================
// Manager
// ============================================================

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(config.Default(), nil)

	id, ed := m.Create()
	require.NotEmpty(t, id)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, ed, got)

	require.NoError(t, m.Close(id))
	_, err = m.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Close(id), ErrSessionNotFound)
}

func TestManagerReapsIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cfg := config.Default()
	cfg.SessionTTLMinutes = 10
	m := NewManager(cfg, nil, WithClock(func() time.Time { return now }))

	idle, _ := m.Create()
	busy, _ := m.Create()

	now = now.Add(8 * time.Minute)
	_, err := m.Get(busy)
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, m.Reap())
	assert.Equal(t, 1, m.Len())

	_, err = m.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(busy)
	assert.NoError(t, err)

	m.CloseAll()
	assert.Zero(t, m.Len())
}
