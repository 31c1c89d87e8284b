package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/editor/input"
	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/parser"
	"github.com/regalagram/sspe-sub013/internal/editor/render"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
	"github.com/regalagram/sspe-sub013/internal/editor/session"
	"github.com/regalagram/sspe-sub013/internal/editor/store"
	"github.com/regalagram/sspe-sub013/internal/editor/toolmode"
	"github.com/regalagram/sspe-sub013/internal/prefs/service"
)

// ============================================================
// Editor Handler
// ============================================================

type EditorHandler struct {
	sessions *session.Manager
	prefs    *service.Prefs
}

func NewEditorHandler(sessions *session.Manager, prefs *service.Prefs) *EditorHandler {
	return &EditorHandler{
		sessions: sessions,
		prefs:    prefs,
	}
}

// Register mounts the editor routes on r, usually the /api/v1 group.
func (h *EditorHandler) Register(r fiber.Router) {
	r.Post("/sessions", h.CreateSession)
	r.Delete("/sessions/:id", h.CloseSession)
	r.Get("/sessions/:id/state", h.GetState)
	r.Get("/sessions/:id/svg", h.GetSVG)
	r.Post("/sessions/:id/paths", h.AddPath)
	r.Post("/sessions/:id/import", h.ImportSVG)
	r.Patch("/sessions/:id/commands/:cmd", h.UpdateCommand)
	r.Post("/sessions/:id/commands/:cmd/move", h.MoveCommand)
	r.Post("/sessions/:id/subpaths/:sp/commands", h.AddCommand)
	r.Post("/sessions/:id/arrange/:op", h.Arrange)
	r.Post("/sessions/:id/select", h.Select)
	r.Post("/sessions/:id/history/:action", h.History)
	r.Put("/sessions/:id/mode", h.SetMode)
	r.Post("/sessions/:id/pointer", h.Pointer)
	r.Post("/sessions/:id/keys", h.Key)
	r.Put("/sessions/:id/text", h.EditText)
	r.Get("/sessions/:id/prefs/:key", h.GetPref)
	r.Put("/sessions/:id/prefs/:key", h.PutPref)
}

type stateResponse struct {
	store.State
	Tool    toolmode.State `json:"tool"`
	CanUndo bool           `json:"canUndo"`
	CanRedo bool           `json:"canRedo"`
}

func stateOf(ed *session.Editor) stateResponse {
	return stateResponse{
		State:   ed.Store.Snapshot(),
		Tool:    ed.Modes.State(),
		CanUndo: ed.Store.CanUndo(),
		CanRedo: ed.Store.CanRedo(),
	}
}

// editor resolves the :id parameter. On failure the error response has
// already been written and ok is false.
func (h *EditorHandler) editor(c fiber.Ctx) (*session.Editor, bool, error) {
	ed, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, false, c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		return nil, false, c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ed, true, nil
}

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ============================================================
// Sessions
// ============================================================

func (h *EditorHandler) CreateSession(c fiber.Ctx) error {
	id, ed := h.sessions.Create()
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":    id,
		"state": stateOf(ed),
	})
}

func (h *EditorHandler) CloseSession(c fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("id")); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *EditorHandler) GetState(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	return c.JSON(stateOf(ed))
}

// GetSVG отдаёт документ сессии как svg.
func (h *EditorHandler) GetSVG(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	snap := ed.Store.Snapshot()
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(render.SVG(snap.Document, snap.Viewport))
}

// ============================================================
// Document
// ============================================================

type addPathRequest struct {
	D     string        `json:"d"`
	Name  string        `json:"name"`
	Style *models.Style `json:"style"`
}

func (h *EditorHandler) AddPath(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req addPathRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	subPaths, err := parser.ParsePathData(req.D)
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	p := models.Path{Name: req.Name, Style: store.DefaultPathStyle()}
	if req.Style != nil {
		p.Style = *req.Style
	}
	for _, cmds := range subPaths {
		p.SubPaths = append(p.SubPaths, models.SubPath{Commands: cmds})
	}

	ed.Store.PushToHistory()
	id := ed.Store.InsertPath(p)
	log.Debugf("[EDITOR] path %s added with %d subpaths", id, len(p.SubPaths))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

// ImportSVG добавляет в документ все path из загруженного svg.
func (h *EditorHandler) ImportSVG(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	if len(c.Body()) == 0 {
		return badRequest(c, "empty body")
	}

	paths, err := parser.ImportSVG(bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	ids := make([]string, 0, len(paths))
	if len(paths) > 0 {
		ed.Store.PushToHistory()
	}
	for _, p := range paths {
		ids = append(ids, ed.Store.InsertPath(p))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"ids": ids})
}

func (h *EditorHandler) UpdateCommand(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	id := c.Params("cmd")
	if _, found := ed.Store.FindCommand(id); !found {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "command not found"})
	}
	var req models.CommandUpdate
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"updated": ed.Store.UpdateCommand(id, req)})
}

func (h *EditorHandler) MoveCommand(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	id := c.Params("cmd")
	if _, found := ed.Store.FindCommand(id); !found {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "command not found"})
	}
	var req models.Point
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"updated": ed.Store.MoveCommand(id, req)})
}

func (h *EditorHandler) AddCommand(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req models.Command
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	switch req.Command {
	case models.MoveTo, models.LineTo, models.CurveTo, models.ClosePath:
	default:
		return badRequest(c, "unknown command "+string(req.Command))
	}

	id := ed.Store.AddCommand(c.Params("sp"), req)
	if id == "" {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "subpath not found or locked"})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *EditorHandler) Arrange(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	changed, known := ed.Store.Arrange(c.Params("op"))
	if !known {
		return badRequest(c, "unknown arrangement "+c.Params("op"))
	}
	return c.JSON(fiber.Map{"changed": changed})
}

// ============================================================
// Selection & history
// ============================================================

type selectRequest struct {
	Kind  selection.Kind `json:"kind"`
	IDs   []string       `json:"ids"`
	Add   bool           `json:"add"`
	Box   *models.BBox   `json:"box"`
	All   bool           `json:"all"`
	Clear bool           `json:"clear"`
}

func (h *EditorHandler) Select(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req selectRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	switch {
	case req.Clear:
		ed.Store.ClearSelection()
	case req.All:
		ed.Store.SelectAll()
	case req.Box != nil:
		ed.Store.SelectInBox(*req.Box, req.Add)
	case req.Kind != "":
		if !req.Kind.Valid() {
			return badRequest(c, "unknown selection kind "+string(req.Kind))
		}
		ed.Store.SelectMany(req.Kind, req.IDs, req.Add)
	default:
		return badRequest(c, "nothing to select")
	}
	return c.JSON(ed.Store.Selection())
}

func (h *EditorHandler) History(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var changed bool
	switch c.Params("action") {
	case "push":
		ed.Store.PushToHistory()
		changed = true
	case "undo":
		changed = ed.Store.Undo()
	case "redo":
		changed = ed.Store.Redo()
	default:
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "unknown history action"})
	}
	return c.JSON(fiber.Map{
		"changed": changed,
		"canUndo": ed.Store.CanUndo(),
		"canRedo": ed.Store.CanRedo(),
	})
}

// ============================================================
// Tools & input
// ============================================================

type modeRequest struct {
	Mode    toolmode.Mode    `json:"mode"`
	Options toolmode.Options `json:"options"`
}

func (h *EditorHandler) SetMode(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req modeRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if !req.Mode.Valid() {
		return badRequest(c, "unknown mode "+string(req.Mode))
	}
	changed := ed.Modes.SetMode(req.Mode, req.Options)
	return c.JSON(fiber.Map{"changed": changed, "tool": ed.Modes.State()})
}

type pointerRequest struct {
	Phase string             `json:"phase"`
	Event input.PointerEvent `json:"event"`
}

func (h *EditorHandler) Pointer(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req pointerRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}

	var consumed bool
	switch strings.ToLower(req.Phase) {
	case "down":
		consumed = ed.PointerDown(req.Event)
	case "move":
		consumed = ed.PointerMove(req.Event)
	case "up":
		consumed = ed.PointerUp(req.Event)
	default:
		return badRequest(c, "phase must be down, move or up")
	}
	return c.JSON(fiber.Map{"consumed": consumed})
}

func (h *EditorHandler) Key(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req input.KeyEvent
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if req.Key == "" {
		return badRequest(c, "key required")
	}
	return c.JSON(fiber.Map{"consumed": ed.HandleKey(req)})
}

type textRequest struct {
	Content string `json:"content"`
	Commit  bool   `json:"commit"`
}

// EditText feeds content to the open text edit session; commit ends it.
func (h *EditorHandler) EditText(c fiber.Ctx) error {
	ed, ok, err := h.editor(c)
	if !ok {
		return err
	}
	var req textRequest
	if err := decode(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	if !ed.TextEdit.UpdateContent(req.Content) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": "no text is being edited"})
	}
	if req.Commit {
		// leaving text-edit flushes the pending content
		ed.Modes.SetMode(toolmode.ModeSelect, toolmode.Options{})
	}
	return c.JSON(ed.TextEdit.State())
}

// ============================================================
// Prefs
// ============================================================

func (h *EditorHandler) GetPref(c fiber.Ctx) error {
	if _, ok, err := h.editor(c); !ok {
		return err
	}
	raw, found := h.prefs.Raw(c.Context(), c.Params("key"))
	if !found {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "preference not set"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.SendString(raw)
}

func (h *EditorHandler) PutPref(c fiber.Ctx) error {
	if _, ok, err := h.editor(c); !ok {
		return err
	}
	if !h.prefs.SaveRaw(c.Context(), c.Params("key"), c.Body()) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": "preference not saved"})
	}
	return c.SendStatus(http.StatusNoContent)
}
