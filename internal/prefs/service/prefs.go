package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3/log"

	"github.com/regalagram/sspe-sub013/internal/prefs/repository"
)

// Known preference keys.
const (
	KeyBottomSheetOpen = "sspe-mobile-bottom-sheet-open"
	KeySelectedPlugin  = "sspe-mobile-selected-plugin"
	KeyToolbarState    = "sspe-toolbar-state"
)

// KV is the blob store behind the preferences.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// ToolbarState is what gets remembered about the toolbar between sessions.
type ToolbarState struct {
	ActiveMode    string `json:"activeMode"`
	ShapeID       string `json:"shapeId,omitempty"`
	CreateSubMode string `json:"createSubMode,omitempty"`
	TextType      string `json:"textType,omitempty"`
}

// ============================================================
// Prefs
// ============================================================

// Prefs stores JSON encoded preference fragments. Persistence is best
// effort: failures are logged and never returned.
type Prefs struct {
	kv KV
}

func New(kv KV) *Prefs {
	return &Prefs{kv: kv}
}

// Load decodes key into v and reports whether it did. A nil Prefs loads
// nothing.
func (p *Prefs) Load(ctx context.Context, key string, v any) bool {
	if p == nil || p.kv == nil {
		return false
	}
	raw, err := p.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warnf("[PREFS] read %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Warnf("[PREFS] decode %s: %v", key, err)
		return false
	}
	return true
}

// Save encodes v under key and reports whether it was stored.
func (p *Prefs) Save(ctx context.Context, key string, v any) bool {
	if p == nil || p.kv == nil {
		return false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Warnf("[PREFS] encode %s: %v", key, err)
		return false
	}
	if err := p.kv.Set(ctx, key, string(raw)); err != nil {
		log.Warnf("[PREFS] write %s: %v", key, err)
		return false
	}
	return true
}

// Raw returns the stored blob as is.
func (p *Prefs) Raw(ctx context.Context, key string) (string, bool) {
	if p == nil || p.kv == nil {
		return "", false
	}
	raw, err := p.kv.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return raw, true
}

// SaveRaw stores a blob after checking it is valid JSON.
func (p *Prefs) SaveRaw(ctx context.Context, key string, raw []byte) bool {
	if !json.Valid(raw) {
		log.Warnf("[PREFS] refusing non-JSON value for %s", key)
		return false
	}
	return p.Save(ctx, key, json.RawMessage(raw))
}
