// Package input defines the framework-neutral pointer and key events the
// editor core consumes.
package input

import "github.com/regalagram/sspe-sub013/internal/editor/models"

type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// TargetKind names what was under the pointer when the event fired.
type TargetKind string

const (
	TargetCanvas       TargetKind = ""
	TargetPath         TargetKind = "path"
	TargetCommand      TargetKind = "command"
	TargetControlPoint TargetKind = "controlPoint"
	TargetText         TargetKind = "text"
	TargetImage        TargetKind = "image"
	TargetGroup        TargetKind = "group"
	TargetHandle       TargetKind = "handle"
)

type Target struct {
	Kind TargetKind `json:"kind,omitempty"`
	ID   string     `json:"id,omitempty"`
}

// PointerEvent carries a position in document coordinates.
type PointerEvent struct {
	Point     models.Point `json:"point"`
	Button    Button       `json:"button"`
	PointerID int          `json:"pointerId"`
	Shift     bool         `json:"shift"`
	Ctrl      bool         `json:"ctrl"`
	Alt       bool         `json:"alt"`
	Target    Target       `json:"target"`
}

type KeyEvent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Meta  bool   `json:"meta"`
}

// Primary reports whether Ctrl or Meta is held.
func (k KeyEvent) Primary() bool { return k.Ctrl || k.Meta }
