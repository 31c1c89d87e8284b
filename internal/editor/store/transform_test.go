package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

func TestMoveSelectionSkipsCommandsOfSelectedPaths(t *testing.T) {
	s := newTestStore()
	pathID, _, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0})
	require.True(t, s.Select(selection.Path, pathID, false))
	require.True(t, s.Select(selection.Command, ids[1], true))

	require.True(t, s.MoveSelection(models.Point{X: 5, Y: 5}))

	c, _ := s.FindCommand(ids[1])
	assert.Equal(t, models.Point{X: 15, Y: 5}, c.Point())
}

func TestMoveSelectionMovesSyncGroupOnce(t *testing.T) {
	s := newTestStore()
	a, _, aIDs := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0})
	b, _, bIDs := newLine(t, s, models.Point{X: 0, Y: 20}, models.Point{X: 10, Y: 20})
	g := s.CreateGroup("g", []models.GroupChild{{ID: a, Type: models.KindPath}, {ID: b, Type: models.KindPath}})
	require.True(t, s.SetGroupLockLevel(g, models.LockMovementSync))
	require.True(t, s.SelectMany(selection.Path, []string{a, b}, false))

	require.True(t, s.MoveSelection(models.Point{X: 1, Y: 1}))

	ca, _ := s.FindCommand(aIDs[0])
	cb, _ := s.FindCommand(bIDs[0])
	assert.Equal(t, models.Point{X: 1, Y: 1}, ca.Point())
	assert.Equal(t, models.Point{X: 1, Y: 21}, cb.Point())
}

func TestMoveSelectionRejectsNonFinite(t *testing.T) {
	s := newTestStore()
	pathID, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	s.Select(selection.Path, pathID, false)
	v := s.RenderVersion()

	assert.False(t, s.MoveSelection(models.Point{X: math.Inf(1)}))
	assert.False(t, s.MoveSelection(models.Point{}))
	assert.Equal(t, v, s.RenderVersion())
}

func TestScaleSelectionAboutOrigin(t *testing.T) {
	s := newTestStore()
	pathID, _, ids := newLine(t, s, models.Point{X: 10, Y: 10}, models.Point{X: 20, Y: 30})
	img := s.AddImage(models.Image{X: 10, Y: 10, Width: 10, Height: 10, Href: "a.png"})
	s.Select(selection.Path, pathID, false)
	s.Select(selection.Image, img, true)

	require.True(t, s.ScaleSelection(models.Point{X: 10, Y: 10}, 2, -1))

	c, _ := s.FindCommand(ids[1])
	assert.Equal(t, models.Point{X: 30, Y: -10}, c.Point())
	doc := s.Document()
	require.Len(t, doc.Images, 1)
	assert.Equal(t, models.Image{ID: img, X: 10, Y: 0, Width: 20, Height: 10, Href: "a.png"}, doc.Images[0])
}

func TestScaleSelectionRejectsDegenerateFactors(t *testing.T) {
	s := newTestStore()
	pathID, _, _ := newLine(t, s, models.Point{X: 10, Y: 10})
	s.Select(selection.Path, pathID, false)

	assert.False(t, s.ScaleSelection(models.Point{}, 0, 1))
	assert.False(t, s.ScaleSelection(models.Point{}, math.NaN(), 1))
	assert.False(t, s.ScaleSelection(models.Point{}, 1, 1))
}

func TestScaleSelectionSkipsLockedPaths(t *testing.T) {
	s := newTestStore()
	pathID, _, ids := newLine(t, s, models.Point{X: 10, Y: 10})
	s.Select(selection.Path, pathID, false)
	s.SetPathLocked(pathID, true)

	assert.False(t, s.ScaleSelection(models.Point{}, 2, 2))
	c, _ := s.FindCommand(ids[0])
	assert.Equal(t, models.Point{X: 10, Y: 10}, c.Point())
}
