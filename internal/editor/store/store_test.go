package store

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
	"github.com/regalagram/sspe-sub013/internal/editor/selection"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(opts ...Option) *Store {
	return New(append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
}

func ptr[T any](v T) *T { return &v }

func cmd(t models.CommandType, x, y float64) models.Command {
	return models.Command{Command: t, X: x, Y: y}
}

// newLine builds a path with one subpath M(x0,y0) followed by L commands.
func newLine(t *testing.T, s *Store, pts ...models.Point) (pathID, subPathID string, cmdIDs []string) {
	t.Helper()
	pathID, subPathID = s.AddPath(nil)
	for i, p := range pts {
		kind := models.LineTo
		if i == 0 {
			kind = models.MoveTo
		}
		id := s.AddCommand(subPathID, cmd(kind, p.X, p.Y))
		require.NotEmpty(t, id)
		cmdIDs = append(cmdIDs, id)
	}
	return pathID, subPathID, cmdIDs
}

// ============================================================
// Commands
// ============================================================

func TestAddCommandMoveToStartsNewSubPath(t *testing.T) {
	s := newTestStore()
	pathID, spA, _ := newLine(t, s, models.Point{X: 0, Y: 0})

	s.AddCommand(spA, cmd(models.LineTo, 5, 5))
	before, ok := s.FindSubPath(spA)
	require.True(t, ok)

	mID := s.AddCommand(spA, cmd(models.MoveTo, 1, 1))
	require.NotEmpty(t, mID)

	p, ok := s.FindPath(pathID)
	require.True(t, ok)
	require.Len(t, p.SubPaths, 2)
	assert.Equal(t, before, p.SubPaths[0])
	require.Len(t, p.SubPaths[1].Commands, 1)
	assert.Equal(t, mID, p.SubPaths[1].Commands[0].ID)
	assert.Equal(t, models.MoveTo, p.SubPaths[1].Commands[0].Command)
}

func TestAddCommandToEmptySubPathCoercesMoveTo(t *testing.T) {
	s := newTestStore()
	_, sp := s.AddPath(nil)

	id := s.AddCommand(sp, cmd(models.LineTo, 5, 5))
	c, ok := s.FindCommand(id)
	require.True(t, ok)
	assert.Equal(t, models.MoveTo, c.Command)
	assert.Equal(t, models.Point{X: 5, Y: 5}, c.Point())
}

func TestUpdateCommandNoOpKeepsRenderVersionAndBox(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 10}, models.Point{X: 20, Y: 0})
	require.True(t, s.SelectMany(selection.Command, ids, false))
	box := s.Selection().SelectionBox
	require.NotNil(t, box)
	version := s.RenderVersion()

	changed := s.UpdateCommand(ids[1], models.CommandUpdate{X: ptr(10.001), Y: ptr(9.999)})

	assert.False(t, changed)
	assert.Equal(t, version, s.RenderVersion())
	assert.Equal(t, box, s.Selection().SelectionBox)
}

func TestUpdateCommandRealChangeBumpsVersionAndBox(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 10})
	require.True(t, s.SelectMany(selection.Command, ids, false))
	version := s.RenderVersion()

	require.True(t, s.UpdateCommand(ids[1], models.CommandUpdate{X: ptr(40.0)}))

	assert.Equal(t, version+1, s.RenderVersion())
	assert.Equal(t, &models.BBox{X: 0, Y: 0, Width: 40, Height: 10}, s.Selection().SelectionBox)
}

func TestUpdateCommandRoundsToPrecision(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 0, Y: 0})

	require.True(t, s.UpdateCommand(ids[0], models.CommandUpdate{X: ptr(1.23456)}))
	c, _ := s.FindCommand(ids[0])
	assert.Equal(t, 1.23, c.X)
}

func TestMoveCommandShiftsControlPoints(t *testing.T) {
	s := newTestStore()
	_, sp := s.AddPath(nil)
	s.AddCommand(sp, cmd(models.MoveTo, 0, 0))
	c1 := s.AddCommand(sp, models.Command{Command: models.CurveTo, X1: 1, Y1: 1, X2: 9, Y2: 9, X: 10, Y: 10})
	c2 := s.AddCommand(sp, models.Command{Command: models.CurveTo, X1: 11, Y1: 11, X2: 19, Y2: 19, X: 20, Y: 20})

	require.True(t, s.MoveCommand(c1, models.Point{X: 15, Y: 10}))

	first, _ := s.FindCommand(c1)
	second, _ := s.FindCommand(c2)
	assert.Equal(t, models.Command{ID: c1, Command: models.CurveTo, X1: 1, Y1: 1, X2: 14, Y2: 9, X: 15, Y: 10}, first)
	assert.Equal(t, 16.0, second.X1)
	assert.Equal(t, 11.0, second.Y1)
	assert.Equal(t, 19.0, second.X2, "trailing handle of the next curve stays")
}

func TestMoveCommandRejectsNonFinite(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 1, Y: 1})
	version := s.RenderVersion()

	assert.False(t, s.MoveCommand(ids[0], models.Point{X: math.NaN(), Y: 0}))
	c, _ := s.FindCommand(ids[0])
	assert.Equal(t, models.Point{X: 1, Y: 1}, c.Point())
	assert.Equal(t, version, s.RenderVersion())
}

func TestReplaceSubPathCommandsRegeneratesIDs(t *testing.T) {
	s := newTestStore()
	_, sp, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 5, Y: 5})
	require.True(t, s.Select(selection.Command, ids[1], false))

	require.True(t, s.ReplaceSubPathCommands(sp, []models.Command{
		cmd(models.LineTo, 1, 1), cmd(models.LineTo, 2, 2),
	}))

	got, _ := s.FindSubPath(sp)
	require.Len(t, got.Commands, 2)
	assert.Equal(t, models.MoveTo, got.Commands[0].Command)
	for _, c := range got.Commands {
		assert.NotContains(t, ids, c.ID)
	}
	assert.Empty(t, s.Selection().SelectedCommands)
}

func TestRemoveCommandRecoercesLeadingMove(t *testing.T) {
	s := newTestStore()
	_, sp, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 5, Y: 5})

	require.True(t, s.RemoveCommand(ids[0]))
	got, _ := s.FindSubPath(sp)
	require.Len(t, got.Commands, 1)
	assert.Equal(t, ids[1], got.Commands[0].ID)
	assert.Equal(t, models.MoveTo, got.Commands[0].Command)
}

// ============================================================
// Cascades
// ============================================================

func TestRemoveLastSubPathCascadesTextPathsAndSelection(t *testing.T) {
	s := newTestStore()
	pathID, sp, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 5, Y: 5})
	tp := s.AddTextPath(pathID, "along", nil)
	require.NotEmpty(t, tp)
	require.True(t, s.SelectMany(selection.Command, ids, false))
	require.True(t, s.Select(selection.SubPath, sp, true))
	require.True(t, s.Select(selection.TextPath, tp, true))

	require.True(t, s.RemoveSubPath(sp))

	doc := s.Document()
	assert.Empty(t, doc.Paths)
	assert.Empty(t, doc.TextPaths)
	assert.True(t, selection.IsEmpty(s.Selection()))
	assert.Nil(t, s.Selection().SelectionBox)
}

func TestRemovePathPrunesNestedSelection(t *testing.T) {
	s := newTestStore()
	pathID, sp, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 5, Y: 5})
	other, _, _ := newLine(t, s, models.Point{X: 50, Y: 50})
	require.True(t, s.Select(selection.Command, ids[0], false))
	require.True(t, s.Select(selection.SubPath, sp, true))
	require.True(t, s.Select(selection.Path, other, true))

	require.True(t, s.RemovePath(pathID))

	sel := s.Selection()
	assert.Empty(t, sel.SelectedCommands)
	assert.Empty(t, sel.SelectedSubPaths)
	assert.Equal(t, []string{other}, sel.SelectedPaths)
}

func TestRemovedElementLeavesGroups(t *testing.T) {
	s := newTestStore()
	a, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	b, _, _ := newLine(t, s, models.Point{X: 1, Y: 1})
	g := s.CreateGroup("", []models.GroupChild{{ID: a, Type: models.KindPath}, {ID: b, Type: models.KindPath}})
	require.NotEmpty(t, g)

	require.True(t, s.RemovePath(a))
	grp, ok := s.FindGroup(g)
	require.True(t, ok)
	assert.Equal(t, []models.GroupChild{{ID: b, Type: models.KindPath}}, grp.Children)
}

func TestAnimationsSurviveTargetRemoval(t *testing.T) {
	s := newTestStore()
	pathID, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	anim := s.AddAnimation(models.Animation{TargetElementID: pathID, Type: "animate", AttributeName: "opacity"})

	require.True(t, s.RemovePath(pathID))
	got := s.AnimationsFor(pathID)
	require.Len(t, got, 1)
	assert.Equal(t, anim, got[0].ID)
}

// ============================================================
// Selection
// ============================================================

func TestSelectIsExclusiveByKind(t *testing.T) {
	s := newTestStore()
	p, _, ids := newLine(t, s, models.Point{X: 0, Y: 0})
	text := s.AddText(10, 10, "hi", nil)

	require.True(t, s.Select(selection.Path, p, false))
	require.True(t, s.Select(selection.Text, text, true))
	assert.Equal(t, []string{p}, s.Selection().SelectedPaths)

	require.True(t, s.Select(selection.Command, ids[0], false))
	sel := s.Selection()
	assert.Empty(t, sel.SelectedPaths)
	assert.Empty(t, sel.SelectedTexts)
	assert.Equal(t, []string{ids[0]}, sel.SelectedCommands)
}

func TestSelectUnknownIDIsNoOp(t *testing.T) {
	s := newTestStore()
	assert.False(t, s.Select(selection.Path, "missing", false))
}

func TestSelectInBoxReturnsMixedKinds(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 10, Y: 10}, models.Point{X: 20, Y: 20})
	text := s.AddText(30, 40, "ab", nil)
	img := s.AddImage(models.Image{X: 50, Y: 50, Width: 10, Height: 10})
	_, _, outside := newLine(t, s, models.Point{X: 90, Y: 90}, models.Point{X: 500, Y: 500})

	require.True(t, s.SelectInBox(models.BBox{X: 0, Y: 0, Width: 100, Height: 100}, false))

	sel := s.Selection()
	assert.Equal(t, []string{p}, sel.SelectedPaths)
	assert.Equal(t, []string{text}, sel.SelectedTexts)
	assert.Equal(t, []string{img}, sel.SelectedImages)
	assert.Equal(t, []string{outside[0]}, sel.SelectedCommands)
}

func TestSelectionLockedGroupMembersCannotBeSelected(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	g := s.CreateGroup("locked", []models.GroupChild{{ID: p, Type: models.KindPath}})
	require.True(t, s.Select(selection.Path, p, false))

	require.True(t, s.SetGroupLockLevel(g, models.LockSelection))
	assert.Empty(t, s.Selection().SelectedPaths)
	assert.False(t, s.Select(selection.Path, p, false))
}

func TestDeleteSelectionRemovesEverySelectedKind(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	text := s.AddText(1, 1, "x", nil)
	require.True(t, s.Select(selection.Path, p, false))
	require.True(t, s.Select(selection.Text, text, true))

	require.True(t, s.DeleteSelection())
	doc := s.Document()
	assert.Empty(t, doc.Paths)
	assert.Empty(t, doc.Texts)
	assert.True(t, selection.IsEmpty(s.Selection()))
}

// ============================================================
// Arrangement
// ============================================================

func TestDistributeHorizontallyScenario(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 0, Y: 3}, models.Point{X: 10, Y: 7}, models.Point{X: 100, Y: 1})
	require.True(t, s.SelectMany(selection.Command, ids, false))

	require.True(t, s.DistributeCommandsHorizontally())

	var xs []float64
	for _, id := range ids {
		c, _ := s.FindCommand(id)
		xs = append(xs, c.X)
	}
	assert.Equal(t, []float64{0, 50, 100}, xs)
}

func TestDistributeKeepsAnchorsAndSpacesEvenly(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s,
		models.Point{X: 40, Y: 0}, models.Point{X: -20, Y: 0}, models.Point{X: 7, Y: 0}, models.Point{X: 1, Y: 0})
	require.True(t, s.SelectMany(selection.Command, ids, false))

	require.True(t, s.DistributeCommandsHorizontally())

	got := map[string]float64{}
	for _, id := range ids {
		c, _ := s.FindCommand(id)
		got[id] = c.X
	}
	assert.Equal(t, 40.0, got[ids[0]])
	assert.Equal(t, -20.0, got[ids[1]])
	assert.Equal(t, 0.0, got[ids[3]])
	assert.Equal(t, 20.0, got[ids[2]])
}

func TestDistributeNeedsThreePositions(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 0}, models.Point{X: 10, Y: 0})
	require.True(t, s.SelectMany(selection.Command, ids, false))

	assert.False(t, s.DistributeCommandsHorizontally())
}

func TestAlignLeftMovesCoincidentPointsOnce(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 5, Y: 0}, models.Point{X: 30, Y: 10}, models.Point{X: 30, Y: 10})
	require.True(t, s.SelectMany(selection.Command, ids, false))

	require.True(t, s.AlignCommandsLeft())
	for _, id := range ids {
		c, _ := s.FindCommand(id)
		assert.Equal(t, 5.0, c.X)
	}
	c, _ := s.FindCommand(ids[2])
	assert.Equal(t, 10.0, c.Y)
}

func TestAlignNeedsTwoPositions(t *testing.T) {
	s := newTestStore()
	_, _, ids := newLine(t, s, models.Point{X: 5, Y: 5}, models.Point{X: 5, Y: 5})
	require.True(t, s.SelectMany(selection.Command, ids, false))
	assert.False(t, s.AlignCommandsCenter())
}

func TestAlignSkipsMovementSyncMembers(t *testing.T) {
	s := newTestStore()
	_, _, loose := newLine(t, s, models.Point{X: 0, Y: 0}, models.Point{X: 10, Y: 10})
	rigid, _, synced := newLine(t, s, models.Point{X: 20, Y: 0}, models.Point{X: 30, Y: 5})
	g := s.CreateGroup("", []models.GroupChild{{ID: rigid, Type: models.KindPath}})
	require.True(t, s.SetGroupLockLevel(g, models.LockMovementSync))
	require.True(t, s.SelectMany(selection.Command, append(append([]string{}, loose...), synced...), false))

	require.True(t, s.AlignCommandsLeft())
	c, _ := s.FindCommand(loose[1])
	assert.Equal(t, 0.0, c.X)
	for i, want := range []float64{20, 30} {
		c, _ := s.FindCommand(synced[i])
		assert.Equal(t, want, c.X)
	}
}

// ============================================================
// History
// ============================================================

func TestUndoRedoRestoresDocumentAndSelection(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	require.True(t, s.Select(selection.Path, p, false))
	before := s.Snapshot()

	s.PushToHistory()
	require.True(t, s.MovePath(p, models.Point{X: 10, Y: 0}))
	s.ClearSelection()

	require.True(t, s.Undo())
	after := s.Snapshot()
	assert.Equal(t, before.Document, after.Document)
	assert.Equal(t, before.Selection.SelectedPaths, after.Selection.SelectedPaths)

	require.True(t, s.Redo())
	moved, _ := s.FindPath(p)
	assert.Equal(t, 10.0, moved.SubPaths[0].Commands[0].X)
}

func TestUndoRedoAtBoundariesAreNoOps(t *testing.T) {
	s := newTestStore()
	newLine(t, s, models.Point{X: 0, Y: 0})
	before := s.Snapshot()

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())
	assert.Equal(t, before, s.Snapshot())
}

func TestNewPushDiscardsRedoBranch(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})

	s.PushToHistory()
	s.MovePath(p, models.Point{X: 1})
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())
	s.PushToHistory()

	assert.False(t, s.CanRedo())
}

func TestHistoryDebugListsChangedCollections(t *testing.T) {
	s := newTestStore()
	s.PushToHistory()
	s.AddText(0, 0, "x", nil)

	entries := s.HistoryDebug()
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"Texts"}, entries[1].Changes)
	assert.True(t, entries[1].Current)
}

// ============================================================
// Groups & movement
// ============================================================

func TestMovementSyncGroupTranslatesOncePerBatch(t *testing.T) {
	s := newTestStore()
	a, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	b, _, _ := newLine(t, s, models.Point{X: 10, Y: 10})
	g := s.CreateGroup("sync", []models.GroupChild{{ID: a, Type: models.KindPath}, {ID: b, Type: models.KindPath}})
	require.True(t, s.SetGroupLockLevel(g, models.LockMovementSync))

	s.BeginMoveBatch()
	s.MovePath(a, models.Point{X: 5, Y: 0})
	s.MovePath(b, models.Point{X: 5, Y: 0})
	s.EndMoveBatch()

	pa, _ := s.FindPath(a)
	pb, _ := s.FindPath(b)
	assert.Equal(t, 5.0, pa.SubPaths[0].Commands[0].X)
	assert.Equal(t, 15.0, pb.SubPaths[0].Commands[0].X)
}

func TestEditingLockBlocksMemberEdits(t *testing.T) {
	s := newTestStore()
	p, _, ids := newLine(t, s, models.Point{X: 0, Y: 0})
	g := s.CreateGroup("", []models.GroupChild{{ID: p, Type: models.KindPath}})
	require.True(t, s.SetGroupLockLevel(g, models.LockEditing))

	assert.False(t, s.UpdateCommand(ids[0], models.CommandUpdate{X: ptr(3.0)}))
	assert.True(t, s.MovePath(p, models.Point{X: 1}))

	require.True(t, s.SetGroupLockLevel(g, models.LockFull))
	assert.False(t, s.MovePath(p, models.Point{X: 1}))
}

func TestLockedPathRefusesEdits(t *testing.T) {
	s := newTestStore()
	p, sp, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	require.True(t, s.SetPathLocked(p, true))

	assert.Empty(t, s.AddCommand(sp, cmd(models.LineTo, 1, 1)))
	assert.False(t, s.MovePath(p, models.Point{X: 1}))
}

func TestUngroupReleasesChildrenToParent(t *testing.T) {
	s := newTestStore()
	a, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	inner := s.CreateGroup("inner", []models.GroupChild{{ID: a, Type: models.KindPath}})
	outer := s.CreateGroup("outer", []models.GroupChild{{ID: inner, Type: models.KindGroup}})

	require.True(t, s.Ungroup(inner))
	g, ok := s.FindGroup(outer)
	require.True(t, ok)
	assert.Equal(t, []models.GroupChild{{ID: a, Type: models.KindPath}}, g.Children)
}

func TestGroupCannotContainItsAncestor(t *testing.T) {
	s := newTestStore()
	a, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	inner := s.CreateGroup("inner", []models.GroupChild{{ID: a, Type: models.KindPath}})
	outer := s.CreateGroup("outer", []models.GroupChild{{ID: inner, Type: models.KindGroup}})

	assert.False(t, s.AddChildToGroup(inner, models.GroupChild{ID: outer, Type: models.KindGroup}))
}

func TestRemoveRefusesLockedEntities(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	require.True(t, s.SetPathLocked(p, true))
	assert.False(t, s.RemovePath(p))
	_, ok := s.FindPath(p)
	assert.True(t, ok)

	txt := s.AddText(0, 0, "a", nil)
	require.True(t, s.SetTextLocked(txt, true))
	assert.False(t, s.RemoveText(txt))
	_, ok = s.FindText(txt)
	assert.True(t, ok)

	img := s.AddImage(models.Image{Width: 10, Height: 10, Locked: true})
	assert.False(t, s.RemoveImage(img))
	assert.Len(t, s.Document().Images, 1)

	require.True(t, s.SetPathLocked(p, false))
	assert.True(t, s.RemovePath(p))
}

func TestRemoveRefusesMembersOfLockedGroups(t *testing.T) {
	s := newTestStore()
	ref, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	member := s.AddText(0, 0, "a", nil)
	tp := s.AddTextPath(ref, "along", nil)
	require.NotEmpty(t, tp)
	g := s.CreateGroup("", []models.GroupChild{
		{ID: member, Type: models.KindText},
		{ID: tp, Type: models.KindTextPath},
	})
	require.True(t, s.SetGroupLockLevel(g, models.LockFull))

	assert.False(t, s.RemoveGroup(g, true))
	assert.False(t, s.RemoveGroup(g, false))
	assert.False(t, s.RemoveText(member))
	assert.False(t, s.RemoveTextPath(tp))
	_, ok := s.FindText(member)
	assert.True(t, ok, "member survives")
	_, ok = s.FindGroup(g)
	assert.True(t, ok)

	require.True(t, s.SetGroupLockLevel(g, models.LockEditing))
	assert.False(t, s.RemoveTextPath(tp))
	assert.True(t, s.RemoveGroup(g, true))
	_, ok = s.FindText(member)
	assert.False(t, ok)
}

func TestRemoveGroupKeepsLockedMembers(t *testing.T) {
	s := newTestStore()
	locked, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	free := s.AddText(0, 0, "a", nil)
	g := s.CreateGroup("", []models.GroupChild{
		{ID: locked, Type: models.KindPath},
		{ID: free, Type: models.KindText},
	})
	require.True(t, s.SetPathLocked(locked, true))

	require.True(t, s.RemoveGroup(g, true))
	_, ok := s.FindPath(locked)
	assert.True(t, ok)
	_, ok = s.FindText(free)
	assert.False(t, ok)
	assert.Empty(t, s.Document().Groups)
}

// ============================================================
// Texts
// ============================================================

func TestSetMultilineContentReconcilesSpans(t *testing.T) {
	s := newTestStore()
	id := s.AddMultilineText(0, 0, []string{"a", "b", "c"}, nil)
	orig, _ := s.FindText(id)

	require.True(t, s.SetMultilineContent(id, []string{"x"}))
	got, _ := s.FindText(id)
	require.Len(t, got.Spans, 1)
	assert.Equal(t, orig.Spans[0].ID, got.Spans[0].ID)
	assert.Equal(t, "x", got.Spans[0].Content)

	require.True(t, s.UpdateTextContent(id, "x\ny"))
	got, _ = s.FindText(id)
	assert.Equal(t, []string{"x", "y"}, got.Lines())

	require.True(t, s.SetMultilineContent(id, nil))
	got, _ = s.FindText(id)
	assert.Len(t, got.Spans, 1, "at least one span remains")
	assert.Equal(t, "", got.Spans[0].Content)
}

func TestLockedTextRefusesContentUpdate(t *testing.T) {
	s := newTestStore()
	id := s.AddText(0, 0, "a", nil)
	require.True(t, s.SetTextLocked(id, true))
	assert.False(t, s.UpdateTextContent(id, "b"))
}

// ============================================================
// Styles, viewport, listeners
// ============================================================

func TestStyleRegistersGradients(t *testing.T) {
	preset := models.Gradient{Kind: models.GradientLinear, Stops: []models.GradientStop{{Offset: 0, Color: "#fff"}}}
	s := newTestStore(WithPresets(func(id string) (models.Gradient, bool) {
		return preset, id == "sunset"
	}))
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})

	require.True(t, s.UpdatePathStyle(p, models.StyleUpdate{Fill: &models.Paint{Value: "url(#sunset)"}}))
	require.True(t, s.UpdatePathStyle(p, models.StyleUpdate{Fill: &models.Paint{Value: "url(#unknown)"}}))
	inline := &models.Gradient{ID: "g-inline", Kind: models.GradientRadial}
	require.True(t, s.UpdatePathStyle(p, models.StyleUpdate{Stroke: &models.Paint{Gradient: inline}}))
	require.True(t, s.UpdatePathStyle(p, models.StyleUpdate{Stroke: &models.Paint{Gradient: inline}}))

	doc := s.Document()
	require.Len(t, doc.Gradients, 2)
	assert.Equal(t, "sunset", doc.Gradients[0].ID)
	assert.Equal(t, "g-inline", doc.Gradients[1].ID)
}

func TestInlineGradientWithoutIDRegistersOnce(t *testing.T) {
	s := newTestStore()
	p, _, _ := newLine(t, s, models.Point{X: 0, Y: 0})
	grad := &models.Gradient{Kind: models.GradientLinear}

	require.True(t, s.UpdatePathStyle(p, models.StyleUpdate{Fill: &models.Paint{Gradient: grad}}))
	s.UpdatePathStyle(p, models.StyleUpdate{StrokeWidth: ptr(2.0)})
	s.UpdatePathStyle(p, models.StyleUpdate{StrokeWidth: ptr(3.0)})

	doc := s.Document()
	require.Len(t, doc.Gradients, 1)
	path, _ := s.FindPath(p)
	require.NotNil(t, path.Style.Fill.Gradient)
	assert.Equal(t, doc.Gradients[0].ID, path.Style.Fill.Gradient.ID)
	assert.NotEmpty(t, doc.Gradients[0].ID)
	assert.Empty(t, grad.ID, "caller's gradient is not modified")
}

func TestViewportRejectsNonFinite(t *testing.T) {
	s := newTestStore()
	require.True(t, s.SetZoom(2))

	assert.False(t, s.SetZoom(math.NaN()))
	assert.False(t, s.SetZoom(math.Inf(1)))
	assert.False(t, s.SetPan(models.Point{X: math.Inf(-1)}))
	assert.Equal(t, 2.0, s.Viewport().Zoom)
	assert.Equal(t, models.Point{}, s.Viewport().Pan)
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	s := newTestStore()
	anchor := models.Point{X: 100, Y: 50}
	before := s.ScreenToCanvas(anchor)

	require.True(t, s.ZoomAt(2, anchor))
	assert.Equal(t, before, s.ScreenToCanvas(anchor))
	assert.Equal(t, 2.0, s.Viewport().Zoom)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	s := newTestStore()
	var got []Change
	s.Subscribe(func(Change) { panic("boom") })
	unsubscribe := s.Subscribe(func(ch Change) { got = append(got, ch) })

	s.AddPath(nil)
	unsubscribe()
	s.AddPath(nil)

	assert.Equal(t, []Change{ChangeDocument}, got)
}
