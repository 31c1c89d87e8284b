package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

func m(x, y float64) models.Command { return models.Command{Command: models.MoveTo, X: x, Y: y} }
func l(x, y float64) models.Command { return models.Command{Command: models.LineTo, X: x, Y: y} }
func c(x1, y1, x2, y2, x, y float64) models.Command {
	return models.Command{Command: models.CurveTo, X1: x1, Y1: y1, X2: x2, Y2: y2, X: x, Y: y}
}

var z = models.Command{Command: models.ClosePath}

func TestParseAbsoluteAndRelative(t *testing.T) {
	got, err := ParsePathData("M10,10 L20 10 h5 v-5 l-5-5 Z")
	require.NoError(t, err)
	assert.Equal(t, [][]models.Command{{m(10, 10), l(20, 10), l(25, 10), l(25, 5), l(20, 0), z}}, got)
}

func TestImplicitLineToAfterMove(t *testing.T) {
	got, err := ParsePathData("m1 1 2 2 3 3")
	require.NoError(t, err)
	assert.Equal(t, [][]models.Command{{m(1, 1), l(3, 3), l(6, 6)}}, got)
}

func TestCompactNumbers(t *testing.T) {
	got, err := ParsePathData("M0-1.5.5.5L1e1,2")
	require.NoError(t, err)
	assert.Equal(t, [][]models.Command{{m(0, -1.5), l(0.5, 0.5), l(10, 2)}}, got)
}

func TestSmoothCubicReflectsControlPoint(t *testing.T) {
	got, err := ParsePathData("M0 0 C0 10 10 10 10 0 S20 -10 20 0")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c(10, -10, 20, -10, 20, 0), got[0][2])
}

func assertCubic(t *testing.T, want, got models.Command) {
	t.Helper()
	assert.Equal(t, want.Command, got.Command)
	for i, pair := range [][2]float64{
		{want.X1, got.X1}, {want.Y1, got.Y1}, {want.X2, got.X2}, {want.Y2, got.Y2}, {want.X, got.X}, {want.Y, got.Y},
	} {
		assert.InDelta(t, pair[0], pair[1], 1e-9, "coordinate %d", i)
	}
}

func TestQuadraticIsElevated(t *testing.T) {
	got, err := ParsePathData("M0 0 Q15 30 30 0 T60 0")
	require.NoError(t, err)
	require.Len(t, got[0], 3)
	assertCubic(t, c(10, 20, 20, 20, 30, 0), got[0][1])
	assertCubic(t, c(40, -20, 50, -20, 60, 0), got[0][2])
}

func TestSubPathsSplitOnMoveAndAfterClose(t *testing.T) {
	got, err := ParsePathData("M0 0 L10 0 Z L5 5 M20 20 L30 30")
	require.NoError(t, err)
	assert.Equal(t, [][]models.Command{
		{m(0, 0), l(10, 0), z},
		{m(0, 0), l(5, 5)},
		{m(20, 20), l(30, 30)},
	}, got)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		d    string
		want error
	}{
		{"", ErrEmptyPath},
		{"   ", ErrEmptyPath},
		{"L10 10", ErrSyntax},
		{"M10", ErrSyntax},
		{"M0 0 X1 1", ErrSyntax},
		{"M0 0 L1 x", ErrSyntax},
		{"10 10", ErrSyntax},
		{"M0 0 A1 1 0 0 1 5 5", ErrUnsupported},
	}
	for _, tc := range cases {
		_, err := ParsePathData(tc.d)
		assert.ErrorIs(t, err, tc.want, "d=%q", tc.d)
	}
}
