package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/regalagram/sspe-sub013/internal/editor/models"
)

var (
	ErrEmptyPath   = errors.New("empty path")
	ErrSyntax      = errors.New("path syntax error")
	ErrUnsupported = errors.New("unsupported path command")
)

// ============================================================
// Path Parser
// ============================================================

type pathState struct {
	cur, start models.Point
	// reflection sources for S and T
	lastCubic *models.Point
	lastQuad  *models.Point

	subPaths [][]models.Command
	closed   bool
}

func (st *pathState) emit(c models.Command) {
	if c.Command == models.MoveTo || st.closed || len(st.subPaths) == 0 {
		if c.Command != models.MoveTo {
			// drawing after a close starts at the subpath origin
			st.subPaths = append(st.subPaths, []models.Command{{Command: models.MoveTo, X: st.start.X, Y: st.start.Y}})
		} else {
			st.subPaths = append(st.subPaths, nil)
		}
		st.closed = false
	}
	n := len(st.subPaths) - 1
	st.subPaths[n] = append(st.subPaths[n], c)
}

// ParsePathData парсит атрибут d в подпути. Every command is normalized to
// absolute M, L, C or Z; quadratic segments are elevated to cubics.
func ParsePathData(d string) ([][]models.Command, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, ErrEmptyPath
	}

	sc := &scanner{b: []byte(d)}
	st := &pathState{}
	var cmd byte

	for {
		sc.skip()
		if sc.done() {
			break
		}
		if c, ok := sc.command(); ok {
			cmd = c
		} else if cmd == 0 {
			return nil, fmt.Errorf("%w: expected command at offset %d", ErrSyntax, sc.i)
		}
		if cmd != 'M' && cmd != 'm' && len(st.subPaths) == 0 {
			return nil, fmt.Errorf("%w: path must start with a moveto", ErrSyntax)
		}

		rel := cmd >= 'a' && cmd <= 'z'
		abs := func(x, y float64) models.Point {
			if rel {
				return models.Point{X: st.cur.X + x, Y: st.cur.Y + y}
			}
			return models.Point{X: x, Y: y}
		}

		switch cmd {
		case 'Z', 'z':
			st.emit(models.Command{Command: models.ClosePath})
			st.cur = st.start
			st.closed = true
			st.lastCubic, st.lastQuad = nil, nil
			cmd = 0
			continue

		case 'M', 'm':
			v, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			p := abs(v[0], v[1])
			st.closed = false
			st.emit(models.Command{Command: models.MoveTo, X: p.X, Y: p.Y})
			st.cur, st.start = p, p
			st.lastCubic, st.lastQuad = nil, nil
			// further pairs are implicit linetos
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
			continue

		case 'L', 'l':
			v, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			st.line(abs(v[0], v[1]))

		case 'H', 'h':
			v, err := sc.numbers(1)
			if err != nil {
				return nil, err
			}
			x := v[0]
			if rel {
				x += st.cur.X
			}
			st.line(models.Point{X: x, Y: st.cur.Y})

		case 'V', 'v':
			v, err := sc.numbers(1)
			if err != nil {
				return nil, err
			}
			y := v[0]
			if rel {
				y += st.cur.Y
			}
			st.line(models.Point{X: st.cur.X, Y: y})

		case 'C', 'c':
			v, err := sc.numbers(6)
			if err != nil {
				return nil, err
			}
			st.cubic(abs(v[0], v[1]), abs(v[2], v[3]), abs(v[4], v[5]))

		case 'S', 's':
			v, err := sc.numbers(4)
			if err != nil {
				return nil, err
			}
			c1 := st.cur
			if st.lastCubic != nil {
				c1 = reflect(*st.lastCubic, st.cur)
			}
			st.cubic(c1, abs(v[0], v[1]), abs(v[2], v[3]))

		case 'Q', 'q':
			v, err := sc.numbers(4)
			if err != nil {
				return nil, err
			}
			st.quad(abs(v[0], v[1]), abs(v[2], v[3]))

		case 'T', 't':
			v, err := sc.numbers(2)
			if err != nil {
				return nil, err
			}
			q := st.cur
			if st.lastQuad != nil {
				q = reflect(*st.lastQuad, st.cur)
			}
			st.quad(q, abs(v[0], v[1]))

		case 'A', 'a':
			return nil, fmt.Errorf("%w: %c", ErrUnsupported, cmd)

		default:
			return nil, fmt.Errorf("%w: unknown command %q", ErrSyntax, cmd)
		}
	}

	if len(st.subPaths) == 0 {
		return nil, ErrEmptyPath
	}
	return st.subPaths, nil
}

func (st *pathState) line(p models.Point) {
	st.emit(models.Command{Command: models.LineTo, X: p.X, Y: p.Y})
	st.cur = p
	st.lastCubic, st.lastQuad = nil, nil
}

func (st *pathState) cubic(c1, c2, p models.Point) {
	st.emit(models.Command{Command: models.CurveTo, X1: c1.X, Y1: c1.Y, X2: c2.X, Y2: c2.Y, X: p.X, Y: p.Y})
	st.cur = p
	st.lastCubic, st.lastQuad = &c2, nil
}

// quad elevates a quadratic segment to the equivalent cubic.
func (st *pathState) quad(q, p models.Point) {
	from := st.cur
	c1 := models.Point{X: from.X + 2.0/3.0*(q.X-from.X), Y: from.Y + 2.0/3.0*(q.Y-from.Y)}
	c2 := models.Point{X: p.X + 2.0/3.0*(q.X-p.X), Y: p.Y + 2.0/3.0*(q.Y-p.Y)}
	st.emit(models.Command{Command: models.CurveTo, X1: c1.X, Y1: c1.Y, X2: c2.X, Y2: c2.Y, X: p.X, Y: p.Y})
	st.cur = p
	st.lastCubic, st.lastQuad = nil, &q
}

func reflect(ctrl, about models.Point) models.Point {
	return models.Point{X: 2*about.X - ctrl.X, Y: 2*about.Y - ctrl.Y}
}

// ============================================================
// Scanner
// ============================================================

type scanner struct {
	b []byte
	i int
}

func (s *scanner) done() bool { return s.i >= len(s.b) }

func (s *scanner) skip() {
	for s.i < len(s.b) {
		switch s.b[s.i] {
		case ' ', '\t', '\n', '\r', '\f', ',':
			s.i++
		default:
			return
		}
	}
}

func (s *scanner) command() (byte, bool) {
	c := s.b[s.i]
	if (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') && c != 'e' && c != 'E' {
		s.i++
		return c, true
	}
	return 0, false
}

func (s *scanner) number() (float64, error) {
	s.skip()
	if s.done() {
		return 0, fmt.Errorf("%w: unexpected end of path", ErrSyntax)
	}
	v, n := strconv.ParseFloat(s.b[s.i:])
	if n == 0 {
		return 0, fmt.Errorf("%w: expected number at offset %d", ErrSyntax, s.i)
	}
	s.i += n
	return v, nil
}

func (s *scanner) numbers(n int) ([]float64, error) {
	out := make([]float64, n)
	for k := range out {
		v, err := s.number()
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
