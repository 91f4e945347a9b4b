package shape

import (
	"errors"
	"fmt"
)

// ErrBadCommand is returned for path commands that cannot be parsed.
var ErrBadCommand = errors.New("bad path command")

// FromCommands parses Canvas2D style commands such as ["M", x, y],
// ["L", x, y], ["Q", cx, cy, x, y], ["C", x1, y1, x2, y2, x, y] and ["Z"].
// Numbers may be any of the numeric types JSON decoding produces.
func FromCommands(cmds [][]any) (*Path, error) {
	p := &Path{}
	for i, cmd := range cmds {
		if len(cmd) == 0 {
			return nil, fmt.Errorf("command %d: empty: %w", i, ErrBadCommand)
		}
		name, ok := cmd[0].(string)
		if !ok || len(name) != 1 {
			return nil, fmt.Errorf("command %d: operator %v: %w", i, cmd[0], ErrBadCommand)
		}

		op := Op(name[0])
		switch op {
		case MoveTo, LineTo, QuadTo, CubicTo, Close:
		default:
			return nil, fmt.Errorf("command %d: unknown operator %q: %w", i, name, ErrBadCommand)
		}

		n := op.NumPoints()
		if len(cmd) != 1+2*n {
			return nil, fmt.Errorf("command %d: %q wants %d numbers, got %d: %w", i, name, 2*n, len(cmd)-1, ErrBadCommand)
		}

		seg := Segment{Op: op}
		for j := 0; j < n; j++ {
			x, okx := toFloat64(cmd[1+2*j])
			y, oky := toFloat64(cmd[2+2*j])
			if !okx || !oky {
				return nil, fmt.Errorf("command %d: non-numeric coordinate: %w", i, ErrBadCommand)
			}
			seg.P[j].X, seg.P[j].Y = x, y
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

// Commands returns the path in the same command form FromCommands reads.
func (p *Path) Commands() [][]any {
	out := make([][]any, 0, len(p.Segments))
	for _, s := range p.Segments {
		cmd := []any{string(rune(s.Op))}
		for j := 0; j < s.Op.NumPoints(); j++ {
			cmd = append(cmd, s.P[j].X, s.P[j].Y)
		}
		out = append(out, cmd)
	}
	return out
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
