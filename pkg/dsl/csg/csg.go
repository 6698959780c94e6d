// Package csg is a minimal constructive solid geometry DSL on a 16x16 binary
// grid: axis-aligned rectangles combined with union. It exists as the
// reference DSL for the search engine, small enough that ground-truth oracles
// stay exact, and shows the intended shape of a domain plugin: a closed set
// of object kinds with type-switch dispatch in the parser.
package csg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dldaisy/ProgramSearch/pkg/graph"
)

// Size is the canvas side length.
const Size = 16

// Canvas is a 16x16 bitmap, one uint16 per row, bit x of row y set when the
// cell (x, y) is filled. Being a value type it is comparable, which is what
// the search cache keys execution results on.
type Canvas [Size]uint16

// Set marks cell (x, y).
func (c *Canvas) Set(x, y int) {
	c[y] |= 1 << uint(x)
}

// Get reports whether cell (x, y) is filled.
func (c Canvas) Get(x, y int) bool {
	return c[y]&(1<<uint(x)) != 0
}

// Union returns the cell-wise OR of two canvases.
func (c Canvas) Union(o Canvas) Canvas {
	var out Canvas
	for y := 0; y < Size; y++ {
		out[y] = c[y] | o[y]
	}
	return out
}

// IoU returns the intersection-over-union similarity of two canvases,
// 1 when both are empty.
func (c Canvas) IoU(o Canvas) float64 {
	inter, union := 0, 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			a, b := c.Get(x, y), o.Get(x, y)
			if a && b {
				inter++
			}
			if a || b {
				union++
			}
		}
	}
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// String renders the canvas as Size lines of '#' and '.'.
func (c Canvas) String() string {
	var sb strings.Builder
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if c.Get(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		if y < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseCanvas parses the String rendering back into a Canvas. Blank lines
// are skipped so specs survive surrounding whitespace.
func ParseCanvas(s string) (Canvas, error) {
	var c Canvas
	rows := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rows >= Size {
			return Canvas{}, fmt.Errorf("canvas has more than %d rows", Size)
		}
		if len(line) != Size {
			return Canvas{}, fmt.Errorf("row %d has %d cells, want %d", rows, len(line), Size)
		}
		for x := 0; x < Size; x++ {
			switch line[x] {
			case '#':
				c.Set(x, rows)
			case '.':
			default:
				return Canvas{}, fmt.Errorf("row %d: unexpected cell %q", rows, line[x])
			}
		}
		rows++
	}
	if rows != Size {
		return Canvas{}, fmt.Errorf("canvas has %d rows, want %d", rows, Size)
	}
	return c, nil
}

// Rect is a filled axis-aligned rectangle covering the half-open region
// [X0, X1) x [Y0, Y1).
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Execute rasterizes the rectangle.
func (r *Rect) Execute() any {
	var c Canvas
	for y := r.Y0; y < r.Y1; y++ {
		for x := r.X0; x < r.X1; x++ {
			c.Set(x, y)
		}
	}
	return c
}

func (r *Rect) Children() []graph.Node { return nil }

func (r *Rect) Serialize() []graph.Token {
	return []graph.Token{
		graph.Lit("rect"),
		graph.Lit(strconv.Itoa(r.X0)),
		graph.Lit(strconv.Itoa(r.Y0)),
		graph.Lit(strconv.Itoa(r.X1)),
		graph.Lit(strconv.Itoa(r.Y1)),
	}
}

// Union combines two subprograms by cell-wise OR.
type Union struct {
	A, B graph.Node
}

func (u *Union) Execute() any {
	return u.A.Execute().(Canvas).Union(u.B.Execute().(Canvas))
}

func (u *Union) Children() []graph.Node { return []graph.Node{u.A, u.B} }

func (u *Union) Serialize() []graph.Token {
	return []graph.Token{graph.Lit("union"), graph.Ref(u.A), graph.Ref(u.B)}
}

// DSL is the domain plugin: it parses token lines into Rect and Union
// objects and canvas renderings into specs.
type DSL struct{}

// ParseLine builds a node from a resolved token line. A line that names an
// unknown operator, carries the wrong arity, or violates the coordinate
// bounds is not an error, just not a program: it yields (nil, nil) and the
// search drops the proposal.
func (DSL) ParseLine(tokens []graph.Token) (graph.Node, error) {
	if len(tokens) == 0 || tokens[0].Ref != nil {
		return nil, nil
	}
	switch tokens[0].Lit {
	case "rect":
		if len(tokens) != 5 {
			return nil, nil
		}
		coords := make([]int, 4)
		for i := 0; i < 4; i++ {
			tok := tokens[i+1]
			if tok.Ref != nil {
				return nil, nil
			}
			v, err := strconv.Atoi(tok.Lit)
			if err != nil {
				return nil, nil
			}
			coords[i] = v
		}
		r := &Rect{X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3]}
		if r.X0 < 0 || r.Y0 < 0 || r.X1 > Size || r.Y1 > Size || r.X0 >= r.X1 || r.Y0 >= r.Y1 {
			return nil, nil
		}
		return r, nil
	case "union":
		if len(tokens) != 3 || tokens[1].Ref == nil || tokens[2].Ref == nil {
			return nil, nil
		}
		return &Union{A: tokens[1].Ref, B: tokens[2].Ref}, nil
	default:
		return nil, nil
	}
}

// ParseSpec decodes a textual spec into the canvas the search targets.
func (DSL) ParseSpec(s string) (any, error) {
	return ParseCanvas(s)
}
