package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	"github.com/matzehuels/mazeroute/pkg/maze"
)

// ReadInput parses a routing problem from r and returns a grid with blocks
// placed, nets added and pins initialized.
//
// Malformed input returns an error with code [apperr.ErrCodeInvalidInput]
// naming the offending record. Block rectangles and pins that fall outside
// the grid are accepted and ignored by the grid. ReadInput does not close r.
func ReadInput(r io.Reader) (*maze.Grid, error) {
	t := newTokens(r)

	rows, err := t.header("rows")
	if err != nil {
		return nil, err
	}
	cols, err := t.header("cols")
	if err != nil {
		return nil, err
	}
	if err := apperr.ValidateDimensions(rows, cols); err != nil {
		return nil, err
	}
	g := maze.New(rows, cols)

	nblocks, err := t.header("block count")
	if err != nil {
		return nil, err
	}
	if err := apperr.ValidateCount("block", nblocks); err != nil {
		return nil, err
	}
	for i := 0; i < nblocks; i++ {
		v, err := t.ints(4, "block %d", i)
		if err != nil {
			return nil, err
		}
		g.AddBlock(v[0], v[1], v[2], v[3])
	}

	nnets, err := t.header("net count")
	if err != nil {
		return nil, err
	}
	if err := apperr.ValidateCount("net", nnets); err != nil {
		return nil, err
	}
	for i := 0; i < nnets; i++ {
		name, err := t.word("net %d name", i)
		if err != nil {
			return nil, err
		}
		if err := apperr.ValidateNetName(name); err != nil {
			return nil, err
		}
		v, err := t.ints(4, "net %s", name)
		if err != nil {
			return nil, err
		}
		if err := g.AddNet(i, name, v[0], v[1], v[2], v[3]); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "net %s", name)
		}
	}
	if err := t.err(); err != nil {
		return nil, err
	}

	g.InitPins()
	return g, nil
}

// ImportInput reads a routing problem from the file at path.
func ImportInput(path string) (*maze.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadInput(f)
}

// tokens reads whitespace-separated words.
type tokens struct {
	sc *bufio.Scanner
}

func newTokens(r io.Reader) *tokens {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	return &tokens{sc: sc}
}

func (t *tokens) err() error {
	if err := t.sc.Err(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read input")
	}
	return nil
}

func (t *tokens) word(format string, args ...any) (string, error) {
	if !t.sc.Scan() {
		if err := t.err(); err != nil {
			return "", err
		}
		return "", apperr.New(apperr.ErrCodeInvalidInput, "unexpected end of input reading %s", fmt.Sprintf(format, args...))
	}
	return t.sc.Text(), nil
}

func (t *tokens) int(format string, args ...any) (int, error) {
	w, err := t.word(format, args...)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(w)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "%s: expected integer, got %q", fmt.Sprintf(format, args...), w)
	}
	return v, nil
}

// header reads a header value, skipping one leading label token.
func (t *tokens) header(what string) (int, error) {
	w, err := t.word("%s", what)
	if err != nil {
		return 0, err
	}
	if v, err := strconv.Atoi(w); err == nil {
		return v, nil
	}
	return t.int("%s after label %q", what, w)
}

func (t *tokens) ints(n int, format string, args ...any) ([]int, error) {
	v := make([]int, n)
	for i := range v {
		x, err := t.int(format, args...)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return v, nil
}

// ReadJSON decodes a [Solution] from r.
//
// The solution is checked for shape only; use [ApplySolution] to replay it
// onto a grid. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Solution, error) {
	var s Solution
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode solution")
	}
	for i, n := range s.Nets {
		if n.ID != i {
			return nil, apperr.New(apperr.ErrCodeInvalidFormat, "net %s has id %d at position %d", n.Name, n.ID, i)
		}
	}
	return &s, nil
}

// ImportJSON reads a [Solution] from the file at path.
func ImportJSON(path string) (*Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ApplySolution commits the routed paths of s onto g, which must be the
// freshly parsed grid the solution was computed for. The result is checked
// with [maze.Grid.Verify]; on any mismatch an [apperr.ErrCodeInvalidFormat]
// error is returned and g should be discarded.
func ApplySolution(g *maze.Grid, s *Solution) error {
	if s.Rows != g.Rows || s.Cols != g.Cols {
		return apperr.New(apperr.ErrCodeInvalidFormat, "solution is for a %d×%d grid, not %d×%d", s.Rows, s.Cols, g.Rows, g.Cols)
	}
	if len(s.Nets) != g.NetCount() {
		return apperr.New(apperr.ErrCodeInvalidFormat, "solution has %d nets, grid has %d", len(s.Nets), g.NetCount())
	}
	for i, sn := range s.Nets {
		n := g.Net(i)
		if sn.Name != n.Name || sn.Source != n.Source || sn.Target != n.Target {
			return apperr.New(apperr.ErrCodeInvalidFormat, "net %d is %s %v-%v in solution, %s %v-%v in grid",
				i, sn.Name, sn.Source, sn.Target, n.Name, n.Source, n.Target)
		}
	}
	for i, sn := range s.Nets {
		if !sn.Routed {
			continue
		}
		for _, p := range sn.Path {
			if g.State(p) == maze.Block {
				return apperr.New(apperr.ErrCodeInvalidFormat, "net %s crosses block at %v", sn.Name, p)
			}
		}
		g.Net(i).Path = append([]maze.Point(nil), sn.Path...)
		g.Commit(i)
	}
	if err := g.Verify(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "replay solution")
	}
	return nil
}
