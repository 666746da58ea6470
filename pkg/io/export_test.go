package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	"github.com/matzehuels/mazeroute/pkg/maze"
)

// routed parses input and commits the given paths as-is.
func routed(t *testing.T, input string, paths map[int][]maze.Point) *maze.Grid {
	t.Helper()
	g, err := ReadInput(strings.NewReader(input))
	require.NoError(t, err)
	for idx, p := range paths {
		g.Net(idx).Path = p
		g.Commit(idx)
	}
	require.NoError(t, g.Verify())
	return g
}

func TestWriteOutput(t *testing.T) {
	g := routed(t, ".row 5 .col 5 .block 0 .net 3 a 0 0 2 2 b 4 0 4 3 c 0 4 4 4", map[int][]maze.Point{
		0: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}},
		1: {{X: 4, Y: 0}, {X: 4, Y: 1}, {X: 4, Y: 2}, {X: 4, Y: 3}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, g))

	want := `a 2
begin
0 0 2 0
2 0 2 2
end
b 1
begin
4 0 4 3
end
c FAILED
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteOutput mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteOutputSingleCellNet(t *testing.T) {
	g := routed(t, ".row 2 .col 2 .block 0 .net 1 p 1 1 1 1", map[int][]maze.Point{
		0: {{X: 1, Y: 1}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, g))
	assert.Equal(t, "p 1\nbegin\n1 1 1 1\nend\n", buf.String())
}

func TestExportOutput(t *testing.T) {
	g := routed(t, sample, nil)
	path := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, ExportOutput(g, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "clk FAILED\nrst FAILED\n", string(data))
}

func TestExportOutputUnwritable(t *testing.T) {
	g := routed(t, sample, nil)
	err := ExportOutput(g, filepath.Join(t.TempDir(), "missing", "out.txt"))
	assert.Error(t, err)
}

const twoNets = ".row 3 .col 7 .block 0 .net 2 a 3 0 3 2 b 1 1 5 1"

var twoNetPaths = map[int][]maze.Point{
	0: {{X: 3, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}, {X: 3, Y: 2}},
	1: {{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 1}, {X: 5, Y: 1}},
}

func TestSolutionRoundTrip(t *testing.T) {
	g := routed(t, twoNets, twoNetPaths)
	sol := NewSolution(g)
	assert.Equal(t, 10, sol.Cost)
	assert.True(t, sol.Complete)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(sol, &buf))
	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(sol, got); diff != "" {
		t.Errorf("solution mismatch (-want +got):\n%s", diff)
	}

	fresh, err := ReadInput(strings.NewReader(twoNets))
	require.NoError(t, err)
	require.NoError(t, ApplySolution(fresh, got))
	assert.Equal(t, g.Nets(), fresh.Nets())
	assert.Equal(t, 10, fresh.Usage())
}

func TestApplySolutionRejectsMismatch(t *testing.T) {
	g := routed(t, twoNets, twoNetPaths)
	base := NewSolution(g)

	tests := []struct {
		name   string
		mutate func(s *Solution)
	}{
		{"dimensions", func(s *Solution) { s.Rows = 4 }},
		{"net count", func(s *Solution) { s.Nets = s.Nets[:1] }},
		{"renamed net", func(s *Solution) { s.Nets[0].Name = "z" }},
		{"moved pin", func(s *Solution) { s.Nets[1].Target = maze.Point{X: 6, Y: 1} }},
		{"broken path", func(s *Solution) { s.Nets[1].Path = s.Nets[1].Path[:3] }},
		{"overlap", func(s *Solution) {
			s.Nets[0].Path = []maze.Point{{X: 3, Y: 0}, {X: 3, Y: 1}, {X: 3, Y: 2}}
		}},
		{"outside grid", func(s *Solution) {
			s.Nets[0].Path = []maze.Point{{X: 3, Y: 0}, {X: 3, Y: -1}, {X: 3, Y: 2}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteJSON(base, &buf))
			s, err := ReadJSON(&buf)
			require.NoError(t, err)
			tt.mutate(s)

			fresh, err := ReadInput(strings.NewReader(twoNets))
			require.NoError(t, err)
			err = ApplySolution(fresh, s)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidFormat))
		})
	}
}

func TestApplySolutionRejectsBlockedCell(t *testing.T) {
	input := ".row 3 .col 3 .block 1 1 1 1 1 .net 1 a 0 1 2 1"
	fresh, err := ReadInput(strings.NewReader(input))
	require.NoError(t, err)

	s := &Solution{Rows: 3, Cols: 3, Nets: []SolutionNet{{
		Name: "a", Source: maze.Point{X: 0, Y: 1}, Target: maze.Point{X: 2, Y: 1},
		Routed: true, Path: []maze.Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
	}}}
	err = ApplySolution(fresh, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "block")
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{"))
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidFormat))

	_, err = ReadJSON(strings.NewReader(`{"nets":[{"id":1,"name":"a"}]}`))
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidFormat))
}

func TestExportImportJSON(t *testing.T) {
	sol := NewSolution(routed(t, twoNets, twoNetPaths))
	path := filepath.Join(t.TempDir(), "sol.json")

	require.NoError(t, ExportJSON(sol, path))
	got, err := ImportJSON(path)
	require.NoError(t, err)
	assert.Equal(t, sol, got)
}
