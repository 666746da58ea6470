package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/mazeroute/pkg/maze"
)

// Solution is the JSON form of a routed grid.
type Solution struct {
	Rows     int           `json:"rows"`
	Cols     int           `json:"cols"`
	Cost     int           `json:"cost"`
	Complete bool          `json:"complete"`
	Nets     []SolutionNet `json:"nets"`
}

// SolutionNet is one net of a [Solution].
type SolutionNet struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	Source maze.Point   `json:"source"`
	Target maze.Point   `json:"target"`
	Routed bool         `json:"routed"`
	Path   []maze.Point `json:"path,omitempty"`
}

// NewSolution captures the current routing of g.
func NewSolution(g *maze.Grid) *Solution {
	s := &Solution{
		Rows:     g.Rows,
		Cols:     g.Cols,
		Cost:     g.Usage(),
		Complete: g.Complete(),
		Nets:     make([]SolutionNet, g.NetCount()),
	}
	for i, n := range g.Nets() {
		sn := SolutionNet{
			ID:     n.ID,
			Name:   n.Name,
			Source: n.Source,
			Target: n.Target,
			Routed: n.Routed,
		}
		if n.Routed {
			sn.Path = n.Path
		}
		s.Nets[i] = sn
	}
	return s
}

// WriteOutput writes the routing result of g in the line-oriented output
// format, one record per net in net order.
func WriteOutput(w io.Writer, g *maze.Grid) error {
	bw := bufio.NewWriter(w)
	for _, n := range g.Nets() {
		if !n.Routed || len(n.Path) == 0 {
			fmt.Fprintf(bw, "%s FAILED\n", n.Name)
			continue
		}
		segs := n.Segments()
		fmt.Fprintf(bw, "%s %d\nbegin\n", n.Name, len(segs))
		for _, s := range segs {
			fmt.Fprintf(bw, "%d %d %d %d\n", s.From.X, s.From.Y, s.To.X, s.To.Y)
		}
		fmt.Fprint(bw, "end\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// ExportOutput writes the routing result of g to the file at path.
func ExportOutput(g *maze.Grid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteOutput(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON encodes s as indented JSON.
func WriteJSON(s *Solution, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes s to a JSON file at path.
func ExportJSON(s *Solution, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(s, f)
}
