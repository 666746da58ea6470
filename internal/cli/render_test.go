package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces are trimmed", "dot, json", []string{"dot", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		format string
		multi  bool
		want   string
	}{
		{"derived from input", "dir/case1.in", "", "svg", false, "dir/case1.svg"},
		{"derived, several formats", "case1.in", "", "dot", true, "case1.dot"},
		{"explicit output", "case1.in", "out/route.svg", "svg", false, "out/route.svg"},
		{"explicit base path", "case1.in", "out/route.svg", "png", true, "out/route.png"},
		{"input without extension", "case1", "", "json", false, "case1.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.input, tt.output, tt.format, tt.multi); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	input := writeInput(t, dir, crossingInput)

	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "-f", "dot,json", "--labels", "--budget", "5s"})
	if err := root.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(filepath.Join(dir, "crossing.dot"))
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "graph G {") {
		t.Errorf("dot output should be a Graphviz graph:\n%s", dot)
	}
	if _, err := os.Stat(filepath.Join(dir, "crossing.json")); err != nil {
		t.Errorf("json output missing: %v", err)
	}
}

func TestRenderCommandRejectsFormat(t *testing.T) {
	c := newTestCLI(t)
	input := writeInput(t, t.TempDir(), crossingInput)

	root := c.RootCommand()
	root.SetArgs([]string{"render", input, "-f", "gif"})
	if err := root.Execute(); err == nil {
		t.Error("unknown format should fail")
	}
}
