package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/layerroute/pkg/design"
	"github.com/matzehuels/layerroute/pkg/render"
)

const crossingTOML = `name = "crossing"

[grid]
layers = 1
rows = 4
cols = 5

[router]
strategy = "exhaustive"

[[nets]]
id = "A"
start = [0, 1, 0]
target = [4, 1, 0]

[[nets]]
id = "B"
start = [2, 0, 0]
target = [2, 2, 0]

[[nets]]
id = "C"
start = [4, 0, 0]
target = [3, 0, 0]
`

func writeDesign(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crossing.toml")
	if err := os.WriteFile(path, []byte(crossingTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with args and returns stdout and the log.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"route", "generate", "render", "view", "serve", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (got %v, %v)", name, cmd, err)
		}
	}
}

func TestRouteCommand_Text(t *testing.T) {
	path := writeDesign(t)

	out, logs, err := runCLI(t, "route", path, "--workers", "1")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if !strings.HasPrefix(out, "Layer 0:\n") {
		t.Errorf("stdout should start with the layer header, got:\n%s", out)
	}
	// A detours around B: nine cells.
	if n := strings.Count(out, "A"); n != 9 {
		t.Errorf("net A covers %d cells, want 9:\n%s", n, out)
	}
	if !strings.Contains(logs, "total cost") || !strings.Contains(logs, "14") {
		t.Errorf("summary missing from log output:\n%s", logs)
	}
}

func TestRouteCommand_Quiet(t *testing.T) {
	path := writeDesign(t)

	_, logs, err := runCLI(t, "route", path, "-q")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if strings.Contains(logs, "total cost") {
		t.Errorf("quiet run printed a summary:\n%s", logs)
	}
}

func TestRouteCommand_JSONToFile(t *testing.T) {
	path := writeDesign(t)
	outPath := filepath.Join(t.TempDir(), "result.json")

	out, _, err := runCLI(t, "route", path, "-f", "json", "-o", outPath)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty when -o is set", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var rep render.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.Routed != 3 || rep.TotalCost != 14 {
		t.Errorf("report = %d routed, cost %d; want 3, 14", rep.Routed, rep.TotalCost)
	}
}

func TestRouteCommand_MultipleFormats(t *testing.T) {
	path := writeDesign(t)
	base := filepath.Join(t.TempDir(), "out")

	if _, _, err := runCLI(t, "route", path, "-f", "text,dot", "-o", base); err != nil {
		t.Fatalf("route: %v", err)
	}
	for _, name := range []string{"out.txt", "out.dot"} {
		if _, err := os.Stat(filepath.Join(filepath.Dir(base), name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRouteCommand_Errors(t *testing.T) {
	path := writeDesign(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"route", path, "-f", "gif"}},
		{"unknown strategy", []string{"route", path, "--strategy", "random"}},
		{"missing file", []string{"route", filepath.Join(t.TempDir(), "nope.toml")}},
		{"no args", []string{"route"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRenderCommand_RejectsTextFormats(t *testing.T) {
	path := writeDesign(t)
	if _, _, err := runCLI(t, "render", path, "-f", "text"); err == nil {
		t.Error("render should reject the text format")
	}
}

func TestRenderCommand_DOT(t *testing.T) {
	path := writeDesign(t)
	outPath := filepath.Join(t.TempDir(), "crossing.dot")

	_, logs, err := runCLI(t, "render", path, "-f", "dot", "-o", outPath)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(logs, "Routed 3/3 nets, total cost 14") {
		t.Errorf("render should report the routed result, logs: %s", logs)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "graph G {") {
		t.Errorf("unexpected DOT output: %.40s", data)
	}
}

func TestGenerateCommand(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "random.toml")

	if _, _, err := runCLI(t, "generate", "--seed", "7", "--nets", "3", "--layers", "2", "-o", outPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	d, err := design.Load(outPath)
	if err != nil {
		t.Fatalf("load generated design: %v", err)
	}
	if len(d.Nets) != 3 || d.Grid.Layers != 2 || d.Name != "random-7" {
		t.Errorf("design = %d nets, %d layers, name %q", len(d.Nets), d.Grid.Layers, d.Name)
	}
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	first, _, err := runCLI(t, "generate", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := runCLI(t, "generate", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	if first == "" || first != second {
		t.Error("the same seed should produce the same design")
	}
	other, _, _ := runCLI(t, "generate", "--seed", "43")
	if other == first {
		t.Error("different seeds should produce different designs")
	}
}

func TestGenerateCommand_Batch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "netlists")

	out, _, err := runCLI(t, "generate", "--batch", "3", "--batch-dir", dir, "--rows", "6", "--cols", "6")
	if err != nil {
		t.Fatalf("generate --batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "netlist_id,net_id,manhattan_dist,layer_diff,is_horizontal_dominant,src_x,src_y,src_z,dst_x,dst_y,dst_z" {
		t.Errorf("header = %q", lines[0])
	}
	if rows := len(lines) - 1; rows < 18 || rows > 30 {
		t.Errorf("got %d feature rows, want 3 netlists of 6..10 nets", rows)
	}

	total := 0
	for i := range 3 {
		d, err := design.Load(filepath.Join(dir, fmt.Sprintf("random-1-%d.toml", i)))
		if err != nil {
			t.Fatalf("load netlist %d: %v", i, err)
		}
		total += len(d.Nets)
	}
	if total != len(lines)-1 {
		t.Errorf("designs hold %d nets, CSV has %d rows", total, len(lines)-1)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "layerroute") {
		t.Error("bash completion should mention the program name")
	}
}

func TestLogFileFlag(t *testing.T) {
	path := writeDesign(t)
	logPath := filepath.Join(t.TempDir(), "run.log")

	if _, _, err := runCLI(t, "route", path, "--log-file", logPath, "-q"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Loaded crossing") {
		t.Errorf("log file missing route log:\n%s", data)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, png ,", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in, "svg")
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct{ output, input, want string }{
		{"", "designs/bus.toml", "designs/bus"},
		{"out.svg", "bus.toml", "out"},
		{"out.txt", "bus.toml", "out"},
		{"out", "bus.toml", "out"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	if n := defaultWorkers(); n < 1 {
		t.Errorf("defaultWorkers() = %d, want >= 1", n)
	}
}
