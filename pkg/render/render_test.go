package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
	"github.com/matzehuels/layerroute/pkg/route/ordering"
)

// sample is a 2-layer 3x3 grid with one planar net, one net that hops to
// layer 1 and back, and one failed net.
func sample(t *testing.T) (*grid.Grid, *route.Outcome) {
	t.Helper()
	g, err := grid.Uniform(2, 3, 3, 1, grid.AllVias{})
	if err != nil {
		t.Fatalf("Uniform() error: %v", err)
	}
	a := route.Net{ID: "A", Start: grid.Pt(0, 0, 0), Target: grid.Pt(2, 0, 0)}
	b := route.Net{ID: "B", Start: grid.Pt(1, 1, 0), Target: grid.Pt(1, 2, 0)}
	c := route.Net{ID: "C", Start: grid.Pt(0, 2, 0), Target: grid.Pt(0, 2, 1)}
	out := &route.Outcome{
		Order: []int{1, 0, 2},
		Results: []route.NetResult{
			{Index: 1, Net: b, Routed: true, Cost: 44, Path: []grid.Point{
				grid.Pt(1, 1, 0), grid.Pt(1, 1, 1), grid.Pt(1, 2, 1), grid.Pt(1, 2, 0),
			}},
			{Index: 0, Net: a, Routed: true, Cost: 3, Path: []grid.Point{
				grid.Pt(0, 0, 0), grid.Pt(1, 0, 0), grid.Pt(2, 0, 0),
			}},
			{Index: 2, Net: c, Err: errors.New(errors.ErrCodeUnreachable, "no path")},
		},
		Routed:    2,
		TotalCost: 47,
	}
	return g, out
}

func TestNetMarker(t *testing.T) {
	tests := []struct {
		index int
		want  rune
	}{
		{0, 'A'},
		{1, 'B'},
		{25, 'Z'},
		{26, '*'},
		{100, '*'},
		{-1, '*'},
	}
	for _, tt := range tests {
		if got := NetMarker(tt.index); got != tt.want {
			t.Errorf("NetMarker(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestProject(t *testing.T) {
	g, out := sample(t)
	l := Project(g, out)

	want := map[int][]string{
		0: {
			"A A A",
			". # .",
			". # .",
		},
		1: {
			". . .",
			". # .",
			". # .",
		},
	}
	for layer, rows := range want {
		if diff := cmp.Diff(rows, l.Rows(layer)); diff != "" {
			t.Errorf("Rows(%d) mismatch (-want +got):\n%s", layer, diff)
		}
	}
}

func TestProject_NilOutcome(t *testing.T) {
	g, _ := sample(t)
	l := Project(g, nil)
	for layer := range l.Layers() {
		for _, row := range l.Rows(layer) {
			if row != ". . ." {
				t.Errorf("layer %d row = %q, want all free", layer, row)
			}
		}
	}
}

func TestProject_LaterNetWinsSharedCells(t *testing.T) {
	g, err := grid.Uniform(1, 1, 3, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := []grid.Point{grid.Pt(0, 0, 0), grid.Pt(1, 0, 0), grid.Pt(2, 0, 0)}
	out := &route.Outcome{Results: []route.NetResult{
		{Index: 0, Routed: true, Path: path},
		{Index: 1, Routed: true, Path: path[1:]},
	}}
	if got := Project(g, out).Rows(0)[0]; got != "A B B" {
		t.Errorf("row = %q, want %q", got, "A B B")
	}
}

func TestWriteText(t *testing.T) {
	g, out := sample(t)
	var buf bytes.Buffer
	if err := WriteText(&buf, Project(g, out)); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	want := "Layer 0:\n" +
		"A A A\n" +
		". # .\n" +
		". # .\n" +
		"\n" +
		"Layer 1:\n" +
		". . .\n" +
		". # .\n" +
		". # .\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteText() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewReport(t *testing.T) {
	_, out := sample(t)
	r := NewReport(out)

	if r.Routed != 2 || r.Nets != 3 || r.TotalCost != 47 {
		t.Errorf("summary = %d/%d cost %d, want 2/3 cost 47", r.Routed, r.Nets, r.TotalCost)
	}
	if diff := cmp.Diff([]string{"B", "A", "C"}, r.Order); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}

	ids := make([]string, len(r.Results))
	for i, nr := range r.Results {
		ids[i] = nr.ID
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, ids); diff != "" {
		t.Errorf("results not in input order (-want +got):\n%s", diff)
	}

	if got := r.Results[1].Vias; got != 2 {
		t.Errorf("B vias = %d, want 2", got)
	}
	if got := r.Results[0].Vias; got != 0 {
		t.Errorf("A vias = %d, want 0", got)
	}
	failed := r.Results[2]
	if failed.Routed || failed.Code != errors.ErrCodeUnreachable || failed.Error != "no path" {
		t.Errorf("C = %+v, want unrouted UNREACHABLE", failed)
	}
}

func TestWriteJSON(t *testing.T) {
	_, out := sample(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, out); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(*NewReport(out), got); diff != "" {
		t.Errorf("decoded report mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), `"total_cost": 47`) {
		t.Errorf("missing total_cost field:\n%s", buf.String())
	}
}

func TestToDOT(t *testing.T) {
	g, out := sample(t)
	dot := ToDOT(g, out)

	for _, want := range []string{
		"graph G {",
		`"title0"`,
		`"title1"`,
		`label="Layer 1"`,
		`"c0_0_0" [label="1", pos="0.00,0.00!", fillcolor="#4e79a7"`,
		`"c1_2_1" [label="1", pos="2.50,-1.00!", fillcolor="#f28e2b", penwidth=3, shape=doublecircle]`,
		`"c0_0_0" -- "c0_0_1" [color="#4e79a7", penwidth=3, style=solid]`,
		`"c0_1_1" -- "c1_1_1" [color="#f28e2b", penwidth=3, style=dashed]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "#e15759") {
		t.Error("unrouted net C should not be drawn")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func TestWriteSearchChart(t *testing.T) {
	stats := ordering.Stats{
		Strategy: ordering.StrategyExhaustive,
		Trials:   6,
		Total:    6,
		Complete: true,
		Distribution: []ordering.Bucket{
			{Routed: 3, Cost: 14, Orders: 3},
			{Routed: 2, Cost: 7, Orders: 3},
		},
	}

	var buf bytes.Buffer
	if err := WriteSearchChart(&buf, "crossing search", stats); err != nil {
		t.Fatalf("WriteSearchChart() error: %v", err)
	}
	page := buf.String()
	for _, want := range []string{"<html", "crossing search", "echarts"} {
		if !strings.Contains(page, want) {
			t.Errorf("chart page missing %q", want)
		}
	}
}
