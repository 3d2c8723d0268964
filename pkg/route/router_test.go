package route

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route/pathfind"
)

// crossingScenario returns a 1-layer 5x4 grid and three nets. A runs
// straight along row 1; B crosses row 1 at column 2 and must go first,
// forcing A to detour through row 3. C is independent of both.
func crossingScenario(t *testing.T) (*grid.Grid, []Net) {
	t.Helper()
	g, err := grid.Uniform(1, 4, 5, 1, nil)
	if err != nil {
		t.Fatalf("Uniform() error: %v", err)
	}
	nets := []Net{
		{ID: "A", Start: grid.Pt(0, 1, 0), Target: grid.Pt(4, 1, 0)},
		{ID: "B", Start: grid.Pt(2, 0, 0), Target: grid.Pt(2, 2, 0)},
		{ID: "C", Start: grid.Pt(4, 0, 0), Target: grid.Pt(3, 0, 0)},
	}
	return g, nets
}

func TestRoute_OrderSensitivity(t *testing.T) {
	g, nets := crossingScenario(t)
	r := NewRouter(nil, nil)
	ctx := context.Background()

	inOrder, err := r.Route(ctx, grid.NewModel(g, grid.BlockPolicy()), nets, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	if inOrder.Routed != 2 {
		t.Errorf("input order routed %d nets, want 2", inOrder.Routed)
	}
	if res := inOrder.ByIndex()[1]; res.Routed || !errors.IsUnreachable(res.Err) {
		t.Errorf("net B: routed=%v err=%v, want UNREACHABLE", res.Routed, res.Err)
	}
	if inOrder.TotalCost != 5+2 {
		t.Errorf("input order cost = %d, want 7", inOrder.TotalCost)
	}

	bFirst, err := r.Route(ctx, grid.NewModel(g, grid.BlockPolicy()), nets, []int{1, 0, 2})
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	if !bFirst.Complete() {
		t.Fatalf("order [1 0 2] routed %d nets, want 3", bFirst.Routed)
	}
	if bFirst.TotalCost != 3+9+2 {
		t.Errorf("order [1 0 2] cost = %d, want 14", bFirst.TotalCost)
	}
}

func TestRoute_ResultsInProcessingOrder(t *testing.T) {
	g, nets := crossingScenario(t)
	r := NewRouter(nil, nil)

	out, err := r.Route(context.Background(), grid.NewModel(g, grid.BlockPolicy()), nets, []int{2, 1, 0})
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}

	var gotOrder []int
	for _, res := range out.Results {
		gotOrder = append(gotOrder, res.Index)
	}
	if diff := cmp.Diff([]int{2, 1, 0}, gotOrder); diff != "" {
		t.Errorf("processing order mismatch (-want +got):\n%s", diff)
	}

	var ids []string
	for _, res := range out.ByIndex() {
		ids = append(ids, res.Net.ID)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, ids); diff != "" {
		t.Errorf("ByIndex mismatch (-want +got):\n%s", diff)
	}
}

func TestRoute_BlockingCorrectness(t *testing.T) {
	g, err := grid.Uniform(2, 4, 4, 1, grid.AllVias{})
	if err != nil {
		t.Fatal(err)
	}
	m := grid.NewModel(g, grid.BlockPolicy())
	r := NewRouter(nil, nil)

	a := Net{ID: "A", Start: grid.Pt(0, 0, 0), Target: grid.Pt(3, 3, 1)}
	out, err := r.Route(context.Background(), m, []Net{a}, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	if out.Routed != 1 {
		t.Fatalf("net A not routed: %v", out.Results[0].Err)
	}

	free := grid.Pt(-1, -1, -1)
	for i := 0; i < g.Size(); i++ {
		if blocked, _ := m.IsBlocked(g.Point(i)); !blocked {
			free = g.Point(i)
			break
		}
	}
	if !g.Contains(free) {
		t.Fatal("A's path claimed every cell")
	}

	for _, p := range out.Results[0].Path {
		if blocked, _ := m.IsBlocked(p); !blocked {
			t.Errorf("cell %v of A's path is not blocked", p)
		}
		// Any later search ending on A's path must fail.
		if _, err := r.Finder.Find(m, free, p); !errors.IsUnreachable(err) {
			t.Errorf("Find(_, %v) error = %v, want UNREACHABLE", p, err)
		}
	}
}

func TestRoute_UnroutableNetsDoNotAbort(t *testing.T) {
	g, err := grid.Uniform(1, 3, 3, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	nets := []Net{
		{ID: "off", Start: grid.Pt(0, 0, 0), Target: grid.Pt(0, 0, 4)},
		{ID: "ok", Start: grid.Pt(0, 0, 0), Target: grid.Pt(2, 0, 0)},
		{ID: "shared", Start: grid.Pt(1, 0, 0), Target: grid.Pt(1, 2, 0)},
		{ID: "after", Start: grid.Pt(0, 2, 0), Target: grid.Pt(2, 2, 0)},
	}

	out, err := NewRouter(nil, nil).Route(context.Background(), grid.NewModel(g, grid.BlockPolicy()), nets, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}

	tests := []struct {
		id     string
		routed bool
		code   errors.Code
	}{
		{"off", false, errors.ErrCodeInvalidCoordinate},
		{"ok", true, ""},
		{"shared", false, errors.ErrCodeUnreachable},
		{"after", true, ""},
	}
	for i, tt := range tests {
		res := out.Results[i]
		if res.Net.ID != tt.id || res.Routed != tt.routed {
			t.Errorf("result %d = %s routed=%v, want %s routed=%v", i, res.Net.ID, res.Routed, tt.id, tt.routed)
			continue
		}
		if !tt.routed && !errors.Is(res.Err, tt.code) {
			t.Errorf("net %s error = %v, want %s", tt.id, res.Err, tt.code)
		}
		if tt.routed && res.Err != nil {
			t.Errorf("routed net %s carries error %v", tt.id, res.Err)
		}
	}
	if out.Routed != 2 || len(out.Unrouted()) != 2 {
		t.Errorf("routed=%d unrouted=%d, want 2 and 2", out.Routed, len(out.Unrouted()))
	}
}

func TestRoute_InvalidOrder(t *testing.T) {
	g, nets := crossingScenario(t)
	r := NewRouter(nil, nil)

	for _, order := range [][]int{{0, 1}, {0, 1, 1}, {0, 1, 3}, {}} {
		_, err := r.Route(context.Background(), grid.NewModel(g, grid.BlockPolicy()), nets, order)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Route(order=%v) error = %v, want INVALID_INPUT", order, err)
		}
	}
}

func TestRoute_ContextCancelled(t *testing.T) {
	g, nets := crossingScenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRouter(nil, nil).Route(ctx, grid.NewModel(g, grid.BlockPolicy()), nets, nil)
	if err != context.Canceled {
		t.Errorf("Route() error = %v, want context.Canceled", err)
	}
}

func TestRoute_CongestionPolicy(t *testing.T) {
	g, err := grid.Uniform(1, 1, 3, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	nets := []Net{
		{ID: "first", Start: grid.Pt(0, 0, 0), Target: grid.Pt(2, 0, 0)},
		{ID: "second", Start: grid.Pt(0, 0, 0), Target: grid.Pt(2, 0, 0)},
	}
	m := grid.NewModel(g, grid.CongestionPolicy(2))

	out, err := NewRouter(nil, nil).Route(context.Background(), m, nets, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	if out.Routed != 2 {
		t.Fatalf("routed %d nets, want 2 (congestion never blocks)", out.Routed)
	}
	if got := []int{out.Results[0].Cost, out.Results[1].Cost}; !cmp.Equal(got, []int{3, 9}) {
		t.Errorf("costs = %v, want [3 9]", got)
	}
	if u := m.Occupancy.Usage(grid.Pt(1, 0, 0)); u != 2 {
		t.Errorf("usage = %d, want 2", u)
	}
}

func TestRoute_ViaPath(t *testing.T) {
	vias := grid.NewStackedVias(3, 3).Set(1, 1)
	g, err := grid.Uniform(2, 3, 3, 1, vias)
	if err != nil {
		t.Fatal(err)
	}
	cfg := pathfind.DefaultConfig()
	r := NewRouter(pathfind.New(cfg), nil)
	net := Net{ID: "V", Start: grid.Pt(0, 1, 0), Target: grid.Pt(2, 1, 1)}

	out, err := r.Route(context.Background(), grid.NewModel(g, grid.BlockPolicy()), []Net{net}, nil)
	if err != nil {
		t.Fatalf("Route() error: %v", err)
	}
	want := []grid.Point{grid.Pt(0, 1, 0), grid.Pt(1, 1, 0), grid.Pt(1, 1, 1), grid.Pt(2, 1, 1)}
	if diff := cmp.Diff(want, out.Results[0].Path); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if got := out.Results[0].Cost; got != 4+cfg.ViaCost {
		t.Errorf("cost = %d, want %d", got, 4+cfg.ViaCost)
	}
}
