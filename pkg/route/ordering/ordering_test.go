package ordering

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
	"github.com/matzehuels/layerroute/pkg/route"
)

// crossingScenario: A runs along row 1, B crosses it at column 2, C sits in
// the corner. Only orders with B before A route all three nets.
func crossingScenario(t *testing.T) (*grid.Grid, []route.Net) {
	t.Helper()
	g, err := grid.Uniform(1, 4, 5, 1, nil)
	if err != nil {
		t.Fatalf("Uniform() error: %v", err)
	}
	return g, []route.Net{
		{ID: "A", Start: grid.Pt(0, 1, 0), Target: grid.Pt(4, 1, 0)},
		{ID: "B", Start: grid.Pt(2, 0, 0), Target: grid.Pt(2, 2, 0)},
		{ID: "C", Start: grid.Pt(4, 0, 0), Target: grid.Pt(3, 0, 0)},
	}
}

func randomScenario(t *testing.T, seed uint64, nets int) (*grid.Grid, []route.Net) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	const layers, rows, cols = 2, 6, 6

	table := make([][][]int, layers)
	for l := range table {
		table[l] = make([][]int, rows)
		for r := range table[l] {
			table[l][r] = make([]int, cols)
			for c := range table[l][r] {
				table[l][r][c] = 1 + rng.IntN(5)
			}
		}
	}
	vias := grid.NewStackedVias(rows, cols)
	for range 6 {
		vias.Set(rng.IntN(rows), rng.IntN(cols))
	}
	g, err := grid.New(table, vias)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	used := make(map[grid.Point]bool)
	pick := func() grid.Point {
		for {
			p := grid.Pt(rng.IntN(cols), rng.IntN(rows), rng.IntN(layers))
			if !used[p] {
				used[p] = true
				return p
			}
		}
	}
	out := make([]route.Net, nets)
	for i := range out {
		out[i] = route.Net{ID: string(rune('A' + i)), Start: pick(), Target: pick()}
	}
	return g, out
}

var ignoreErr = cmpopts.IgnoreFields(route.NetResult{}, "Err")

func TestExhaustive_FindsOrderRoutingAllNets(t *testing.T) {
	g, nets := crossingScenario(t)

	res, err := Exhaustive{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if res.Best.Routed != 3 {
		t.Fatalf("routed = %d, want 3", res.Best.Routed)
	}
	if res.Best.TotalCost != 14 {
		t.Errorf("total cost = %d, want 14", res.Best.TotalCost)
	}
	// [1 0 2], [1 2 0] and [2 1 0] tie; the first in lexicographic order wins.
	if diff := cmp.Diff([]int{1, 0, 2}, res.Best.Order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.BestRank != 2 {
		t.Errorf("best rank = %d, want 2", res.Stats.BestRank)
	}
	if res.Stats.Trials != 6 || res.Stats.Total != 6 || !res.Stats.Complete {
		t.Errorf("stats = %+v, want 6/6 complete", res.Stats)
	}
	if math.Abs(res.Stats.MeanCost-10.5) > 1e-9 {
		t.Errorf("mean cost = %v, want 10.5", res.Stats.MeanCost)
	}
	if res.Stats.StdDevCost <= 0 {
		t.Errorf("stddev = %v, want > 0", res.Stats.StdDevCost)
	}
	wantDist := []Bucket{{Routed: 3, Cost: 14, Orders: 3}, {Routed: 2, Cost: 7, Orders: 3}}
	if diff := cmp.Diff(wantDist, res.Stats.Distribution); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}

	// The returned occupancy is the winning trial's.
	for _, r := range res.Best.Results {
		for _, p := range r.Path {
			if blocked, _ := res.Occupancy.IsBlocked(p); !blocked {
				t.Errorf("cell %v of net %s not blocked in result occupancy", p, r.Net.ID)
			}
		}
	}
}

func TestExhaustive_NoWorseThanReferenceOrder(t *testing.T) {
	g, nets := crossingScenario(t)
	ctx := context.Background()

	ref, err := route.NewRouter(nil, nil).Route(ctx, grid.NewModel(g, grid.BlockPolicy()), nets, []int{1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Exhaustive{}.Optimize(ctx, g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if Better(ref, res.Best) {
		t.Errorf("reference order %v (%d routed, cost %d) beats optimizer (%d routed, cost %d)",
			ref.Order, ref.Routed, ref.TotalCost, res.Best.Routed, res.Best.TotalCost)
	}
}

func TestExhaustive_DeterministicAcrossWorkers(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		g, nets := randomScenario(t, seed, 5)

		serial, err := Exhaustive{Workers: 1}.Optimize(context.Background(), g, nets)
		if err != nil {
			t.Fatalf("seed %d: serial Optimize() error: %v", seed, err)
		}
		for _, workers := range []int{2, 4, 8} {
			par, err := Exhaustive{Workers: workers}.Optimize(context.Background(), g, nets)
			if err != nil {
				t.Fatalf("seed %d workers %d: Optimize() error: %v", seed, workers, err)
			}
			if diff := cmp.Diff(serial.Best, par.Best, ignoreErr); diff != "" {
				t.Errorf("seed %d workers %d: outcome differs (-serial +parallel):\n%s", seed, workers, diff)
			}
			if par.Stats.BestRank != serial.Stats.BestRank || par.Stats.Trials != 120 {
				t.Errorf("seed %d workers %d: rank %d trials %d, want rank %d trials 120",
					seed, workers, par.Stats.BestRank, par.Stats.Trials, serial.Stats.BestRank)
			}
		}
	}
}

func TestExhaustive_RepeatedRunsIdentical(t *testing.T) {
	g, nets := randomScenario(t, 42, 4)
	first, err := Exhaustive{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Exhaustive{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Best, again.Best, ignoreErr); diff != "" {
		t.Errorf("outcome differs between runs:\n%s", diff)
	}
}

func TestExhaustive_Limit(t *testing.T) {
	g, nets := crossingScenario(t)

	res, err := Exhaustive{Limit: 2}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Trials != 2 || res.Stats.Total != 2 || !res.Stats.Complete {
		t.Errorf("stats = %+v, want 2/2 complete", res.Stats)
	}
	// [0 1 2] and [0 2 1] both route 2 nets for cost 7.
	if !slices.Equal(res.Best.Order, []int{0, 1, 2}) || res.Best.Routed != 2 {
		t.Errorf("best = %v routed %d, want [0 1 2] routed 2", res.Best.Order, res.Best.Routed)
	}
}

func TestExhaustive_MaxNets(t *testing.T) {
	g, nets := randomScenario(t, 7, 4)

	_, err := Exhaustive{MaxNets: 3}.Optimize(context.Background(), g, nets)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Optimize() error = %v, want INVALID_INPUT", err)
	}
}

func TestExhaustive_CancelledBeforeFirstTrial(t *testing.T) {
	g, nets := crossingScenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := Exhaustive{Workers: workers}.Optimize(ctx, g, nets)
		if !errors.Is(err, errors.ErrCodeTimeout) {
			t.Errorf("workers %d: Optimize() error = %v, want TIMEOUT", workers, err)
		}
	}
}

func TestExhaustive_TimeoutKeepsBestSoFar(t *testing.T) {
	g, nets := randomScenario(t, 11, 9)

	var explored int
	res, err := Exhaustive{
		Timeout:  50 * time.Millisecond,
		Progress: func(n, _, _, _ int) { explored = n },
	}.Optimize(context.Background(), g, nets)
	if err != nil {
		// A slow machine may not finish one trial in time.
		if !errors.Is(err, errors.ErrCodeTimeout) {
			t.Fatalf("Optimize() error = %v", err)
		}
		return
	}
	if res.Stats.Total != 362880 {
		t.Errorf("total = %d, want 9!", res.Stats.Total)
	}
	if res.Stats.Complete {
		t.Skip("search finished all 9! orders within the timeout")
	}
	if res.Stats.Trials == 0 || res.Stats.Trials != explored {
		t.Errorf("trials = %d, progress saw %d", res.Stats.Trials, explored)
	}
}

func TestExhaustive_Progress(t *testing.T) {
	g, nets := crossingScenario(t)

	var calls [][4]int
	_, err := Exhaustive{
		Progress: func(explored, total, routed, cost int) {
			calls = append(calls, [4]int{explored, total, routed, cost})
		},
	}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}

	want := [][4]int{
		{1, 6, 2, 7},
		{2, 6, 2, 7},
		{3, 6, 3, 14},
		{4, 6, 3, 14},
		{5, 6, 3, 14},
		{6, 6, 3, 14},
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("progress calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHeuristic_ShortestFirst(t *testing.T) {
	g, nets := crossingScenario(t)

	if got := ShortestFirst(nets); !slices.Equal(got, []int{2, 1, 0}) {
		t.Errorf("ShortestFirst() = %v, want [2 1 0]", got)
	}

	res, err := Heuristic{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if res.Best.Routed != 3 || res.Best.TotalCost != 14 {
		t.Errorf("routed %d cost %d, want 3 and 14", res.Best.Routed, res.Best.TotalCost)
	}
	if res.Stats.Strategy != StrategyHeuristic || res.Stats.Trials != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
}

func TestShortestFirst_StableTies(t *testing.T) {
	nets := []route.Net{
		{ID: "x", Start: grid.Pt(0, 0, 0), Target: grid.Pt(2, 0, 0)},
		{ID: "y", Start: grid.Pt(0, 1, 0), Target: grid.Pt(0, 1, 1)},
		{ID: "z", Start: grid.Pt(3, 3, 0), Target: grid.Pt(4, 3, 1)},
		{ID: "w", Start: grid.Pt(0, 0, 1), Target: grid.Pt(0, 0, 1)},
	}
	// spans: x=2, y=1, z=2, w=0
	if got := ShortestFirst(nets); !slices.Equal(got, []int{3, 1, 0, 2}) {
		t.Errorf("ShortestFirst() = %v, want [3 1 0 2]", got)
	}
}

func TestSequential_InputOrder(t *testing.T) {
	g, nets := crossingScenario(t)

	res, err := Sequential{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(res.Best.Order, []int{0, 1, 2}) || res.Best.Routed != 2 {
		t.Errorf("order %v routed %d, want [0 1 2] routed 2", res.Best.Order, res.Best.Routed)
	}
	if diff := cmp.Diff([]Bucket{{Routed: 2, Cost: 7, Orders: 1}}, res.Stats.Distribution); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestAuto_FallsBackAboveMaxNets(t *testing.T) {
	g, nets := randomScenario(t, 5, 4)

	res, err := Auto{Exhaustive{MaxNets: 3}}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Strategy != StrategyHeuristic {
		t.Errorf("strategy = %s, want heuristic", res.Stats.Strategy)
	}

	res, err = Auto{}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.Strategy != StrategyExhaustive || res.Stats.Trials != 24 {
		t.Errorf("stats = %+v, want exhaustive with 24 trials", res.Stats)
	}
}

func TestInvalidPolicy(t *testing.T) {
	g, nets := crossingScenario(t)
	bad := grid.Policy{Kind: "sometimes"}

	for _, opt := range []Optimizer{Exhaustive{Policy: bad}, Heuristic{Policy: bad}, Sequential{Policy: bad}} {
		if _, err := opt.Optimize(context.Background(), g, nets); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%T: error = %v, want INVALID_INPUT", opt, err)
		}
	}
}

func TestCongestionPolicyRoutesEverything(t *testing.T) {
	g, nets := crossingScenario(t)

	res, err := Exhaustive{Policy: grid.CongestionPolicy(1)}.Optimize(context.Background(), g, nets)
	if err != nil {
		t.Fatal(err)
	}
	if res.Best.Routed != 3 {
		t.Errorf("routed = %d, want 3 under congestion", res.Best.Routed)
	}
	if res.Occupancy.BlockedCount() != 0 {
		t.Errorf("congestion must not block cells, %d blocked", res.Occupancy.BlockedCount())
	}
}

func TestBetter(t *testing.T) {
	o := func(routed, cost int) *route.Outcome { return &route.Outcome{Routed: routed, TotalCost: cost} }

	tests := []struct {
		name string
		a, b *route.Outcome
		want bool
	}{
		{"more routed wins", o(3, 100), o(2, 1), true},
		{"fewer routed loses", o(2, 1), o(3, 100), false},
		{"cheaper wins on tie", o(2, 10), o(2, 11), true},
		{"equal is not better", o(2, 10), o(2, 10), false},
		{"anything beats nil", o(0, 0), nil, true},
		{"nil never wins", nil, o(0, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Better(tt.a, tt.b); got != tt.want {
				t.Errorf("Better() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyAuto, false},
		{"exhaustive", StrategyExhaustive, false},
		{"Heuristic", StrategyHeuristic, false},
		{"SEQUENTIAL", StrategySequential, false},
		{"auto", StrategyAuto, false},
		{"greedy", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, s := range Strategies() {
		opt, err := New(s, Options{})
		if err != nil {
			t.Errorf("New(%s) error: %v", s, err)
			continue
		}
		if opt == nil {
			t.Errorf("New(%s) returned nil", s)
		}
	}
	if _, err := New("bogus", Options{}); err == nil {
		t.Error("New(bogus) succeeded")
	}
}
