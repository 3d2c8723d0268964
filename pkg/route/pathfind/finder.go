package pathfind

import (
	"container/heap"
	"math"
	"slices"

	"github.com/matzehuels/layerroute/pkg/errors"
	"github.com/matzehuels/layerroute/pkg/grid"
)

// Result is a successful search.
type Result struct {
	// Path runs from start to target inclusive.
	Path []grid.Point
	// Cost is the accumulated cost of Path, start cell included.
	Cost int
	// Expanded counts the search states popped and relaxed.
	Expanded int
}

// Finder runs constrained shortest-path searches. A Finder holds no
// per-search state and is safe for concurrent use; each call allocates its
// own frontier.
type Finder struct {
	cfg Config
}

// New creates a Finder with the given capabilities. Invalid negative costs
// are clamped to zero; call Config.Validate first to surface them.
func New(cfg Config) *Finder {
	cfg.ViaCost = max(cfg.ViaCost, 0)
	cfg.TurnCost = max(cfg.TurnCost, 0)
	return &Finder{cfg: cfg}
}

// Config returns the finder's capability set.
func (f *Finder) Config() Config { return f.cfg }

// Find returns the minimum-cost path from start to target on m.
//
// Errors, in order of checking:
//   - INVALID_COORDINATE if start or target lies outside the grid;
//   - UNREACHABLE if blocking is on and start or target is claimed
//     (no search is run);
//   - UNREACHABLE if no finite-cost path exists.
func (f *Finder) Find(m *grid.Model, start, target grid.Point) (Result, error) {
	g := m.Grid
	if err := g.Validate(start); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "invalid start")
	}
	if err := g.Validate(target); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "invalid target")
	}
	if f.cfg.Blocking {
		if m.BlockedAt(start) {
			return Result{}, errors.New(errors.ErrCodeUnreachable, "start %s is already claimed", start)
		}
		if m.BlockedAt(target) {
			return Result{}, errors.New(errors.ErrCodeUnreachable, "target %s is already claimed", target)
		}
	}

	s := f.newSearch(m)
	return s.run(start, target)
}

// search holds the state of one Find call.
type search struct {
	cfg    Config
	m      *grid.Model
	g      *grid.Grid
	dirs   int // direction states per cell: 1, or numDirStates with turns
	dist   []int
	parent []int32
	done   []bool
	pq     frontier
}

func (f *Finder) newSearch(m *grid.Model) *search {
	dirs := 1
	if f.cfg.TracksTurns() {
		dirs = numDirStates
	}
	n := m.Grid.Size() * dirs
	s := &search{
		cfg:    f.cfg,
		m:      m,
		g:      m.Grid,
		dirs:   dirs,
		dist:   make([]int, n),
		parent: make([]int32, n),
		done:   make([]bool, n),
	}
	for i := range s.dist {
		s.dist[i] = math.MaxInt
		s.parent[i] = -1
	}
	return s
}

// state packs a cell and an incoming direction. Because the cell index is
// ordered by (layer, row, col), comparing states compares
// (layer, row, col, dir) lexicographically.
func (s *search) state(p grid.Point, d Dir) int {
	if s.dirs == 1 {
		return s.g.Index(p)
	}
	return s.g.Index(p)*s.dirs + int(d)
}

func (s *search) decode(st int) (grid.Point, Dir) {
	if s.dirs == 1 {
		return s.g.Point(st), NoDir
	}
	return s.g.Point(st / s.dirs), Dir(st % s.dirs)
}

func (s *search) run(start, target grid.Point) (Result, error) {
	src := s.state(start, NoDir)
	s.dist[src] = s.m.CostAt(start)
	heap.Push(&s.pq, entry{cost: s.dist[src], state: src})

	expanded := 0
	for s.pq.Len() > 0 {
		e := heap.Pop(&s.pq).(entry)
		if s.done[e.state] || e.cost > s.dist[e.state] {
			continue
		}
		s.done[e.state] = true

		p, d := s.decode(e.state)
		if p == target {
			return Result{Path: s.path(e.state), Cost: e.cost, Expanded: expanded}, nil
		}
		expanded++
		s.relax(e.state, p, d)
	}

	return Result{}, errors.New(errors.ErrCodeUnreachable, "no path from %s to %s", start, target)
}

// relax pushes every improved neighbour of (p, d).
func (s *search) relax(from int, p grid.Point, d Dir) {
	base := s.dist[from]

	for nd := East; nd <= West; nd++ {
		q := nd.Step(p)
		if !s.g.Contains(q) || s.blocked(q) {
			continue
		}
		w := s.m.CostAt(q)
		next := NoDir
		if s.dirs > 1 {
			next = nd
			if d != NoDir && d != nd {
				w += s.cfg.TurnCost
			}
		}
		s.push(from, s.state(q, next), base+w)
	}

	if !s.cfg.Vias {
		return
	}
	for _, layer := range [2]int{p.Layer - 1, p.Layer + 1} {
		if !s.m.ViaAvailable(p.Y, p.X, p.Layer, layer) {
			continue
		}
		q := grid.Point{X: p.X, Y: p.Y, Layer: layer}
		if s.blocked(q) {
			continue
		}
		// A via keeps the planar direction the path arrived with.
		s.push(from, s.state(q, d), base+s.cfg.ViaCost+s.m.CostAt(q))
	}
}

func (s *search) blocked(p grid.Point) bool {
	return s.cfg.Blocking && s.m.BlockedAt(p)
}

func (s *search) push(from, to, cost int) {
	if s.done[to] || cost >= s.dist[to] {
		return
	}
	s.dist[to] = cost
	s.parent[to] = int32(from)
	heap.Push(&s.pq, entry{cost: cost, state: to})
}

// path walks parent pointers back from the target state.
func (s *search) path(st int) []grid.Point {
	var out []grid.Point
	for st >= 0 {
		p, _ := s.decode(st)
		out = append(out, p)
		st = int(s.parent[st])
	}
	slices.Reverse(out)
	return out
}

// entry is a frontier item.
type entry struct {
	cost  int
	state int
}

// frontier is a min-heap of entries ordered by cost, then state.
type frontier []entry

func (pq frontier) Len() int { return len(pq) }

func (pq frontier) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].state < pq[j].state
}

func (pq frontier) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *frontier) Push(x any) { *pq = append(*pq, x.(entry)) }

func (pq *frontier) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
