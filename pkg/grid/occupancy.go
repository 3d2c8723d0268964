package grid

// Occupancy is the per-trial mutable state of a Grid: which cells routed
// nets have claimed, and how often each cell was used (for congestion).
//
// An Occupancy is not safe for concurrent mutation. Each routing trial
// owns its own copy.
type Occupancy struct {
	g       *Grid
	blocked []bool
	usage   []int
}

// NewOccupancy returns an all-free occupancy state for g.
func NewOccupancy(g *Grid) *Occupancy {
	return &Occupancy{
		g:       g,
		blocked: make([]bool, g.Size()),
		usage:   make([]int, g.Size()),
	}
}

// Grid returns the grid this state belongs to.
func (o *Occupancy) Grid() *Grid { return o.g }

// IsBlocked reports whether p has been claimed.
func (o *Occupancy) IsBlocked(p Point) (bool, error) {
	if err := o.g.Validate(p); err != nil {
		return false, err
	}
	return o.blocked[o.g.Index(p)], nil
}

// blockedAt skips validation; p must be in bounds.
func (o *Occupancy) blockedAt(p Point) bool {
	return o.blocked[o.g.Index(p)]
}

// MarkBlocked claims every cell of path. Marking an already blocked cell is
// a no-op. All points are validated before any cell changes, so an invalid
// path leaves the state untouched.
func (o *Occupancy) MarkBlocked(path []Point) error {
	if err := o.validatePath(path); err != nil {
		return err
	}
	for _, p := range path {
		o.blocked[o.g.Index(p)] = true
	}
	return nil
}

// AddUsage increments the usage counter of every distinct cell of path.
func (o *Occupancy) AddUsage(path []Point) error {
	if err := o.validatePath(path); err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(path))
	for _, p := range path {
		i := o.g.Index(p)
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		o.usage[i]++
	}
	return nil
}

// Usage returns how many claims have used p. Out-of-bounds points report 0.
func (o *Occupancy) Usage(p Point) int {
	if !o.g.Contains(p) {
		return 0
	}
	return o.usage[o.g.Index(p)]
}

// BlockedCount returns the number of claimed cells.
func (o *Occupancy) BlockedCount() int {
	n := 0
	for _, b := range o.blocked {
		if b {
			n++
		}
	}
	return n
}

// Clone returns an independent copy.
func (o *Occupancy) Clone() *Occupancy {
	return &Occupancy{
		g:       o.g,
		blocked: append([]bool(nil), o.blocked...),
		usage:   append([]int(nil), o.usage...),
	}
}

func (o *Occupancy) validatePath(path []Point) error {
	for _, p := range path {
		if err := o.g.Validate(p); err != nil {
			return err
		}
	}
	return nil
}
