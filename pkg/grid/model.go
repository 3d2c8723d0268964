package grid

import (
	"fmt"

	"github.com/matzehuels/layerroute/pkg/errors"
)

// PolicyKind selects how claimed cells affect later nets.
type PolicyKind string

const (
	// PolicyBlock makes claimed cells impassable.
	PolicyBlock PolicyKind = "block"
	// PolicyCongestion leaves cells passable but raises their cost per claim.
	PolicyCongestion PolicyKind = "congestion"
)

// DefaultCongestionIncrement is the cost added per claim under
// PolicyCongestion when no increment is configured.
const DefaultCongestionIncrement = 1

// Policy configures occupancy handling for a routing session.
type Policy struct {
	Kind      PolicyKind `json:"kind" toml:"kind"`
	Increment int        `json:"increment,omitempty" toml:"increment"`
}

// BlockPolicy returns the hard-blocking policy.
func BlockPolicy() Policy { return Policy{Kind: PolicyBlock} }

// CongestionPolicy returns a congestion policy with the given increment.
func CongestionPolicy(increment int) Policy {
	return Policy{Kind: PolicyCongestion, Increment: increment}
}

// Normalize fills defaults and validates the policy. A congestion increment
// of 0 means DefaultCongestionIncrement.
func (p Policy) Normalize() (Policy, error) {
	switch p.Kind {
	case "", PolicyBlock:
		return Policy{Kind: PolicyBlock}, nil
	case PolicyCongestion:
		if p.Increment == 0 {
			p.Increment = DefaultCongestionIncrement
		}
		if p.Increment < 0 {
			return p, errors.New(errors.ErrCodeInvalidInput, "congestion increment must be >= 1 (0 selects the default), got %d", p.Increment)
		}
		return p, nil
	default:
		return p, errors.New(errors.ErrCodeInvalidInput, "unknown occupancy policy %q (must be block or congestion)", p.Kind)
	}
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p.Kind == PolicyCongestion {
		return fmt.Sprintf("congestion(+%d)", p.Increment)
	}
	return string(PolicyBlock)
}

// Model is the view a path search runs against: immutable tables from the
// Grid, mutable claims from the Occupancy, interpreted by the Policy.
type Model struct {
	Grid      *Grid
	Occupancy *Occupancy
	Policy    Policy
}

// NewModel returns a model over g with a fresh, all-free occupancy.
// An invalid policy falls back to PolicyBlock; validate with
// Policy.Normalize beforehand when the policy comes from user input.
func NewModel(g *Grid, policy Policy) *Model {
	p, err := policy.Normalize()
	if err != nil {
		p = BlockPolicy()
	}
	return &Model{Grid: g, Occupancy: NewOccupancy(g), Policy: p}
}

// Congested reports whether the model uses the congestion policy.
func (m *Model) Congested() bool { return m.Policy.Kind == PolicyCongestion }

// Cost returns the effective traversal cost of p: the base cost, plus the
// congestion surcharge under PolicyCongestion.
func (m *Model) Cost(p Point) (int, error) {
	if err := m.Grid.Validate(p); err != nil {
		return 0, err
	}
	return m.CostAt(p), nil
}

// CostAt is Cost without bounds checking.
func (m *Model) CostAt(p Point) int {
	c := m.Grid.CostAt(p)
	if m.Congested() {
		c += m.Policy.Increment * m.Occupancy.usage[m.Grid.Index(p)]
	}
	return c
}

// IsBlocked reports whether p is unavailable. Under PolicyCongestion no
// cell is ever blocked.
func (m *Model) IsBlocked(p Point) (bool, error) {
	if err := m.Grid.Validate(p); err != nil {
		return false, err
	}
	return m.BlockedAt(p), nil
}

// BlockedAt is IsBlocked without bounds checking.
func (m *Model) BlockedAt(p Point) bool {
	if m.Congested() {
		return false
	}
	return m.Occupancy.blockedAt(p)
}

// ViaAvailable delegates to the grid's via topology.
func (m *Model) ViaAvailable(row, col, layerA, layerB int) bool {
	return m.Grid.ViaAvailable(row, col, layerA, layerB)
}

// Claim records a routed path according to the policy: cells are blocked
// under PolicyBlock, and their usage counters raised under PolicyCongestion.
func (m *Model) Claim(path []Point) error {
	if m.Congested() {
		return m.Occupancy.AddUsage(path)
	}
	return m.Occupancy.MarkBlocked(path)
}
