package pathfind

import (
	"fmt"

	"github.com/matzehuels/layerroute/pkg/errors"
)

// DefaultViaCost is the fixed cost of one layer change.
const DefaultViaCost = 20

// Config is the capability set of a Finder.
type Config struct {
	// ViaCost is added to the destination cell's cost on every layer change.
	ViaCost int `json:"via_cost" toml:"via_cost"`

	// TurnCost is charged whenever the planar direction changes.
	// Zero disables turn tracking.
	TurnCost int `json:"turn_cost,omitempty" toml:"turn_cost"`

	// Vias enables layer transitions.
	Vias bool `json:"vias" toml:"vias"`

	// Blocking makes claimed cells impassable and fails fast when the start
	// or target is claimed.
	Blocking bool `json:"blocking" toml:"blocking"`
}

// DefaultConfig enables vias and blocking with DefaultViaCost and no turn
// penalty.
func DefaultConfig() Config {
	return Config{
		ViaCost:  DefaultViaCost,
		Vias:     true,
		Blocking: true,
	}
}

// Validate rejects negative costs.
func (c Config) Validate() error {
	if c.ViaCost < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "via cost must be >= 0, got %d", c.ViaCost)
	}
	if c.TurnCost < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "turn cost must be >= 0, got %d", c.TurnCost)
	}
	return nil
}

// TracksTurns reports whether the search state includes the direction.
func (c Config) TracksTurns() bool { return c.TurnCost > 0 }

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("vias=%t via_cost=%d blocking=%t turn_cost=%d", c.Vias, c.ViaCost, c.Blocking, c.TurnCost)
}
