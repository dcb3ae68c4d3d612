package declutter

import (
	"errors"
	"fmt"
	"math"

	"github.com/matzehuels/celltower/pkg/geo"
)

// Default nudge parameters, in degrees.
const (
	DefaultTolerance   = 0.001
	DefaultDownOffset  = -0.0002
	DefaultRightOffset = 0.0002
)

// ErrInvalidTolerance is returned by [Options.Validate] for a tolerance
// that is negative or not finite.
var ErrInvalidTolerance = errors.New("tolerance must be a positive number of degrees")

// Direction is the last nudge applied within a proximity group.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionDown
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionDown:
		return "down"
	case DirectionRight:
		return "right"
	default:
		return "none"
	}
}

// MarshalText encodes the direction as its name.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText decodes a direction name; unknown names become DirectionNone.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "down":
		*d = DirectionDown
	case "right":
		*d = DirectionRight
	default:
		*d = DirectionNone
	}
	return nil
}

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	Tolerance   float64 `json:"tolerance,omitempty" toml:"tolerance"`
	DownOffset  float64 `json:"down_offset,omitempty" toml:"down_offset"`
	RightOffset float64 `json:"right_offset,omitempty" toml:"right_offset"`
}

// WithDefaults returns o with zero fields replaced by the package defaults.
func (o Options) WithDefaults() Options {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.DownOffset == 0 {
		o.DownOffset = DefaultDownOffset
	}
	if o.RightOffset == 0 {
		o.RightOffset = DefaultRightOffset
	}
	return o
}

// Validate rejects a negative or non-finite tolerance and non-finite
// offsets. Zero values are valid and mean "use the default".
func (o Options) Validate() error {
	if math.IsNaN(o.Tolerance) || math.IsInf(o.Tolerance, 0) || o.Tolerance < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidTolerance, o.Tolerance)
	}
	for _, off := range []float64{o.DownOffset, o.RightOffset} {
		if math.IsNaN(off) || math.IsInf(off, 0) {
			return fmt.Errorf("offset must be finite: %v", off)
		}
	}
	return nil
}

// Placement is the outcome for one point.
type Placement struct {
	Point     geo.GeoPoint `json:"point"`
	Anchor    int          `json:"anchor"`    // index into Groups, or -1 if the point became an anchor
	Direction Direction    `json:"direction"` // nudge applied to this point
}

// Shifted reports whether the point was moved.
func (p Placement) Shifted() bool { return p.Direction != DirectionNone }

// Group is the tracked state of one anchor.
type Group struct {
	Anchor        geo.GeoPoint
	Count         int
	LastDirection Direction
}

// Engine runs one declutter pass.
type Engine struct {
	opts   Options
	index  map[geo.GeoPoint]int
	groups []Group
	stats  Stats
}

// New creates an engine with an empty anchor list.
func New(opts Options) *Engine {
	return &Engine{
		opts:  opts.WithDefaults(),
		index: make(map[geo.GeoPoint]int),
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Place processes the next point of the pass and returns its final position.
func (e *Engine) Place(p geo.GeoPoint) Placement {
	e.stats.Sites++

	for i := range e.groups {
		g := &e.groups[i]
		if !(p.PlanarDistance(g.Anchor) < e.opts.Tolerance) {
			continue
		}

		out := Placement{Point: p, Anchor: i}
		switch {
		case g.LastDirection == DirectionRight || g.Count == 0:
			out.Point = p.Add(e.opts.DownOffset, 0)
			out.Direction = DirectionDown
			g.LastDirection = DirectionDown
			e.stats.ShiftedDown++
		case g.LastDirection == DirectionDown:
			out.Point = p.Add(0, e.opts.RightOffset)
			out.Direction = DirectionRight
			g.LastDirection = DirectionRight
			e.stats.ShiftedRight++
		default:
			// none with a non-zero count: left in place
			e.stats.Unshifted++
		}
		g.Count++

		e.stats.MaxGroupSize = max(e.stats.MaxGroupSize, g.Count+1)
		e.stats.MaxDisplacementMeters = max(e.stats.MaxDisplacementMeters, p.MetersTo(out.Point))
		return out
	}

	e.register(p)
	e.stats.MaxGroupSize = max(e.stats.MaxGroupSize, 1)
	return Placement{Point: p, Anchor: -1}
}

// register adds p as an anchor. An existing identical key is reset in place
// and keeps its position in the scan order.
func (e *Engine) register(p geo.GeoPoint) {
	if i, ok := e.index[p]; ok {
		e.groups[i] = Group{Anchor: p}
		return
	}
	e.index[p] = len(e.groups)
	e.groups = append(e.groups, Group{Anchor: p})
	e.stats.Anchors++
}

// Groups returns a copy of the anchors in insertion order.
func (e *Engine) Groups() []Group {
	out := make([]Group, len(e.groups))
	copy(out, e.groups)
	return out
}

// Stats returns counters for the pass so far.
func (e *Engine) Stats() Stats { return e.stats }

// Points runs a full pass over points and returns the adjusted positions.
// The input slice is not modified.
func Points(points []geo.GeoPoint, opts Options) []geo.GeoPoint {
	eng := New(opts)
	out := make([]geo.GeoPoint, len(points))
	for i, p := range points {
		out[i] = eng.Place(p).Point
	}
	return out
}
