// Package starmap resolves star-system names to coordinates through a
// pluggable lookup source, with a TTL cache in front of it.
package starmap

import (
	"errors"
	"math"
)

// Lookup error classes. Wrapped errors from a Resolver satisfy errors.Is
// against these.
var (
	// ErrNotFound means the source confirmed the system does not exist.
	ErrNotFound = errors.New("system not found")
	// ErrSourceUnavailable means the source could not be reached or timed out.
	// Never cached.
	ErrSourceUnavailable = errors.New("coordinate source unavailable")
	// ErrInvalidKey means the system name was empty or malformed.
	// Rejected before any source call.
	ErrInvalidKey = errors.New("invalid system name")
)

// StarSystem holds resolved coordinates for one star system, in light years.
// Immutable once resolved. The name preserves the source's casing; cache
// comparisons are case-insensitive.
type StarSystem struct {
	Name string
	X    float64
	Y    float64
	Z    float64

	// Distance to the nearest boost star, in light years. 0 means the
	// system's own primary is the boost star. nil means the source reported
	// no such star; boosts never trigger on nil.
	NeutronDistanceLY    *float64
	WhiteDwarfDistanceLY *float64
}

// DistanceTo returns the straight-line distance to another system.
func (s StarSystem) DistanceTo(o StarSystem) float64 {
	dx := o.X - s.X
	dy := o.Y - s.Y
	dz := o.Z - s.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
