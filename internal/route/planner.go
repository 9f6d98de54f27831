// Package route converts a pair of resolved systems into a jump plan.
package route

import (
	"errors"
	"fmt"
	"math"

	"ratnav/internal/starmap"
)

// ErrInvalidRange reports a non-positive laden jump range. Configuration
// validation rejects this at load time; the planner still fails fast rather
// than divide by zero.
var ErrInvalidRange = errors.New("laden jump range must be positive")

// Class is the selected route variant.
type Class int

const (
	Direct Class = iota
	NeutronHighway
	WhiteDwarfAssisted
)

// Jump range multipliers from supercharging the frame shift drive.
const (
	NeutronMultiplier    = 4.0
	WhiteDwarfMultiplier = 1.5
)

// String returns the human-readable route label.
func (c Class) String() string {
	switch c {
	case NeutronHighway:
		return "neutron highway"
	case WhiteDwarfAssisted:
		return "white dwarf assisted"
	default:
		return "direct"
	}
}

// Plan is the computed route. Produced once per request, immutable.
type Plan struct {
	JumpCount        int
	TotalDistanceLY  float64
	Class            Class
	Origin           string
	Destination      string
	EffectiveRangeLY float64
}

// Compute plans a route from origin to destination with the given laden
// jump range and boost thresholds, all in light years.
//
// Boost selection: if the distance reaches neutronThresholdLY (inclusive)
// and the destination has neutron proximity data, the neutron highway's 4x
// multiplier applies. Otherwise, a distance reaching whiteDwarfThresholdLY
// with white-dwarf proximity data applies the 1.5x multiplier. When both
// qualify, the neutron highway wins regardless of which threshold sits
// closer to the distance. Without proximity data no boost ever triggers.
func Compute(origin, dest starmap.StarSystem, ladenRangeLY, neutronThresholdLY, whiteDwarfThresholdLY float64) (Plan, error) {
	if ladenRangeLY <= 0 {
		return Plan{}, fmt.Errorf("%w, got %.2f", ErrInvalidRange, ladenRangeLY)
	}

	distance := origin.DistanceTo(dest)
	plan := Plan{
		TotalDistanceLY:  distance,
		Class:            Direct,
		Origin:           origin.Name,
		Destination:      dest.Name,
		EffectiveRangeLY: ladenRangeLY,
	}
	if distance == 0 {
		// Same system; nothing to fly.
		return plan, nil
	}

	switch {
	case distance >= neutronThresholdLY && dest.NeutronDistanceLY != nil:
		plan.Class = NeutronHighway
		plan.EffectiveRangeLY = ladenRangeLY * NeutronMultiplier
	case distance >= whiteDwarfThresholdLY && dest.WhiteDwarfDistanceLY != nil:
		plan.Class = WhiteDwarfAssisted
		plan.EffectiveRangeLY = ladenRangeLY * WhiteDwarfMultiplier
	}

	jumps := int(math.Ceil(distance / plan.EffectiveRangeLY))
	if jumps < 1 {
		jumps = 1
	}
	plan.JumpCount = jumps
	return plan, nil
}
