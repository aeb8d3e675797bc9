package sim

import "fmt"

// Mechatronics combines a powertrain and powercurve model for one vehicle
// type. Out of core scope per spec.md §1; consumed as an interface only.
// Implementations live in sim/mechatronics/linear (default) and can be
// swapped for a physical powercurve table without touching the core.
type Mechatronics interface {
	// EnergyCostKWh returns the energy, in kWh, consumed traversing route.
	EnergyCostKWh(route Route) float64
	// ChargeKWh returns the energy, in kWh, delivered by charging at the
	// given charger kind for duration seconds, given the vehicle's current
	// energy level in [0,1].
	ChargeKWh(charger ChargerKind, currentLevel float64, duration Seconds) float64
	// RangeRemainingKm estimates remaining range at the given energy level.
	RangeRemainingKm(level float64) Kilometers
	// CapacityKWh is the total usable battery/tank capacity.
	CapacityKWh() float64
}

var newMechatronics = map[string]func(capacityKWh float64) Mechatronics{}

// RegisterMechatronics is called from a subpackage's init() to make a named
// Mechatronics implementation available to NewMechatronics.
func RegisterMechatronics(name string, ctor func(capacityKWh float64) Mechatronics) {
	newMechatronics[name] = ctor
}

// NewMechatronics builds a registered Mechatronics implementation by name.
func NewMechatronics(name string, capacityKWh float64) Mechatronics {
	ctor, ok := newMechatronics[name]
	if !ok {
		panic(fmt.Sprintf("mechatronics %q not registered; import its sim/mechatronics/* package", name))
	}
	return ctor(capacityKWh)
}
