// Package linear implements sim.Mechatronics as a linear powertrain
// model: energy cost proportional to distance, charge rate proportional
// to charger power and duration, clamped by remaining headroom to full.
package linear

import "github.com/hive-sim/hive/sim"

func init() {
	sim.RegisterMechatronics("linear", New)
}

// chargerPowerKW is the nominal delivered power for each charger kind.
var chargerPowerKW = map[sim.ChargerKind]float64{
	sim.ChargerLevel2: 7.2,
	sim.ChargerDCFast: 150.0,
	sim.ChargerPump:   0, // liquid refuel is instantaneous, modeled outside ChargeKWh
}

// kwhPerKm is the nominal energy cost of travel, held constant across
// vehicle types in this model.
const kwhPerKm = 0.25

// Model is a linear powertrain/powercurve model: energy cost scales
// linearly with distance, charge delivery scales linearly with charger
// power and duration, independent of current state of charge.
type Model struct {
	capacityKWh float64
}

// New constructs a linear Model with the given usable capacity.
func New(capacityKWh float64) sim.Mechatronics {
	return &Model{capacityKWh: capacityKWh}
}

func (m *Model) EnergyCostKWh(route sim.Route) float64 {
	var distKm sim.Kilometers
	for _, link := range route {
		distKm += link.DistKm
	}
	return distKm * kwhPerKm
}

func (m *Model) ChargeKWh(charger sim.ChargerKind, currentLevel float64, duration sim.Seconds) float64 {
	powerKW := chargerPowerKW[charger]
	hours := float64(duration) * sim.SecondsToHours
	headroomKWh := (1 - currentLevel) * m.capacityKWh
	delivered := powerKW * hours
	if delivered > headroomKWh {
		delivered = headroomKWh
	}
	return delivered
}

func (m *Model) RangeRemainingKm(level float64) sim.Kilometers {
	return (level * m.capacityKWh) / kwhPerKm
}

func (m *Model) CapacityKWh() float64 { return m.capacityKWh }
