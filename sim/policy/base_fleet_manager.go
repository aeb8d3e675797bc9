package policy

import (
	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// BaseFleetManager sends driverless vehicles (Driver == nil — no human
// schedule governs them, so nothing else will ever send them home) that
// have sat idle for twice IdleTimeOutSeconds to the nearest base with a
// free stall, rather than letting them roam indefinitely between
// unsuccessful repositions. Human-driven vehicles' base-seeking is
// instead driven by their own driver state (sim/driverstate
// HumanUnavailable), which already knows their home base.
type BaseFleetManager struct {
	ParkingIdleSeconds int64
	MaxSearchRadiusKm  float64
}

// NewBaseFleetManager returns a BaseFleetManager reading its thresholds
// from config.
func NewBaseFleetManager(cfg *sim.DispatcherConfig) *BaseFleetManager {
	return &BaseFleetManager{
		ParkingIdleSeconds: cfg.IdleTimeOutSeconds * 2,
		MaxSearchRadiusKm:  cfg.MaxSearchRadiusKm,
	}
}

func (b *BaseFleetManager) Name() string { return "base-fleet-manager" }

func (b *BaseFleetManager) Generate(s *sim.SimulationState, env *sim.Environment) (sim.Generator, []sim.Instruction) {
	var out []sim.Instruction

	for _, vid := range s.VehicleIDsSorted() {
		v := s.Vehicles[vid]
		if v.Driver != nil {
			continue
		}
		idle, ok := v.State.(*vehiclestate.Idle)
		if !ok || idle.IdleDuration < b.ParkingIdleSeconds {
			continue
		}
		target, ok := b.nearestBaseWithStall(s, v.Geoid())
		if !ok {
			continue
		}
		out = append(out, instruction.DispatchBase{Vid: vid, BaseId: target})
	}

	return b, out
}

func (b *BaseFleetManager) nearestBaseWithStall(s *sim.SimulationState, from sim.Geoid) (sim.BaseId, bool) {
	best := sim.BaseId("")
	bestDist := -1.0
	found := false
	for id, base := range s.Bases {
		if !base.HasFreeStall() {
			continue
		}
		d := s.RoadNetwork.DistanceKm(from, base.Geoid)
		if d > b.MaxSearchRadiusKm {
			continue
		}
		if !found || d < bestDist || (d == bestDist && id < best) {
			best, bestDist, found = id, d, true
		}
	}
	return best, found
}
