package driverstate

import (
	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// HumanAvailable is a human-driven vehicle currently on-shift, per its
// ScheduleFunc. While available it behaves like an autonomous vehicle for
// dispatch purposes, with two human-specific nudges: it unplugs early
// once its battery reaches the ideal fast-charge limit, and it abandons
// an idle reserved-base/charging-base stall to return to active search.
type HumanAvailable struct {
	Attributes Attributes
}

// NewHumanAvailable returns a HumanAvailable driver state.
func NewHumanAvailable(a Attributes) *HumanAvailable { return &HumanAvailable{Attributes: a} }

func (d *HumanAvailable) Name() string            { return "HumanAvailable" }
func (d *HumanAvailable) VehicleID() sim.VehicleId { return d.Attributes.VehicleID }

func (d *HumanAvailable) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, sim.DriverState, error) {
	vid := d.Attributes.VehicleID
	if _, ok := s.Vehicles[vid]; !ok {
		return nil, nil, &sim.SimulationStateError{Op: "human_available.update", Msg: "vehicle not found: " + string(vid)}
	}
	if d.Attributes.schedule()(s, vid) {
		return s, d, nil
	}
	env.Reporter.File(sim.Report{Type: "driver_schedule", Time: s.SimTime, Fields: map[string]string{
		"vehicle_id": string(vid), "event": "off_shift",
	}})
	return s, NewHumanUnavailable(d.Attributes), nil
}

func (d *HumanAvailable) GenerateInstructions(s *sim.SimulationState, env *sim.Environment) []sim.Instruction {
	v, ok := s.Vehicles[d.Attributes.VehicleID]
	if !ok {
		return nil
	}
	switch v.State.(type) {
	case *vehiclestate.ReserveBase, *vehiclestate.ChargingBase:
		// back on shift while parked at home: give up the stall and
		// rejoin active search immediately rather than waiting for the
		// base fleet manager's next pass.
		return []sim.Instruction{instruction.Idle{Vid: d.Attributes.VehicleID}}
	case *vehiclestate.ChargingStation:
		if v.EnergySource.IsAtIdealLimit() {
			return []sim.Instruction{instruction.Idle{Vid: d.Attributes.VehicleID}}
		}
	}
	return nil
}
