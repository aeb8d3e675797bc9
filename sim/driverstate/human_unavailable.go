package driverstate

import (
	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// HumanUnavailable is a human-driven vehicle off-shift, per its
// ScheduleFunc. While unavailable it works its way home: already
// en route to its base, it sticks with the plan; dispatching to or
// charging at a station, it heads home only once its remaining range
// exceeds the distance home plus ChargingRangeKmThreshold; in any other
// state it heads home directly, with no range check. It never sends the
// vehicle to a station itself. At home it charges at the base when the
// base has a station and the battery is below IdealFastchargeSocLimit,
// and otherwise parks an idle vehicle in a reserved stall.
type HumanUnavailable struct {
	Attributes Attributes
}

// NewHumanUnavailable returns a HumanUnavailable driver state.
func NewHumanUnavailable(a Attributes) *HumanUnavailable { return &HumanUnavailable{Attributes: a} }

func (d *HumanUnavailable) Name() string            { return "HumanUnavailable" }
func (d *HumanUnavailable) VehicleID() sim.VehicleId { return d.Attributes.VehicleID }

func (d *HumanUnavailable) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, sim.DriverState, error) {
	vid := d.Attributes.VehicleID
	if _, ok := s.Vehicles[vid]; !ok {
		return nil, nil, &sim.SimulationStateError{Op: "human_unavailable.update", Msg: "vehicle not found: " + string(vid)}
	}
	if !d.Attributes.schedule()(s, vid) {
		return s, d, nil
	}
	env.Reporter.File(sim.Report{Type: "driver_schedule", Time: s.SimTime, Fields: map[string]string{
		"vehicle_id": string(vid), "event": "on_shift",
	}})
	return s, NewHumanAvailable(d.Attributes), nil
}

func (d *HumanUnavailable) GenerateInstructions(s *sim.SimulationState, env *sim.Environment) []sim.Instruction {
	vid := d.Attributes.VehicleID
	v, ok := s.Vehicles[vid]
	if !ok {
		return nil
	}
	base, ok := s.Bases[d.Attributes.HomeBaseID]
	if !ok {
		return nil
	}

	atHome := v.Geoid() == base.Geoid
	if !atHome {
		switch v.State.(type) {
		case *vehiclestate.DispatchBase:
			return nil // already on its way
		case *vehiclestate.DispatchStation, *vehiclestate.ChargingStation:
			mech, ok := env.MechatronicsFor(v.MechatronicsID)
			if !ok {
				return nil
			}
			remainingKm := mech.RangeRemainingKm(v.EnergySource.Level)
			requiredKm := s.RoadNetwork.DistanceKm(v.Geoid(), base.Geoid)
			if remainingKm > requiredKm+env.Config.Dispatcher.ChargingRangeKmThreshold {
				return []sim.Instruction{instruction.DispatchBase{Vid: vid, BaseId: base.ID}}
			}
			return nil
		default:
			return []sim.Instruction{instruction.DispatchBase{Vid: vid, BaseId: base.ID}}
		}
	}

	_, ok = env.MechatronicsFor(v.MechatronicsID)
	notFull := ok && v.EnergySource.Level < env.Config.Dispatcher.IdealFastchargeSocLimit
	if notFull && base.HasStation {
		if _, charging := v.State.(*vehiclestate.ChargingBase); !charging {
			return []sim.Instruction{instruction.DispatchBase{Vid: vid, BaseId: base.ID}}
		}
		return nil
	}
	if _, idle := v.State.(*vehiclestate.Idle); idle {
		return []sim.Instruction{instruction.ReserveBase{Vid: vid, BaseId: base.ID}}
	}
	return nil
}
