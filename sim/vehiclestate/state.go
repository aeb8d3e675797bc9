// Package vehiclestate implements the closed set of vehicle state-machine
// variants from spec.md §4.2: Idle, Repositioning, DispatchTrip,
// ServicingTrip, DispatchStation, ChargingStation, DispatchBase,
// ChargingBase, ReserveBase, OutOfService. Each variant is a small struct
// implementing sim.VehicleState; shared transition plumbing lives here.
package vehiclestate

import (
	"github.com/hive-sim/hive/sim"
)

// CanTransition implements spec.md §4.2 "Transition rules":
//   - self-transition is a no-op (rejected here; caller should treat as ok)
//   - from OutOfService: no transitions
//   - if the vehicle has passengers: no transition (they would be stranded),
//     except into OutOfService itself — energy exhaustion mid-trip is a
//     documented boundary condition, not something to block forever.
func CanTransition(v sim.Vehicle, next sim.VehicleState) bool {
	if v.State != nil && v.State.Name() == next.Name() {
		return false
	}
	if v.State != nil && v.State.Name() == "OutOfService" {
		return false
	}
	if v.HasPassengers() && next.Name() != "OutOfService" {
		return false
	}
	return true
}

// Transition moves vehicle vid into next, running exit/enter hooks and
// applying the §4.2 side effects (idle-duration reset, charger-intent
// release) along the way. Returns an *sim.EntityError (not fatal) if the
// transition is inadmissible; self-transition is treated as a no-op
// success, matching the original's vehicle.transition semantics.
func Transition(s *sim.SimulationState, env *sim.Environment, vid sim.VehicleId, next sim.VehicleState) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(vid), Msg: "vehicle not found for transition"}
	}
	if v.State != nil && v.State.Name() == next.Name() {
		return s, nil
	}
	if !CanTransition(v, next) {
		return nil, &sim.EntityError{Entity: string(vid), Msg: "cannot transition from " + stateName(v) + " to " + next.Name()}
	}

	previous := v.State
	exited := s
	if previous != nil {
		var err error
		exited, err = previous.Exit(s, env)
		if err != nil {
			return nil, err
		}
	}

	// Neither DispatchStation nor DispatchBase holds a charger reservation
	// while en route — each checks one out only at the moment it
	// transitions into ChargingStation / ChargingBase — so only those two
	// charge-category states have a plug to release here.
	releaseChargerIntent := isChargeCategory(previous) && !isChargeCategory(next)

	// The plug is released while the vehicle still carries its previous
	// state, which names the station the plug belongs to.
	updatedVehicle := exited.Vehicles[vid]
	if releaseChargerIntent && updatedVehicle.HasChargerIntent {
		exited, updatedVehicle = releasePlug(exited, updatedVehicle)
	}
	updatedVehicle.State = next

	if prevHolder, ok := previous.(baseHolder); ok {
		if baseID, held := prevHolder.BaseID(); held {
			if nextHolder, ok := next.(baseHolder); !ok || func() bool { id, stillHeld := nextHolder.BaseID(); return !stillHeld || id != baseID }() {
				exited = releaseStall(exited, baseID)
			}
		}
	}

	withState, err := exited.ModifyVehicle(updatedVehicle)
	if err != nil {
		return nil, err
	}

	return next.Enter(withState, env)
}

// baseHolder is implemented by vehicle states that occupy a reserved stall
// at a Base (ReserveBase, ChargingBase). BaseID's second return reports
// whether a stall is currently held.
type baseHolder interface {
	BaseID() (sim.BaseId, bool)
}

func releaseStall(s *sim.SimulationState, baseID sim.BaseId) *sim.SimulationState {
	b, ok := s.Bases[baseID]
	if !ok {
		return s
	}
	b = b.ReleaseStall()
	next, err := s.ModifyBase(b)
	if err != nil {
		return s
	}
	return next
}

func stateName(v sim.Vehicle) string {
	if v.State == nil {
		return "<nil>"
	}
	return v.State.Name()
}

func isChargeCategory(st sim.VehicleState) bool {
	switch st.(type) {
	case *ChargingStation, *ChargingBase:
		return true
	default:
		return false
	}
}

// releasePlug returns the station's reserved/held plug and clears the
// vehicle's charger intent. Missing station/plug is tolerated (the plug
// may already have been released by a prior step).
func releasePlug(s *sim.SimulationState, v sim.Vehicle) (*sim.SimulationState, sim.Vehicle) {
	v.HasChargerIntent = false
	stationID := chargerStationID(v)
	if stationID == "" {
		return s, v
	}
	st, ok := s.Stations[stationID]
	if !ok {
		return s, v
	}
	st = st.Checkin(v.ChargerIntent)
	next, err := s.ModifyStation(st)
	if err != nil {
		return s, v
	}
	return next, v
}

// chargerStationID is tracked via the vehicle's current DispatchStation or
// ChargingStation state payload; other states carry no station affinity.
func chargerStationID(v sim.Vehicle) sim.StationId {
	switch st := v.State.(type) {
	case *DispatchStation:
		return st.StationID
	case *ChargingStation:
		return st.StationID
	case *ChargingBase:
		return st.StationID
	default:
		return ""
	}
}

// DefaultUpdate implements spec.md §4.2's default update path, shared by
// every variant:
//  1. if a global OutOfService condition holds (energy exhausted), exit
//     and enter OutOfService — this has priority over any state-specific
//     terminal condition.
//  2. else if the state-specific terminal condition holds, exit and enter
//     the state's default successor.
//  3. else perform the state-specific incremental update.
func DefaultUpdate(
	s *sim.SimulationState,
	env *sim.Environment,
	vid sim.VehicleId,
	current sim.VehicleState,
	energyExhausted func(*sim.SimulationState, *sim.Environment) bool,
	terminal func(*sim.SimulationState, *sim.Environment) bool,
	enterTerminal func(*sim.SimulationState, *sim.Environment) (*sim.SimulationState, error),
	perform func(*sim.SimulationState, *sim.Environment) (*sim.SimulationState, error),
) (*sim.SimulationState, error) {
	if energyExhausted(s, env) {
		return Transition(s, env, vid, NewOutOfService(vid))
	}
	if terminal(s, env) {
		return enterTerminal(s, env)
	}
	return perform(s, env)
}

// IsEnergyExhausted is the global terminal condition checked before any
// state-specific terminal condition (spec §4.2 "Terminal-state evaluation
// order").
func IsEnergyExhausted(s *sim.SimulationState, vid sim.VehicleId) bool {
	v, ok := s.Vehicles[vid]
	return !ok || v.EnergySource.IsEmpty()
}
