package vehiclestate

import "github.com/hive-sim/hive/sim"

// DispatchStation is an empty-vehicle move to a charging station chosen by
// the ChargingFleetManager policy. On arrival it attempts to reserve a
// plug of the requested kind; if one is free it transitions into
// ChargingStation, otherwise — another vehicle claimed the last plug in
// the interim — it abandons the trip and returns to Idle rather than
// queuing, leaving the next tick's ChargingFleetManager pass to retry.
type DispatchStation struct {
	Vid       sim.VehicleId
	StationID sim.StationId
	Charger   sim.ChargerKind
}

// NewDispatchStation returns a DispatchStation bound to vid. The caller
// must have already set the vehicle's Route to the station's geoid.
func NewDispatchStation(vid sim.VehicleId, station sim.StationId, charger sim.ChargerKind) *DispatchStation {
	return &DispatchStation{Vid: vid, StationID: station, Charger: charger}
}

func (st *DispatchStation) Name() string            { return "DispatchStation" }
func (st *DispatchStation) VehicleID() sim.VehicleId { return st.Vid }

func (st *DispatchStation) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_station.Enter: vehicle not found"}
	}
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *DispatchStation) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return DefaultUpdate(s, env, st.Vid, st,
		func(s *sim.SimulationState, env *sim.Environment) bool { return IsEnergyExhausted(s, st.Vid) },
		func(s *sim.SimulationState, env *sim.Environment) bool {
			v, ok := s.Vehicles[st.Vid]
			return ok && !v.HasRoute()
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			return st.arrive(s, env)
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			v, ok := s.Vehicles[st.Vid]
			if !ok {
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_station.Update: vehicle not found"}
			}
			moved, arrived := advance(s, env, v)
			next, err := s.ModifyVehicle(moved)
			if err != nil {
				return nil, err
			}
			if arrived {
				return st.arrive(next, env)
			}
			return next, nil
		},
	)
}

func (st *DispatchStation) arrive(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	station, ok := s.Stations[st.StationID]
	if !ok {
		return Transition(s, env, st.Vid, NewIdle(st.Vid))
	}
	checked, reserved := station.Checkout(st.Charger)
	if !reserved {
		return Transition(s, env, st.Vid, NewIdle(st.Vid))
	}
	next, err := s.ModifyStation(checked)
	if err != nil {
		return nil, err
	}
	v, ok := next.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_station.arrive: vehicle not found"}
	}
	v.ChargerIntent = st.Charger
	v.HasChargerIntent = true
	next, err = next.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return Transition(next, env, st.Vid, NewChargingStation(st.Vid, st.StationID, st.Charger))
}

func (st *DispatchStation) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
