package vehiclestate

import "github.com/hive-sim/hive/sim"

// DispatchBase is an empty-vehicle move to a base chosen by the
// BaseFleetManager policy, seeking an overnight/off-shift stall. On
// arrival it reserves a stall; if the base is full it abandons the trip
// and returns to Idle. If a stall is secured and the base carries an
// associated charging station, it additionally attempts to reserve a
// plug there and heads into ChargingBase; otherwise it simply parks in
// ReserveBase.
type DispatchBase struct {
	Vid    sim.VehicleId
	BaseId sim.BaseId
}

// NewDispatchBase returns a DispatchBase bound to vid and base. The
// caller must have already set the vehicle's Route to the base's geoid.
func NewDispatchBase(vid sim.VehicleId, base sim.BaseId) *DispatchBase {
	return &DispatchBase{Vid: vid, BaseId: base}
}

func (st *DispatchBase) Name() string            { return "DispatchBase" }
func (st *DispatchBase) VehicleID() sim.VehicleId { return st.Vid }

func (st *DispatchBase) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_base.Enter: vehicle not found"}
	}
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *DispatchBase) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
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
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_base.Update: vehicle not found"}
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

func (st *DispatchBase) arrive(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	base, ok := s.Bases[st.BaseId]
	if !ok {
		return Transition(s, env, st.Vid, NewIdle(st.Vid))
	}
	reservedBase, ok := base.ReserveStall()
	if !ok {
		return Transition(s, env, st.Vid, NewIdle(st.Vid))
	}
	next, err := s.ModifyBase(reservedBase)
	if err != nil {
		return nil, err
	}

	if !reservedBase.HasStation {
		return Transition(next, env, st.Vid, NewReserveBase(st.Vid, st.BaseId))
	}
	station, ok := next.Stations[reservedBase.StationID]
	if !ok {
		return Transition(next, env, st.Vid, NewReserveBase(st.Vid, st.BaseId))
	}
	const baseCharger = sim.ChargerLevel2
	checked, reserved := station.Checkout(baseCharger)
	if !reserved {
		return Transition(next, env, st.Vid, NewReserveBase(st.Vid, st.BaseId))
	}
	next, err = next.ModifyStation(checked)
	if err != nil {
		return nil, err
	}
	v, ok := next.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_base.arrive: vehicle not found"}
	}
	v.ChargerIntent = baseCharger
	v.HasChargerIntent = true
	next, err = next.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return Transition(next, env, st.Vid, NewChargingBase(st.Vid, st.BaseId, reservedBase.StationID, baseCharger))
}

func (st *DispatchBase) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
