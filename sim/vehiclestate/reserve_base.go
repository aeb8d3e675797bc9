package vehiclestate

import "github.com/hive-sim/hive/sim"

// ReserveBase is a vehicle parked at a base, holding a reserved stall but
// not charging — either because the base has no associated station, or
// because it finished charging there and is waiting out its off-shift
// period. It has no movement and, unlike Idle, no idle energy draw; it
// waits for its next instruction.
type ReserveBase struct {
	Vid    sim.VehicleId
	BaseId sim.BaseId
}

// NewReserveBase returns a ReserveBase bound to vid and base. The caller
// must already hold a reserved stall at base for vid.
func NewReserveBase(vid sim.VehicleId, base sim.BaseId) *ReserveBase {
	return &ReserveBase{Vid: vid, BaseId: base}
}

func (st *ReserveBase) Name() string            { return "ReserveBase" }
func (st *ReserveBase) VehicleID() sim.VehicleId { return st.Vid }

// BaseID implements baseHolder.
func (st *ReserveBase) BaseID() (sim.BaseId, bool) { return st.BaseId, true }

func (st *ReserveBase) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "reserve_base.Enter: vehicle not found"}
	}
	v.Route = nil
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *ReserveBase) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return DefaultUpdate(s, env, st.Vid, st,
		func(s *sim.SimulationState, env *sim.Environment) bool { return IsEnergyExhausted(s, st.Vid) },
		func(s *sim.SimulationState, env *sim.Environment) bool { return false },
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) { return s, nil },
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) { return s, nil },
	)
}

func (st *ReserveBase) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
