package vehiclestate

import "github.com/hive-sim/hive/sim"

// Repositioning is an empty-vehicle move toward a geoid chosen by the
// PositionFleetManager policy, not in service of any trip. It ends in
// Idle once the route is exhausted, or OutOfService if energy runs out
// en route.
type Repositioning struct {
	Vid sim.VehicleId
}

// NewRepositioning returns a Repositioning state bound to vid. The caller
// must have already set the vehicle's Route before transitioning in.
func NewRepositioning(vid sim.VehicleId) *Repositioning { return &Repositioning{Vid: vid} }

func (st *Repositioning) Name() string            { return "Repositioning" }
func (st *Repositioning) VehicleID() sim.VehicleId { return st.Vid }

func (st *Repositioning) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "repositioning.Enter: vehicle not found"}
	}
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *Repositioning) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return DefaultUpdate(s, env, st.Vid, st,
		func(s *sim.SimulationState, env *sim.Environment) bool { return IsEnergyExhausted(s, st.Vid) },
		func(s *sim.SimulationState, env *sim.Environment) bool {
			v, ok := s.Vehicles[st.Vid]
			return ok && !v.HasRoute()
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			return Transition(s, env, st.Vid, NewIdle(st.Vid))
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			v, ok := s.Vehicles[st.Vid]
			if !ok {
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "repositioning.Update: vehicle not found"}
			}
			moved, arrived := advance(s, env, v)
			next, err := s.ModifyVehicle(moved)
			if err != nil {
				return nil, err
			}
			if arrived {
				return Transition(next, env, st.Vid, NewIdle(st.Vid))
			}
			return next, nil
		},
	)
}

func (st *Repositioning) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
