package vehiclestate

import "github.com/hive-sim/hive/sim"

// DispatchTrip is an empty-vehicle move to a request's origin, assigned by
// the Dispatcher policy. On arrival it transitions into ServicingTrip with
// a route to the destination; ServicingTrip's Enter loads the request's
// passengers.
type DispatchTrip struct {
	Vid       sim.VehicleId
	RequestID sim.RequestId
}

// NewDispatchTrip returns a DispatchTrip bound to vid and request. The
// caller must have already set the vehicle's Route to the request's
// origin before transitioning in.
func NewDispatchTrip(vid sim.VehicleId, request sim.RequestId) *DispatchTrip {
	return &DispatchTrip{Vid: vid, RequestID: request}
}

func (st *DispatchTrip) Name() string            { return "DispatchTrip" }
func (st *DispatchTrip) VehicleID() sim.VehicleId { return st.Vid }

func (st *DispatchTrip) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_trip.Enter: vehicle not found"}
	}
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *DispatchTrip) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
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
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_trip.Update: vehicle not found"}
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

// arrive sets the vehicle's route to the request's destination and
// transitions into ServicingTrip, which loads the passengers on Enter
// (deferred so the passengers-carried transition guard does not reject
// this, legitimate, state change). If the request has since been
// cancelled or already served by another vehicle, the dispatch is
// abandoned and the vehicle returns to Idle instead (an absorbed
// condition, not fatal).
func (st *DispatchTrip) arrive(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	req, ok := s.Requests[st.RequestID]
	if !ok || req.AssignedVehicle != st.Vid {
		return Transition(s, env, st.Vid, NewIdle(st.Vid))
	}
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "dispatch_trip.arrive: vehicle not found"}
	}
	v = v.WithRoute(routeOrCrowFlies(s, env, req.Origin, req.Destination))
	next, err := s.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return Transition(next, env, st.Vid, NewServicingTrip(st.Vid, st.RequestID))
}

func (st *DispatchTrip) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
