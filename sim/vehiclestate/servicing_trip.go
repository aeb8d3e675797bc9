package vehiclestate

import "github.com/hive-sim/hive/sim"

// ServicingTrip is a vehicle carrying request's passengers toward the
// request's destination. On arrival the passengers are dropped off, the
// request is removed from the simulation (served), and the vehicle
// transitions to Idle.
type ServicingTrip struct {
	Vid       sim.VehicleId
	RequestID sim.RequestId
}

// NewServicingTrip returns a ServicingTrip bound to vid and request.
// Enter loads the passengers; the caller must have already set the
// vehicle's Route to the request's destination.
func NewServicingTrip(vid sim.VehicleId, request sim.RequestId) *ServicingTrip {
	return &ServicingTrip{Vid: vid, RequestID: request}
}

func (st *ServicingTrip) Name() string            { return "ServicingTrip" }
func (st *ServicingTrip) VehicleID() sim.VehicleId { return st.Vid }

func (st *ServicingTrip) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "servicing_trip.Enter: vehicle not found"}
	}
	req, ok := s.Requests[st.RequestID]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "servicing_trip.Enter: request not found"}
	}
	v = v.AddPassengers(st.RequestID, req.Passengers)
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *ServicingTrip) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
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
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "servicing_trip.Update: vehicle not found"}
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

// arrive drops off request's passengers, removes the served request, and
// transitions the now-empty vehicle to Idle.
func (st *ServicingTrip) arrive(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "servicing_trip.arrive: vehicle not found"}
	}
	v = v.DropOffPassengers(st.RequestID)
	next, err := s.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	next = next.RemoveRequest(st.RequestID)
	env.Reporter.File(sim.Report{Type: "trip_completed", Time: next.SimTime, Fields: map[string]string{
		"vehicle_id": string(st.Vid), "request_id": string(st.RequestID),
	}})
	return Transition(next, env, st.Vid, NewIdle(st.Vid))
}

func (st *ServicingTrip) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
