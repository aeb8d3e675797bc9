package vehiclestate

import "github.com/hive-sim/hive/sim"

// OutOfService is the terminal state entered when a vehicle's energy
// source is exhausted. No transition out of it is admissible (enforced
// by CanTransition); the vehicle is parked and produces no further
// instructions or movement for the remainder of the run.
type OutOfService struct {
	Vid sim.VehicleId
}

// NewOutOfService returns a fresh OutOfService state for vid.
func NewOutOfService(vid sim.VehicleId) *OutOfService { return &OutOfService{Vid: vid} }

func (st *OutOfService) Name() string            { return "OutOfService" }
func (st *OutOfService) VehicleID() sim.VehicleId { return st.Vid }

func (st *OutOfService) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "out_of_service.Enter: vehicle not found"}
	}
	v.Route = nil
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *OutOfService) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}

func (st *OutOfService) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
