// Package instruction implements the concrete sim.Instruction kinds that
// instruction generators (sim/policy) emit each tick. Every kind here
// assigns a vehicle to a new course of action; none of them perform
// movement or charging directly — applying one simply starts the
// corresponding vehicle-state transition (sim/vehiclestate), which then
// carries the vehicle through its own Update steps in subsequent ticks.
package instruction

import (
	"fmt"

	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// DispatchTrip assigns vehicle Vid to serve request RequestID: the
// request is marked assigned and the vehicle begins moving to the
// request's origin.
type DispatchTrip struct {
	Vid       sim.VehicleId
	RequestID sim.RequestId
}

func (i DispatchTrip) String() string {
	return fmt.Sprintf("DispatchTrip(%s -> %s)", i.Vid, i.RequestID)
}

// GetRequestID reports the request this instruction targets, used by the
// tick pipeline to compute the per-tick dropped-request count.
func (i DispatchTrip) GetRequestID() sim.RequestId { return i.RequestID }

func (i DispatchTrip) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	req, ok := s.Requests[i.RequestID]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.RequestID), Msg: "dispatch_trip: request not found"}
	}
	if req.Assigned {
		return nil, &sim.EntityError{Entity: string(i.RequestID), Msg: "dispatch_trip: request already assigned"}
	}
	v, ok := s.Vehicles[i.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.Vid), Msg: "dispatch_trip: vehicle not found"}
	}

	assigned, err := s.ModifyRequest(req.WithAssignment(i.Vid))
	if err != nil {
		return nil, err
	}

	route, err := routeOrCrowFlies(assigned, env, v.Geoid(), req.Origin)
	if err != nil {
		return nil, err
	}
	v = assigned.Vehicles[i.Vid]
	v = v.WithRoute(route)
	withRoute, err := assigned.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return vehiclestate.Transition(withRoute, env, i.Vid, vehiclestate.NewDispatchTrip(i.Vid, i.RequestID))
}

// DispatchStation sends an empty vehicle to a charging station, intending
// to reserve the named charger kind once it arrives.
type DispatchStation struct {
	Vid       sim.VehicleId
	StationID sim.StationId
	Charger   sim.ChargerKind
}

func (i DispatchStation) String() string {
	return fmt.Sprintf("DispatchStation(%s -> %s/%s)", i.Vid, i.StationID, i.Charger)
}

func (i DispatchStation) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	station, ok := s.Stations[i.StationID]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.StationID), Msg: "dispatch_station: station not found"}
	}
	v, ok := s.Vehicles[i.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.Vid), Msg: "dispatch_station: vehicle not found"}
	}
	route, err := routeOrCrowFlies(s, env, v.Geoid(), station.Geoid)
	if err != nil {
		return nil, err
	}
	v = v.WithRoute(route)
	withRoute, err := s.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return vehiclestate.Transition(withRoute, env, i.Vid, vehiclestate.NewDispatchStation(i.Vid, i.StationID, i.Charger))
}

// DispatchBase sends an empty vehicle to a base, seeking a stall (and,
// if the base has an associated station, a plug).
type DispatchBase struct {
	Vid    sim.VehicleId
	BaseId sim.BaseId
}

func (i DispatchBase) String() string { return fmt.Sprintf("DispatchBase(%s -> %s)", i.Vid, i.BaseId) }

func (i DispatchBase) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	base, ok := s.Bases[i.BaseId]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.BaseId), Msg: "dispatch_base: base not found"}
	}
	v, ok := s.Vehicles[i.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.Vid), Msg: "dispatch_base: vehicle not found"}
	}
	route, err := routeOrCrowFlies(s, env, v.Geoid(), base.Geoid)
	if err != nil {
		return nil, err
	}
	v = v.WithRoute(route)
	withRoute, err := s.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return vehiclestate.Transition(withRoute, env, i.Vid, vehiclestate.NewDispatchBase(i.Vid, i.BaseId))
}

// ReserveBase directly claims a stall at a base for a vehicle that is
// already parked at the base's geoid (e.g. a human driver going
// off-shift at its home base), skipping the dispatch/movement phase.
type ReserveBase struct {
	Vid    sim.VehicleId
	BaseId sim.BaseId
}

func (i ReserveBase) String() string { return fmt.Sprintf("ReserveBase(%s @ %s)", i.Vid, i.BaseId) }

func (i ReserveBase) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	base, ok := s.Bases[i.BaseId]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.BaseId), Msg: "reserve_base: base not found"}
	}
	reserved, ok := base.ReserveStall()
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.BaseId), Msg: "reserve_base: no free stall"}
	}
	next, err := s.ModifyBase(reserved)
	if err != nil {
		return nil, err
	}
	return vehiclestate.Transition(next, env, i.Vid, vehiclestate.NewReserveBase(i.Vid, i.BaseId))
}

// Reposition sends an empty, uncommitted vehicle toward a target geoid
// chosen by the PositionFleetManager policy, anticipating future demand.
type Reposition struct {
	Vid    sim.VehicleId
	Target sim.Geoid
}

func (i Reposition) String() string { return fmt.Sprintf("Reposition(%s -> %s)", i.Vid, i.Target) }

func (i Reposition) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[i.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(i.Vid), Msg: "reposition: vehicle not found"}
	}
	route, err := routeOrCrowFlies(s, env, v.Geoid(), i.Target)
	if err != nil {
		return nil, err
	}
	v = v.WithRoute(route)
	withRoute, err := s.ModifyVehicle(v)
	if err != nil {
		return nil, err
	}
	return vehiclestate.Transition(withRoute, env, i.Vid, vehiclestate.NewRepositioning(i.Vid))
}

// Idle forces an immediate transition to Idle, abandoning whatever the
// vehicle was doing. Used by driver-state policies to cut a charge
// session short at the SOC limit or to release a reserved base stall
// back into active service.
type Idle struct {
	Vid sim.VehicleId
}

func (i Idle) String() string { return fmt.Sprintf("Idle(%s)", i.Vid) }

func (i Idle) Apply(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return vehiclestate.Transition(s, env, i.Vid, vehiclestate.NewIdle(i.Vid))
}

// routeOrCrowFlies mirrors sim/vehiclestate's unexported helper of the
// same purpose; duplicated narrowly here since instruction must not
// import vehiclestate's internals, only its exported constructors.
func routeOrCrowFlies(s *sim.SimulationState, env *sim.Environment, origin, dest sim.Geoid) (sim.Route, error) {
	route, err := s.RoadNetwork.Route(origin, dest)
	if err == nil {
		return route, nil
	}
	dist := s.RoadNetwork.DistanceKm(origin, dest)
	return sim.Route{{
		Start:    origin,
		End:      dest,
		SpeedKmh: env.Config.Network.DefaultSpeedKmph,
		DistKm:   dist,
	}}, nil
}
