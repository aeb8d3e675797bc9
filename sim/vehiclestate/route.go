package vehiclestate

import "github.com/hive-sim/hive/sim"

// routeOrCrowFlies asks the road network for a route, falling back to a
// single crow-flies link at the network's configured default speed on a
// *sim.RouteError (spec §7: RouteError is never fatal).
func routeOrCrowFlies(s *sim.SimulationState, env *sim.Environment, origin, dest sim.Geoid) sim.Route {
	route, err := s.RoadNetwork.Route(origin, dest)
	if err == nil {
		return route
	}
	dist := s.RoadNetwork.DistanceKm(origin, dest)
	return sim.Route{{
		Start:    origin,
		End:      dest,
		SpeedKmh: env.Config.Network.DefaultSpeedKmph,
		DistKm:   dist,
	}}
}
