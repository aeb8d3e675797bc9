package vehiclestate

import "github.com/hive-sim/hive/sim"

// advance moves v along its Route by up to one timestep, debiting energy
// for the distance actually covered via env's mechatronics model for v.
// Returns the updated vehicle and arrived=true once the route is fully
// consumed (Route becomes empty and Link.Start==Link.End==final geoid).
func advance(s *sim.SimulationState, env *sim.Environment, v sim.Vehicle) (sim.Vehicle, bool) {
	if !v.HasRoute() {
		return v, true
	}

	budgetSeconds := float64(s.TimestepSeconds)
	route := v.Route
	var experienced sim.Route
	var remaining sim.Route

	for i, link := range route {
		if link.SpeedKmh <= 0 {
			remaining = append(remaining, route[i:]...)
			break
		}
		linkTimeSeconds := (link.DistKm / link.SpeedKmh) / sim.SecondsToHours
		if linkTimeSeconds <= budgetSeconds {
			experienced = append(experienced, link)
			budgetSeconds -= linkTimeSeconds
			continue
		}
		fracKm := link.SpeedKmh * (budgetSeconds * sim.SecondsToHours)
		experienced = append(experienced, sim.Link{Start: link.Start, End: link.End, SpeedKmh: link.SpeedKmh, DistKm: fracKm})
		remaining = append(sim.Route{{Start: link.Start, End: link.End, SpeedKmh: link.SpeedKmh, DistKm: link.DistKm - fracKm}}, route[i+1:]...)
		budgetSeconds = 0
		break
	}

	mech, ok := env.MechatronicsFor(v.MechatronicsID)
	if ok {
		used := mech.EnergyCostKWh(experienced)
		v.EnergySource = v.EnergySource.UseEnergy(used)
	}

	var traveledKm sim.Kilometers
	for _, l := range experienced {
		traveledKm += l.DistKm
	}
	v.DistanceKm += traveledKm
	v.Balance -= v.OperatingCostKm * sim.Currency(traveledKm)

	if len(remaining) == 0 {
		finalGeoid := v.Geoid()
		if len(experienced) > 0 {
			finalGeoid = experienced[len(experienced)-1].End
		}
		v.Link = sim.Link{Start: finalGeoid, End: finalGeoid, SpeedKmh: 0, DistKm: 0}
		v.Route = nil
		return v, true
	}

	v.Link = sim.Link{Start: remaining[0].Start, End: remaining[0].Start, SpeedKmh: remaining[0].SpeedKmh, DistKm: 0}
	v.Route = remaining
	return v, false
}
