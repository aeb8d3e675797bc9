package policy

import (
	"sort"

	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// ChargingFleetManager sends idle or repositioning vehicles whose range is
// at or below ChargingRangeKmThreshold to the best reachable station with a free
// plug of ChargerKind, per config.Dispatcher's charging_search_type.
type ChargingFleetManager struct {
	ChargerKind          sim.ChargerKind
	ChargingRangeKmThreshold float64
	MaxSearchRadiusKm    float64
	SearchType           string // "nearest_shortest_queue" | "shortest_time"
}

// NewChargingFleetManager returns a ChargingFleetManager reading its
// thresholds from config directly, mirroring the teacher's convention of
// policies taking their tunables from the shared Config rather than ad
// hoc constructor args.
func NewChargingFleetManager(cfg *sim.DispatcherConfig, charger sim.ChargerKind) *ChargingFleetManager {
	return &ChargingFleetManager{
		ChargerKind:              charger,
		ChargingRangeKmThreshold: cfg.ChargingRangeKmThreshold,
		MaxSearchRadiusKm:        cfg.MaxSearchRadiusKm,
		SearchType:               cfg.ChargingSearchType,
	}
}

func (c *ChargingFleetManager) Name() string { return "charging-fleet-manager" }

func (c *ChargingFleetManager) Generate(s *sim.SimulationState, env *sim.Environment) (sim.Generator, []sim.Instruction) {
	var out []sim.Instruction

	for _, vid := range s.VehicleIDsSorted() {
		v := s.Vehicles[vid]
		switch v.State.(type) {
		case *vehiclestate.Idle, *vehiclestate.Repositioning:
		default:
			continue
		}
		mech, ok := env.MechatronicsFor(v.MechatronicsID)
		if !ok {
			continue
		}
		if mech.RangeRemainingKm(v.EnergySource.Level) > c.ChargingRangeKmThreshold {
			continue
		}

		target, ok := c.nearestAvailableStation(s, v.Geoid())
		if !ok {
			continue
		}
		out = append(out, instruction.DispatchStation{Vid: vid, StationID: target, Charger: c.ChargerKind})
	}

	return c, out
}

func (c *ChargingFleetManager) nearestAvailableStation(s *sim.SimulationState, from sim.Geoid) (sim.StationId, bool) {
	type candidate struct {
		id        sim.StationId
		distance  float64
		available int
	}
	var candidates []candidate
	for id, st := range s.Stations {
		if !st.HasAvailable(c.ChargerKind) {
			continue
		}
		d := s.RoadNetwork.DistanceKm(from, st.Geoid)
		if d > c.MaxSearchRadiusKm {
			continue
		}
		candidates = append(candidates, candidate{id: id, distance: d, available: st.Chargers[c.ChargerKind].Available})
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		if c.SearchType == "nearest_shortest_queue" && candidates[i].available != candidates[j].available {
			return candidates[i].available > candidates[j].available
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates[0].id, true
}
