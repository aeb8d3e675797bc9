package policy

import (
	"sort"

	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

// PositionFleetManager repositions vehicles that have sat idle past
// IdleTimeOutSeconds toward the nearest geoid with pending, unassigned
// demand. A vehicle idle past MaxAllowableIdleSeconds is repositioned
// toward a uniformly-sampled known geoid even absent demand, so it
// never sits motionless indefinitely at a dead corner of the service
// area.
type PositionFleetManager struct {
	IdleTimeOutSeconds      int64
	MaxAllowableIdleSeconds int64
}

// NewPositionFleetManager returns a PositionFleetManager reading its
// thresholds from config.
func NewPositionFleetManager(cfg *sim.DispatcherConfig) *PositionFleetManager {
	return &PositionFleetManager{
		IdleTimeOutSeconds:      cfg.IdleTimeOutSeconds,
		MaxAllowableIdleSeconds: cfg.MaxAllowableIdleSeconds,
	}
}

func (p *PositionFleetManager) Name() string { return "position-fleet-manager" }

func (p *PositionFleetManager) Generate(s *sim.SimulationState, env *sim.Environment) (sim.Generator, []sim.Instruction) {
	var out []sim.Instruction

	hotspots := demandHotspots(s)
	knownGeoids := allKnownGeoids(s)

	for _, vid := range s.VehicleIDsSorted() {
		v := s.Vehicles[vid]
		idle, ok := v.State.(*vehiclestate.Idle)
		if !ok {
			continue
		}
		switch {
		case idle.IdleDuration >= p.MaxAllowableIdleSeconds && len(knownGeoids) > 0:
			rng := env.RNG.ForSubsystem(sim.SubsystemReposition)
			target := knownGeoids[rng.Intn(len(knownGeoids))]
			if target != v.Geoid() {
				out = append(out, instruction.Reposition{Vid: vid, Target: target})
			}
		case idle.IdleDuration >= p.IdleTimeOutSeconds && len(hotspots) > 0:
			target := nearestGeoid(s, v.Geoid(), hotspots)
			if target != v.Geoid() {
				out = append(out, instruction.Reposition{Vid: vid, Target: target})
			}
		}
	}

	return p, out
}

func demandHotspots(s *sim.SimulationState) []sim.Geoid {
	seen := map[sim.Geoid]bool{}
	var out []sim.Geoid
	for _, rid := range s.RequestIDsSorted() {
		r := s.Requests[rid]
		if r.Assigned || seen[r.Origin] {
			continue
		}
		seen[r.Origin] = true
		out = append(out, r.Origin)
	}
	return out
}

func allKnownGeoids(s *sim.SimulationState) []sim.Geoid {
	seen := map[sim.Geoid]bool{}
	var out []sim.Geoid
	add := func(g sim.Geoid) {
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	for _, st := range s.Stations {
		add(st.Geoid)
	}
	for _, b := range s.Bases {
		add(b.Geoid)
	}
	for _, rid := range s.RequestIDsSorted() {
		add(s.Requests[rid].Origin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func nearestGeoid(s *sim.SimulationState, from sim.Geoid, candidates []sim.Geoid) sim.Geoid {
	best := candidates[0]
	bestDist := s.RoadNetwork.DistanceKm(from, best)
	for _, g := range candidates[1:] {
		d := s.RoadNetwork.DistanceKm(from, g)
		if d < bestDist || (d == bestDist && g < best) {
			best = g
			bestDist = d
		}
	}
	return best
}
