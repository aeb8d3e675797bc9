// Package policy implements the four instruction generators from
// spec.md §4.4: Dispatcher, ChargingFleetManager, PositionFleetManager,
// and BaseFleetManager. The Dispatcher ranks candidates with a
// weighted-scorer engine, generalized from the teacher's
// routing_scorers.go min-max-normalized, weighted-sum scoring pipeline;
// ChargingFleetManager orders stations with its own sort instead.
package policy

import (
	"fmt"
	"math"
	"sort"

	"github.com/hive-sim/hive/sim"
)

// ScorerConfig names a scoring dimension and its relative weight.
type ScorerConfig struct {
	Name   string
	Weight float64
}

// scorerFunc computes per-candidate scores in [0,1] for one scoring
// dimension, keyed by vehicle id.
type scorerFunc func(s *sim.SimulationState, origin sim.Geoid, candidates []sim.VehicleId) map[sim.VehicleId]float64

var vehicleScorers = map[string]scorerFunc{
	"nearest":       scoreNearest,
	"idle-duration": scoreIdleDuration,
	"energy-level":  scoreEnergyLevel,
}

// IsValidVehicleScorer reports whether name is a recognized scorer.
func IsValidVehicleScorer(name string) bool { _, ok := vehicleScorers[name]; return ok }

func normalizeWeights(configs []ScorerConfig) []float64 {
	total := 0.0
	for _, c := range configs {
		total += c.Weight
	}
	if total <= 0 {
		panic(fmt.Sprintf("scorer weights sum to %f; must be positive", total))
	}
	out := make([]float64, len(configs))
	for i, c := range configs {
		out[i] = c.Weight / total
	}
	return out
}

// rank scores every candidate across all configured dimensions and
// returns candidates in descending combined-score order, breaking ties
// by ascending vehicle id for determinism (spec §8 determinism).
func rank(s *sim.SimulationState, origin sim.Geoid, candidates []sim.VehicleId, configs []ScorerConfig) []sim.VehicleId {
	if len(candidates) == 0 {
		return nil
	}
	weights := normalizeWeights(configs)
	combined := make(map[sim.VehicleId]float64, len(candidates))
	for i, c := range configs {
		fn, ok := vehicleScorers[c.Name]
		if !ok {
			continue
		}
		for id, score := range fn(s, origin, candidates) {
			combined[id] += weights[i] * clamp01(score)
		}
	}
	ranked := make([]sim.VehicleId, len(candidates))
	copy(ranked, candidates)
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := combined[ranked[i]], combined[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreNearest rewards candidates closer to origin with min-max
// normalization; all-equal distances score 1.0 for every candidate.
func scoreNearest(s *sim.SimulationState, origin sim.Geoid, candidates []sim.VehicleId) map[sim.VehicleId]float64 {
	scores := make(map[sim.VehicleId]float64, len(candidates))
	dist := make(map[sim.VehicleId]float64, len(candidates))
	minD, maxD := math.Inf(1), math.Inf(-1)
	for _, id := range candidates {
		v := s.Vehicles[id]
		d := s.RoadNetwork.DistanceKm(v.Geoid(), origin)
		dist[id] = d
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}
	for _, id := range candidates {
		if maxD == minD {
			scores[id] = 1.0
		} else {
			scores[id] = (maxD - dist[id]) / (maxD - minD)
		}
	}
	return scores
}

// scoreIdleDuration rewards candidates that have waited longest, so the
// dispatcher tends to clear out the longest-idle vehicles first.
func scoreIdleDuration(s *sim.SimulationState, origin sim.Geoid, candidates []sim.VehicleId) map[sim.VehicleId]float64 {
	scores := make(map[sim.VehicleId]float64, len(candidates))
	durations := make(map[sim.VehicleId]float64, len(candidates))
	maxDur := 0.0
	for _, id := range candidates {
		v := s.Vehicles[id]
		var dur float64
		if idle, ok := v.State.(interface{ IdleDurationSeconds() int64 }); ok {
			dur = float64(idle.IdleDurationSeconds())
		}
		durations[id] = dur
		if dur > maxDur {
			maxDur = dur
		}
	}
	for _, id := range candidates {
		if maxDur == 0 {
			scores[id] = 1.0
		} else {
			scores[id] = durations[id] / maxDur
		}
	}
	return scores
}

// scoreEnergyLevel rewards candidates with more remaining energy, so
// low-SOC vehicles are preferentially left free to seek a charger rather
// than be dispatched further from one.
func scoreEnergyLevel(s *sim.SimulationState, origin sim.Geoid, candidates []sim.VehicleId) map[sim.VehicleId]float64 {
	scores := make(map[sim.VehicleId]float64, len(candidates))
	for _, id := range candidates {
		scores[id] = s.Vehicles[id].EnergySource.Level
	}
	return scores
}
