package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/driverstate"
	"github.com/hive-sim/hive/sim/instruction"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

type lowRangeMechatronics struct{ rangeKm float64 }

func (m lowRangeMechatronics) EnergyCostKWh(route sim.Route) float64 { return 0 }
func (m lowRangeMechatronics) ChargeKWh(charger sim.ChargerKind, level float64, duration sim.Seconds) float64 {
	return 0
}
func (m lowRangeMechatronics) RangeRemainingKm(level float64) sim.Kilometers { return m.rangeKm }
func (m lowRangeMechatronics) CapacityKWh() float64                         { return 50 }

// stationDistanceNetwork answers DistanceKm from a fixed table keyed by the
// destination geoid, so each station is seen at its own distance.
type stationDistanceNetwork struct{ distanceNetwork }

func (n stationDistanceNetwork) DistanceKm(a, b sim.Geoid) sim.Kilometers { return n.distances[b] }

func newPolicyTestEnv() *sim.Environment {
	return &sim.Environment{
		Config:       &sim.Config{Network: sim.NetworkConfig{DefaultSpeedKmph: 30}},
		RoadNetwork:  distanceNetwork{},
		Mechatronics: map[sim.MechatronicsId]sim.Mechatronics{"m1": lowRangeMechatronics{rangeKm: 5}},
		RNG:          sim.NewPartitionedRNG(sim.NewSimulationKey(1)),
	}
}

func TestChargingFleetManager_DispatchesLowRangeIdleVehicleToNearestStation(t *testing.T) {
	// GIVEN an idle vehicle with only 5 km of range and two reachable
	// stations with a free DC-fast plug, "near" 1 km away and "far" 5 km away
	env := newPolicyTestEnv()
	net := stationDistanceNetwork{distanceNetwork{distances: map[sim.Geoid]float64{"b": 1, "c": 5}}}
	s := sim.NewSimulationState(net, 0, 60, 9)
	s, err := s.AddStation(sim.Station{ID: "near", Geoid: "b", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 1},
	}})
	require.NoError(t, err)
	s, err = s.AddStation(sim.Station{ID: "far", Geoid: "c", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 1},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", MechatronicsID: "m1", Link: sim.Link{Start: "a", End: "a"},
		State: vehiclestate.NewIdle("v1"),
	})
	require.NoError(t, err)

	mgr := NewChargingFleetManager(&sim.DispatcherConfig{
		ChargingRangeKmThreshold: 10, MaxSearchRadiusKm: 1000,
	}, sim.ChargerDCFast)

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN the vehicle is dispatched to the nearer station
	require.Len(t, out, 1)
	dispatch, ok := out[0].(instruction.DispatchStation)
	require.True(t, ok)
	assert.Equal(t, sim.StationId("near"), dispatch.StationID)
}

func TestChargingFleetManager_IgnoresVehiclesWithSufficientRange(t *testing.T) {
	// GIVEN an idle vehicle whose range is above threshold
	env := newPolicyTestEnv()
	env.Mechatronics["m1"] = lowRangeMechatronics{rangeKm: 1000}
	s := sim.NewSimulationState(distanceNetwork{}, 0, 60, 9)
	s, err := s.AddStation(sim.Station{ID: "near", Geoid: "b", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 1},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", MechatronicsID: "m1", Link: sim.Link{Start: "a", End: "a"},
		State: vehiclestate.NewIdle("v1"),
	})
	require.NoError(t, err)

	mgr := NewChargingFleetManager(&sim.DispatcherConfig{ChargingRangeKmThreshold: 10, MaxSearchRadiusKm: 1000}, sim.ChargerDCFast)

	_, out := mgr.Generate(s, env)

	assert.Empty(t, out)
}

func TestPositionFleetManager_RepositionsTowardDemandAfterIdleTimeout(t *testing.T) {
	// GIVEN an idle vehicle that has waited past the idle timeout, and a
	// pending unassigned request elsewhere
	env := newPolicyTestEnv()
	s := sim.NewSimulationState(distanceNetwork{}, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "c", Destination: "d"})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", Link: sim.Link{Start: "a", End: "a"},
		State: &vehiclestate.Idle{Vid: "v1", IdleDuration: 1000},
	})
	require.NoError(t, err)

	mgr := NewPositionFleetManager(&sim.DispatcherConfig{IdleTimeOutSeconds: 500, MaxAllowableIdleSeconds: 100000})

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN it's repositioned toward the request's origin
	require.Len(t, out, 1)
	reposition, ok := out[0].(instruction.Reposition)
	require.True(t, ok)
	assert.Equal(t, sim.Geoid("c"), reposition.Target)
}

func TestPositionFleetManager_LeavesFreshlyIdleVehiclesAlone(t *testing.T) {
	env := newPolicyTestEnv()
	s := sim.NewSimulationState(distanceNetwork{}, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "c", Destination: "d"})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", Link: sim.Link{Start: "a", End: "a"},
		State: &vehiclestate.Idle{Vid: "v1", IdleDuration: 10},
	})
	require.NoError(t, err)

	mgr := NewPositionFleetManager(&sim.DispatcherConfig{IdleTimeOutSeconds: 500, MaxAllowableIdleSeconds: 100000})

	_, out := mgr.Generate(s, env)

	assert.Empty(t, out)
}

func TestBaseFleetManager_SendsLongIdleDriverlessVehicleToNearestBase(t *testing.T) {
	// GIVEN a driverless vehicle idle well past the parking threshold and
	// a base with a free stall
	env := newPolicyTestEnv()
	s := sim.NewSimulationState(distanceNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "b", Capacity: 1})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", Link: sim.Link{Start: "a", End: "a"},
		State: &vehiclestate.Idle{Vid: "v1", IdleDuration: 10000},
	})
	require.NoError(t, err)

	mgr := NewBaseFleetManager(&sim.DispatcherConfig{IdleTimeOutSeconds: 100, MaxSearchRadiusKm: 1000})

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN it's dispatched to the base
	require.Len(t, out, 1)
	dispatch, ok := out[0].(instruction.DispatchBase)
	require.True(t, ok)
	assert.Equal(t, sim.BaseId("b1"), dispatch.BaseId)
}

func TestBaseFleetManager_IgnoresVehiclesWithADriver(t *testing.T) {
	// GIVEN a human-driven vehicle idle well past the parking threshold
	env := newPolicyTestEnv()
	s := sim.NewSimulationState(distanceNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "b", Capacity: 1})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", Link: sim.Link{Start: "a", End: "a"},
		State:  &vehiclestate.Idle{Vid: "v1", IdleDuration: 10000},
		Driver: stubDriver{},
	})
	require.NoError(t, err)

	mgr := NewBaseFleetManager(&sim.DispatcherConfig{IdleTimeOutSeconds: 100, MaxSearchRadiusKm: 1000})

	// THEN base-seeking is left to the vehicle's own driver state, not
	// this policy
	_, out := mgr.Generate(s, env)
	assert.Empty(t, out)
}

func TestDispatcher_TieBreaksToLowerVehicleID(t *testing.T) {
	// GIVEN two idle vehicles equidistant from one pending request (S3)
	env := newPolicyTestEnv()
	env.Mechatronics["m1"] = lowRangeMechatronics{rangeKm: 1000}
	net := distanceNetwork{distances: map[sim.Geoid]float64{"va": 5, "vb": 5, "o": 2}}
	s := sim.NewSimulationState(net, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "o", Destination: "d"})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v002", MechatronicsID: "m1", Link: sim.Link{Start: "vb", End: "vb"},
		State: vehiclestate.NewIdle("v002"),
	})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v001", MechatronicsID: "m1", Link: sim.Link{Start: "va", End: "va"},
		State: vehiclestate.NewIdle("v001"),
	})
	require.NoError(t, err)

	mgr := NewDispatcher([]ScorerConfig{{Name: "nearest", Weight: 1}}, 1000)

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN the lower-id vehicle is assigned, per the deterministic
	// tie-break rule
	require.Len(t, out, 1)
	dispatch, ok := out[0].(instruction.DispatchTrip)
	require.True(t, ok)
	assert.Equal(t, sim.VehicleId("v001"), dispatch.Vid)
}

func TestDispatcher_ExcludesVehicleWithInsufficientRangeEvenIfNearest(t *testing.T) {
	// GIVEN a nearer vehicle whose range cannot cover dispatch+trip legs,
	// and a farther vehicle with ample range (S5)
	env := newPolicyTestEnv()
	env.Mechatronics["low"] = lowRangeMechatronics{rangeKm: 6}
	env.Mechatronics["high"] = lowRangeMechatronics{rangeKm: 1000}
	net := distanceNetwork{distances: map[sim.Geoid]float64{"near": 1, "far": 5, "o": 10}}
	s := sim.NewSimulationState(net, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "o", Destination: "d"})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v-near", MechatronicsID: "low", Link: sim.Link{Start: "near", End: "near"},
		State: vehiclestate.NewIdle("v-near"),
	})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v-far", MechatronicsID: "high", Link: sim.Link{Start: "far", End: "far"},
		State: vehiclestate.NewIdle("v-far"),
	})
	require.NoError(t, err)

	mgr := NewDispatcher([]ScorerConfig{{Name: "nearest", Weight: 1}}, 1000)

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN only the vehicle with sufficient range is assigned, even
	// though it is farther from the request origin
	require.Len(t, out, 1)
	dispatch, ok := out[0].(instruction.DispatchTrip)
	require.True(t, ok)
	assert.Equal(t, sim.VehicleId("v-far"), dispatch.Vid)
}

func TestDispatcher_IgnoresOffShiftHumanDrivenVehicle(t *testing.T) {
	// GIVEN an idle vehicle whose human driver is off-shift (S6)
	env := newPolicyTestEnv()
	env.Mechatronics["m1"] = lowRangeMechatronics{rangeKm: 1000}
	net := distanceNetwork{distances: map[sim.Geoid]float64{"a": 1, "o": 1}}
	s := sim.NewSimulationState(net, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "o", Destination: "d"})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID: "v1", MechatronicsID: "m1", Link: sim.Link{Start: "a", End: "a"},
		State:  vehiclestate.NewIdle("v1"),
		Driver: driverstate.NewHumanUnavailable(driverstate.Attributes{VehicleID: "v1"}),
	})
	require.NoError(t, err)

	mgr := NewDispatcher([]ScorerConfig{{Name: "nearest", Weight: 1}}, 1000)

	// WHEN generating instructions
	_, out := mgr.Generate(s, env)

	// THEN the off-shift vehicle is not a dispatch candidate
	assert.Empty(t, out)
}

type stubDriver struct{}

func (stubDriver) Name() string { return "stub" }
func (stubDriver) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, sim.DriverState, error) {
	return s, stubDriver{}, nil
}
func (stubDriver) GenerateInstructions(s *sim.SimulationState, env *sim.Environment) []sim.Instruction {
	return nil
}
func (stubDriver) VehicleID() sim.VehicleId { return "v1" }
