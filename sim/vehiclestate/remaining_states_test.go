package vehiclestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-sim/hive/sim"
)

func TestOutOfService_Enter_ClearsRoute(t *testing.T) {
	// GIVEN a vehicle mid-route that runs out of energy
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddVehicle(sim.Vehicle{
		ID:    "v1",
		Link:  sim.Link{Start: "a", End: "a"},
		Route: sim.Route{{Start: "a", End: "b", SpeedKmh: 30, DistKm: 10}},
		State: NewIdle("v1"),
	})
	require.NoError(t, err)

	// WHEN it transitions to OutOfService
	next, err := Transition(s, env, "v1", NewOutOfService("v1"))

	// THEN its pending route is cleared and no further transition is
	// admissible
	require.NoError(t, err)
	assert.False(t, next.Vehicles["v1"].HasRoute())
	assert.False(t, CanTransition(next.Vehicles["v1"], NewIdle("v1")))
}

func TestRepositioning_Update_ArrivesAtTargetAndReturnsToIdle(t *testing.T) {
	// GIVEN a vehicle repositioning along a one-link route shorter than
	// one timestep's travel distance
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 3600, 9)
	s, err := s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		Route:        sim.Route{{Start: "a", End: "b", SpeedKmh: 30, DistKm: 10}},
		State:        NewRepositioning("v1"),
	})
	require.NoError(t, err)

	// WHEN the state updates for one full-hour timestep
	next, err := NewRepositioning("v1").Update(s, env)

	// THEN the vehicle has arrived and returned to Idle
	require.NoError(t, err)
	assert.Equal(t, "Idle", next.Vehicles["v1"].State.Name())
	assert.False(t, next.Vehicles["v1"].HasRoute())
}

func TestDispatchStation_Arrive_ReservesPlugAndEntersChargingStation(t *testing.T) {
	// GIVEN a vehicle arriving at a station with one free DC-fast plug
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddStation(sim.Station{ID: "s1", Geoid: "a", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 1},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 0.3, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewDispatchStation("v1", "s1", sim.ChargerDCFast),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives
	next, err := NewDispatchStation("v1", "s1", sim.ChargerDCFast).arrive(s, env)

	// THEN the plug is checked out and the vehicle begins charging
	require.NoError(t, err)
	assert.Equal(t, "ChargingStation", next.Vehicles["v1"].State.Name())
	assert.Equal(t, 0, next.Stations["s1"].Chargers[sim.ChargerDCFast].Available)
	assert.True(t, next.Vehicles["v1"].HasChargerIntent)
}

func TestDispatchStation_Arrive_AbandonsToIdleWhenPlugLost(t *testing.T) {
	// GIVEN a station whose last plug was claimed by another vehicle in
	// the interim
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddStation(sim.Station{ID: "s1", Geoid: "a", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 0},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 0.3, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewDispatchStation("v1", "s1", sim.ChargerDCFast),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives and finds no free plug
	next, err := NewDispatchStation("v1", "s1", sim.ChargerDCFast).arrive(s, env)

	// THEN it abandons the charge attempt rather than queuing
	require.NoError(t, err)
	assert.Equal(t, "Idle", next.Vehicles["v1"].State.Name())
}

func TestDispatchBase_Arrive_ReservesStallAndChargerWhenBaseHasStation(t *testing.T) {
	// GIVEN a base with a free stall and an associated station with a
	// free level-2 plug
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "a", Capacity: 1, StationID: "s1", HasStation: true})
	require.NoError(t, err)
	s, err = s.AddStation(sim.Station{ID: "s1", Geoid: "a", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerLevel2: {Total: 1, Available: 1},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 0.5, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewDispatchBase("v1", "b1"),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives
	next, err := NewDispatchBase("v1", "b1").arrive(s, env)

	// THEN a stall and a plug are both reserved, and the vehicle begins
	// charging at the base
	require.NoError(t, err)
	assert.Equal(t, "ChargingBase", next.Vehicles["v1"].State.Name())
	assert.Equal(t, 1, next.Bases["b1"].StallsReserved)
	assert.Equal(t, 0, next.Stations["s1"].Chargers[sim.ChargerLevel2].Available)
}

func TestDispatchBase_Arrive_ReservesOnlyStallWhenBaseHasNoStation(t *testing.T) {
	// GIVEN a stall-only base with no associated charging station
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "a", Capacity: 1})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:    "v1",
		Link:  sim.Link{Start: "a", End: "a"},
		State: NewDispatchBase("v1", "b1"),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives
	next, err := NewDispatchBase("v1", "b1").arrive(s, env)

	// THEN it simply parks in ReserveBase
	require.NoError(t, err)
	assert.Equal(t, "ReserveBase", next.Vehicles["v1"].State.Name())
	assert.Equal(t, 1, next.Bases["b1"].StallsReserved)
}

func TestDispatchBase_Arrive_AbandonsToIdleWhenBaseIsFull(t *testing.T) {
	// GIVEN a base with no free stalls
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "a", Capacity: 1, StallsReserved: 1})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:    "v1",
		Link:  sim.Link{Start: "a", End: "a"},
		State: NewDispatchBase("v1", "b1"),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives
	next, err := NewDispatchBase("v1", "b1").arrive(s, env)

	// THEN it abandons and returns to Idle without touching the base
	require.NoError(t, err)
	assert.Equal(t, "Idle", next.Vehicles["v1"].State.Name())
	assert.Equal(t, 1, next.Bases["b1"].StallsReserved)
}
