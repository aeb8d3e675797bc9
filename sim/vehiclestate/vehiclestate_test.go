package vehiclestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-sim/hive/sim"
)

// fakeNetwork is a minimal sim.RoadNetwork: every route is a single direct
// link of a fixed 10 km at 30 km/h, and every distance is 10 km (good
// enough for deterministic test routing, not realism).
type fakeNetwork struct{}

func (fakeNetwork) LinkFromGeoid(g sim.Geoid) sim.Link {
	return sim.Link{Start: g, End: g}
}

func (fakeNetwork) Route(origin, dest sim.Geoid) (sim.Route, error) {
	return sim.Route{{Start: origin, End: dest, SpeedKmh: 30, DistKm: 10}}, nil
}

func (fakeNetwork) DistanceKm(a, b sim.Geoid) sim.Kilometers { return 10 }

func (fakeNetwork) GeoidAtResolution(lat, lon float64) sim.Geoid { return "g" }

// fakeReporter records every filed report in Filed and does nothing on
// flush or close; tests that care about what was filed inspect Filed.
type fakeReporter struct {
	Filed []sim.Report
}

func (r *fakeReporter) File(report sim.Report) { r.Filed = append(r.Filed, report) }
func (r *fakeReporter) Flush(simTime int64)    {}
func (r *fakeReporter) Close()                 {}

func newTestEnv() *sim.Environment {
	return &sim.Environment{
		Config:      &sim.Config{Network: sim.NetworkConfig{DefaultSpeedKmph: 30}},
		RoadNetwork: fakeNetwork{},
		Reporter:    &fakeReporter{},
	}
}

// erroringNetwork always fails to route, exercising routeOrCrowFlies's
// fallback path.
type erroringNetwork struct{ fakeNetwork }

func (erroringNetwork) Route(origin, dest sim.Geoid) (sim.Route, error) {
	return nil, &sim.RouteError{Origin: origin, Dest: dest}
}

func TestRouteOrCrowFlies_FallsBackOnRouteError(t *testing.T) {
	// GIVEN a road network that always fails to route
	env := &sim.Environment{Config: &sim.Config{Network: sim.NetworkConfig{DefaultSpeedKmph: 25}}}
	s := sim.NewSimulationState(erroringNetwork{}, 0, 60, 9)

	// WHEN asking for a route
	route := routeOrCrowFlies(s, env, "a", "b")

	// THEN a single crow-flies link at the configured default speed is
	// returned instead of propagating the error
	require.Len(t, route, 1)
	assert.Equal(t, 25.0, route[0].SpeedKmh)
	assert.Equal(t, sim.Geoid("a"), route[0].Start)
	assert.Equal(t, sim.Geoid("b"), route[0].End)
}

func TestCanTransition_RejectsSelfTransition(t *testing.T) {
	// GIVEN a vehicle currently Idle
	v := sim.Vehicle{State: NewIdle("v1")}

	// WHEN checking a transition into another Idle instance
	ok := CanTransition(v, NewIdle("v1"))

	// THEN it is rejected (same-name transitions are no-ops, not admissible)
	assert.False(t, ok)
}

func TestCanTransition_RejectsFromOutOfService(t *testing.T) {
	// GIVEN a vehicle that is out of service
	v := sim.Vehicle{State: NewOutOfService("v1")}

	// WHEN checking a transition back to Idle
	ok := CanTransition(v, NewIdle("v1"))

	// THEN it is rejected: OutOfService is terminal
	assert.False(t, ok)
}

func TestCanTransition_RejectsWhileCarryingPassengers(t *testing.T) {
	// GIVEN a vehicle mid-trip with a passenger aboard
	v := sim.Vehicle{
		State:      NewServicingTrip("v1", "r1"),
		Passengers: map[sim.RequestId]int{"r1": 1},
	}

	// WHEN checking a transition to Repositioning
	ok := CanTransition(v, NewRepositioning("v1"))

	// THEN it is rejected: riders cannot be stranded mid-redirect
	assert.False(t, ok)
}

func TestCanTransition_AllowsOrdinaryTransition(t *testing.T) {
	// GIVEN an idle, empty vehicle
	v := sim.Vehicle{State: NewIdle("v1")}

	// WHEN checking a transition to Repositioning
	ok := CanTransition(v, NewRepositioning("v1"))

	// THEN it is admissible
	assert.True(t, ok)
}

func TestDispatchTrip_Arrive_LoadsPassengersOnlyAfterTransitionAdmitted(t *testing.T) {
	// GIVEN an empty vehicle dispatched to a due, assigned request
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "a", Destination: "b", Passengers: 2, AssignedVehicle: "v1", Assigned: true})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewDispatchTrip("v1", "r1"),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives at the request's origin
	next, err := NewDispatchTrip("v1", "r1").arrive(s, env)

	// THEN the transition succeeds (passengers were not loaded before the
	// admissibility check ran) and the vehicle now carries the passengers
	// for ServicingTrip
	require.NoError(t, err)
	v := next.Vehicles["v1"]
	assert.Equal(t, "ServicingTrip", v.State.Name())
	assert.True(t, v.HasPassengers())
	assert.Equal(t, 2, v.Passengers["r1"])
}

func TestDispatchTrip_Arrive_AbandonsDispatchIfRequestNoLongerAssigned(t *testing.T) {
	// GIVEN a vehicle dispatched to a request that has since been removed
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewDispatchTrip("v1", "r1"),
	})
	require.NoError(t, err)

	// WHEN the dispatch arrives
	next, err := NewDispatchTrip("v1", "r1").arrive(s, env)

	// THEN it falls back to Idle rather than loading nonexistent passengers
	require.NoError(t, err)
	assert.Equal(t, "Idle", next.Vehicles["v1"].State.Name())
}

func TestServicingTrip_Arrive_DropsPassengersAndRemovesRequest(t *testing.T) {
	// GIVEN a vehicle mid-trip carrying request r1's passengers
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddRequest(sim.Request{ID: "r1", Origin: "a", Destination: "b", Passengers: 2})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "b", End: "b"},
		EnergySource: sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		State:        NewServicingTrip("v1", "r1"),
		Passengers:   map[sim.RequestId]int{"r1": 2},
	})
	require.NoError(t, err)

	// WHEN the trip arrives
	next, err := NewServicingTrip("v1", "r1").arrive(s, env)

	// THEN passengers are dropped, the request is removed, and the vehicle
	// returns to Idle
	require.NoError(t, err)
	assert.False(t, next.Vehicles["v1"].HasPassengers())
	assert.Equal(t, "Idle", next.Vehicles["v1"].State.Name())
	_, stillPresent := next.Requests["r1"]
	assert.False(t, stillPresent)
}

func TestTransition_ReleasesChargerIntentWhenLeavingChargingStation(t *testing.T) {
	// GIVEN a vehicle charging at a station with its only DC-fast plug
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddStation(sim.Station{ID: "s1", Geoid: "a", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerDCFast: {Total: 1, Available: 0},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:               "v1",
		Link:             sim.Link{Start: "a", End: "a"},
		EnergySource:     sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		State:            NewChargingStation("v1", "s1", sim.ChargerDCFast),
		ChargerIntent:    sim.ChargerDCFast,
		HasChargerIntent: true,
	})
	require.NoError(t, err)

	// WHEN the vehicle transitions out of ChargingStation (e.g. an early
	// unplug)
	next, err := Transition(s, env, "v1", NewIdle("v1"))
	require.NoError(t, err)

	// THEN the plug is checked back in
	assert.Equal(t, 1, next.Stations["s1"].Chargers[sim.ChargerDCFast].Available)
	assert.False(t, next.Vehicles["v1"].HasChargerIntent)
}

func TestTransition_CarriesStallOverFromChargingBaseToReserveBase(t *testing.T) {
	// GIVEN a vehicle finishing a charge at its home base
	env := newTestEnv()
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddBase(sim.Base{ID: "b1", Geoid: "a", Capacity: 1, StallsReserved: 1, StationID: "s1", HasStation: true})
	require.NoError(t, err)
	s, err = s.AddStation(sim.Station{ID: "s1", Geoid: "a", Chargers: map[sim.ChargerKind]sim.ChargerInventory{
		sim.ChargerLevel2: {Total: 1, Available: 0},
	}})
	require.NoError(t, err)
	s, err = s.AddVehicle(sim.Vehicle{
		ID:               "v1",
		Link:             sim.Link{Start: "a", End: "a"},
		EnergySource:     sim.EnergySource{Level: 1, CapacityKWh: 50, IdealLimit: 0.8},
		State:            NewChargingBase("v1", "b1", "s1", sim.ChargerLevel2),
		ChargerIntent:    sim.ChargerLevel2,
		HasChargerIntent: true,
	})
	require.NoError(t, err)

	// WHEN charging completes and the vehicle transitions to ReserveBase at
	// the SAME base
	next, err := Transition(s, env, "v1", NewReserveBase("v1", "b1"))
	require.NoError(t, err)

	// THEN the plug is released but the stall is carried over, not
	// released and reacquired
	assert.Equal(t, 1, next.Stations["s1"].Chargers[sim.ChargerLevel2].Available)
	assert.Equal(t, 1, next.Bases["b1"].StallsReserved)
}

func TestIdle_Update_DebitsIdleEnergy(t *testing.T) {
	// GIVEN an idle electric vehicle and a configured idle energy rate
	env := newTestEnv()
	env.Config.Sim.IdleEnergyRateKWhPerHour = 3.6
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 1, CapacityKWh: 36, IdealLimit: 0.8},
		State:        NewIdle("v1"),
	})
	require.NoError(t, err)

	// WHEN the vehicle idles for one 60-second timestep
	next, err := NewIdle("v1").Update(s, env)

	// THEN it is debited idle_energy_rate_kwh_per_hour * timestep seconds
	// worth of energy (3.6 kWh/h * 60s/3600s/h = 0.06 kWh, i.e. 1/600th of
	// a 36 kWh battery)
	require.NoError(t, err)
	assert.InDelta(t, 1-1.0/600.0, next.Vehicles["v1"].EnergySource.Level, 1e-9)
}

func TestIdle_Update_TransitionsToOutOfServiceWhenEnergyExhausted(t *testing.T) {
	// GIVEN an idle vehicle already at empty
	env := newTestEnv()
	env.Config.Sim.IdleEnergyRateKWhPerHour = 1
	s := sim.NewSimulationState(fakeNetwork{}, 0, 60, 9)
	s, err := s.AddVehicle(sim.Vehicle{
		ID:           "v1",
		Link:         sim.Link{Start: "a", End: "a"},
		EnergySource: sim.EnergySource{Level: 0, CapacityKWh: 36, IdealLimit: 0.8},
		State:        NewIdle("v1"),
	})
	require.NoError(t, err)

	// WHEN the vehicle's Idle state updates
	next, err := NewIdle("v1").Update(s, env)

	// THEN energy exhaustion takes priority over the idle perform path and
	// the vehicle transitions to OutOfService
	require.NoError(t, err)
	assert.Equal(t, "OutOfService", next.Vehicles["v1"].State.Name())
}
