package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-sim/hive/sim"
	"github.com/hive-sim/hive/sim/policy"
	"github.com/hive-sim/hive/sim/vehiclestate"
)

type instantNetwork struct{}

func (instantNetwork) LinkFromGeoid(g sim.Geoid) sim.Link { return sim.Link{Start: g, End: g} }
func (instantNetwork) Route(origin, dest sim.Geoid) (sim.Route, error) {
	return sim.Route{{Start: origin, End: dest, SpeedKmh: 3600, DistKm: 1}}, nil
}
func (instantNetwork) DistanceKm(a, b sim.Geoid) sim.Kilometers     { return 1 }
func (instantNetwork) GeoidAtResolution(lat, lon float64) sim.Geoid { return "g" }

type unlimitedMechatronics struct{}

func (unlimitedMechatronics) EnergyCostKWh(route sim.Route) float64 { return 0 }
func (unlimitedMechatronics) ChargeKWh(charger sim.ChargerKind, currentLevel float64, duration sim.Seconds) float64 {
	return 0
}
func (unlimitedMechatronics) RangeRemainingKm(level float64) sim.Kilometers { return 1e9 }
func (unlimitedMechatronics) CapacityKWh() float64                         { return 1e9 }

type silentReporter struct{}

func (silentReporter) File(report sim.Report) {}
func (silentReporter) Flush(simTime int64)    {}
func (silentReporter) Close()                 {}

// TestSimulator_DispatchesAndCompletesATripOverSeveralTicks is an
// end-to-end smoke test: one idle vehicle, one due request, a Dispatcher
// generator, and a road network with an effectively instant route — the
// vehicle should be dispatched, arrive, and complete the trip within a
// few ticks, removing the request from the state.
func TestSimulator_DispatchesAndCompletesATripOverSeveralTicks(t *testing.T) {
	env := &sim.Environment{
		Config: &sim.Config{
			Sim:     sim.SimConfig{EndTime: 600, TimestepDurationSeconds: 60},
			Global:  sim.GlobalConfig{LogPeriodSeconds: 60},
			Network: sim.NetworkConfig{DefaultSpeedKmph: 30},
		},
		RoadNetwork:  instantNetwork{},
		Mechatronics: map[sim.MechatronicsId]sim.Mechatronics{"m1": unlimitedMechatronics{}},
		Reporter:     silentReporter{},
	}

	state := sim.NewSimulationState(instantNetwork{}, 0, 60, 9)
	state, err := state.AddVehicle(sim.Vehicle{
		ID:             "v1",
		MechatronicsID: "m1",
		Link:           sim.Link{Start: "origin", End: "origin"},
		EnergySource:   sim.EnergySource{Level: 1.0, CapacityKWh: 50, IdealLimit: 0.8},
		State:          vehiclestate.NewIdle("v1"),
	})
	require.NoError(t, err)
	state, err = state.AddRequest(sim.Request{
		ID: "r1", Origin: "origin", Destination: "dest", Passengers: 1,
		DepartureTime: 0, CancelTime: 600,
	})
	require.NoError(t, err)

	dispatcher := policy.NewDispatcher([]policy.ScorerConfig{{Name: "nearest", Weight: 1}}, 100)
	simulator := sim.NewSimulator(state, env, []sim.Generator{dispatcher}, sim.NewStaticRequestSource(nil))

	// WHEN running the tick loop to its horizon
	for i := 0; i < 10; i++ {
		require.NoError(t, simulator.Tick())
	}

	// THEN the request has been serviced and removed, and the vehicle is
	// back to Idle, empty
	_, stillPresent := simulator.State.Requests["r1"]
	assert.False(t, stillPresent)
	v := simulator.State.Vehicles["v1"]
	assert.Equal(t, "Idle", v.State.Name())
	assert.False(t, v.HasPassengers())
}

func TestSimulator_DropsUnmatchedDueRequestAndCountsIt(t *testing.T) {
	// GIVEN a due request with no vehicles in the fleet at all
	env := &sim.Environment{
		Config: &sim.Config{
			Sim:    sim.SimConfig{EndTime: 600, TimestepDurationSeconds: 60},
			Global: sim.GlobalConfig{LogPeriodSeconds: 60},
		},
		RoadNetwork: instantNetwork{},
		Reporter:    silentReporter{},
	}
	state := sim.NewSimulationState(instantNetwork{}, 0, 60, 9)
	state, err := state.AddRequest(sim.Request{ID: "r1", Origin: "o", Destination: "d", DepartureTime: 0, CancelTime: 600})
	require.NoError(t, err)

	dispatcher := policy.NewDispatcher([]policy.ScorerConfig{{Name: "nearest", Weight: 1}}, 100)
	simulator := sim.NewSimulator(state, env, []sim.Generator{dispatcher}, sim.NewStaticRequestSource(nil))

	// WHEN ticking once
	require.NoError(t, simulator.Tick())

	// THEN the request remains (never cancelled) but was counted dropped
	// this tick
	_, present := simulator.State.Requests["r1"]
	assert.True(t, present)
	assert.Equal(t, 1, simulator.DroppedThisTick)
}
