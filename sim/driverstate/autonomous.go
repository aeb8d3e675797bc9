package driverstate

import "github.com/hive-sim/hive/sim"

// Autonomous governs a vehicle with no human schedule: always available,
// fully governed by the fleet-manager generators (Dispatcher,
// ChargingFleetManager, PositionFleetManager, BaseFleetManager) with no
// additional off-shift behavior layered on top.
type Autonomous struct {
	Vid sim.VehicleId
}

// NewAutonomous returns an Autonomous driver state for vid.
func NewAutonomous(vid sim.VehicleId) *Autonomous { return &Autonomous{Vid: vid} }

func (d *Autonomous) Name() string            { return "Autonomous" }
func (d *Autonomous) VehicleID() sim.VehicleId { return d.Vid }

func (d *Autonomous) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, sim.DriverState, error) {
	return s, d, nil
}

func (d *Autonomous) GenerateInstructions(s *sim.SimulationState, env *sim.Environment) []sim.Instruction {
	return nil
}
