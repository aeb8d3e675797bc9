package driverstate

import "github.com/hive-sim/hive/sim"

// Attributes carries the fields shared by every human-driven vehicle's
// state variant: which vehicle it governs, which base it calls home, and
// which ScheduleFunc decides its on/off-shift transitions.
type Attributes struct {
	VehicleID    sim.VehicleId
	HomeBaseID   sim.BaseId
	ScheduleName string
}

func (a Attributes) schedule() ScheduleFunc {
	fn := Schedule(a.ScheduleName)
	if fn == nil {
		return alwaysOn
	}
	return fn
}
