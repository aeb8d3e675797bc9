package driverstate

import "github.com/hive-sim/hive/sim"

// ScheduleFunc reports whether the driver of vid should be on-shift
// (available) at the simulation's current time. Registered under a name
// declared in a GeneratorBundle's driver_schedule field.
type ScheduleFunc func(s *sim.SimulationState, vid sim.VehicleId) bool

var schedules = map[string]ScheduleFunc{
	"always-on":   alwaysOn,
	"fixed-shift": fixedShift,
}

// Schedule looks up a registered ScheduleFunc by name. The empty string
// and "always-on" both resolve to alwaysOn, matching
// sim.IsValidDriverSchedule's acceptance of "".
func Schedule(name string) ScheduleFunc {
	if name == "" {
		return alwaysOn
	}
	return schedules[name]
}

func alwaysOn(s *sim.SimulationState, vid sim.VehicleId) bool { return true }

// fixedShift keeps a driver on-shift from 06:00 to 22:00 local sim time
// (seconds-of-day in [21600, 79200)), modeling a typical single daytime
// shift. There is no per-driver shift-offset input in this scenario
// format, so every fixed-shift driver shares the same window; a richer
// scenario format could add a per-vehicle offset without changing this
// function's signature.
func fixedShift(s *sim.SimulationState, vid sim.VehicleId) bool {
	const shiftStart = 6 * 3600
	const shiftEnd = 22 * 3600
	secondOfDay := s.SimTime % 86400
	return secondOfDay >= shiftStart && secondOfDay < shiftEnd
}
