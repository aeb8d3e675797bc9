package vehiclestate

import "github.com/hive-sim/hive/sim"

// Idle is a vehicle waiting, uncommitted, for its next instruction.
// IdleDuration accumulates while the vehicle remains in this state and
// resets to zero whenever the vehicle leaves it — it is the signal the
// PositionFleetManager/BaseFleetManager policies read to decide whether a
// vehicle has waited long enough to warrant a reposition or a trip to a
// base, and the Dispatcher's idle-duration scorer ranks by it.
type Idle struct {
	Vid          sim.VehicleId
	IdleDuration sim.Seconds
}

// NewIdle returns a freshly-entered Idle state with a zero idle duration.
func NewIdle(vid sim.VehicleId) *Idle { return &Idle{Vid: vid} }

func (st *Idle) Name() string            { return "Idle" }
func (st *Idle) VehicleID() sim.VehicleId { return st.Vid }

// IdleDurationSeconds exposes IdleDuration through a narrow interface so
// sim/policy can read it without importing this package's concrete type.
func (st *Idle) IdleDurationSeconds() int64 { return st.IdleDuration }

func (st *Idle) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "idle.Enter: vehicle not found"}
	}
	fresh := &Idle{Vid: st.Vid}
	v.State = fresh
	return s.ModifyVehicle(v)
}

func (st *Idle) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return DefaultUpdate(s, env, st.Vid, st,
		func(s *sim.SimulationState, env *sim.Environment) bool { return IsEnergyExhausted(s, st.Vid) },
		func(s *sim.SimulationState, env *sim.Environment) bool { return false },
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) { return s, nil },
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			v, ok := s.Vehicles[st.Vid]
			if !ok {
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "idle.Update: vehicle not found"}
			}
			idleKWh := env.Config.Sim.IdleEnergyRateKWhPerHour * float64(s.TimestepSeconds) * sim.SecondsToHours
			v.EnergySource = v.EnergySource.UseEnergy(idleKWh)
			v.State = &Idle{Vid: st.Vid, IdleDuration: st.IdleDuration + s.TimestepSeconds}
			return s.ModifyVehicle(v)
		},
	)
}

func (st *Idle) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
