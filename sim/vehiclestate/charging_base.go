package vehiclestate

import "github.com/hive-sim/hive/sim"

// ChargingBase is a vehicle parked at a base, holding both a reserved
// stall and a reserved plug at the base's associated station. It behaves
// like ChargingStation for the plug but, unlike ChargingStation, releases
// into ReserveBase (not Idle) once charging completes — the vehicle
// keeps its stall and waits there for its next dispatch.
type ChargingBase struct {
	Vid       sim.VehicleId
	BaseId    sim.BaseId
	StationID sim.StationId
	Charger   sim.ChargerKind
}

// NewChargingBase returns a ChargingBase bound to vid, base, and the
// already-reserved station/charger kind.
func NewChargingBase(vid sim.VehicleId, base sim.BaseId, station sim.StationId, charger sim.ChargerKind) *ChargingBase {
	return &ChargingBase{Vid: vid, BaseId: base, StationID: station, Charger: charger}
}

func (st *ChargingBase) Name() string            { return "ChargingBase" }
func (st *ChargingBase) VehicleID() sim.VehicleId { return st.Vid }

// BaseID implements baseHolder: ChargingBase holds its stall throughout.
func (st *ChargingBase) BaseID() (sim.BaseId, bool) { return st.BaseId, true }

func (st *ChargingBase) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "charging_base.Enter: vehicle not found"}
	}
	v.Route = nil
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *ChargingBase) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return DefaultUpdate(s, env, st.Vid, st,
		func(s *sim.SimulationState, env *sim.Environment) bool {
			v, ok := s.Vehicles[st.Vid]
			return ok && v.EnergySource.IsEmpty()
		},
		func(s *sim.SimulationState, env *sim.Environment) bool {
			v, ok := s.Vehicles[st.Vid]
			return ok && v.EnergySource.IsAtIdealLimit()
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			return Transition(s, env, st.Vid, NewReserveBase(st.Vid, st.BaseId))
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			v, ok := s.Vehicles[st.Vid]
			if !ok {
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "charging_base.Update: vehicle not found"}
			}
			mech, ok := env.MechatronicsFor(v.MechatronicsID)
			if ok {
				delivered := mech.ChargeKWh(st.Charger, v.EnergySource.Level, s.TimestepSeconds)
				v.EnergySource = v.EnergySource.AddEnergy(delivered)
			}
			return s.ModifyVehicle(v)
		},
	)
}

func (st *ChargingBase) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
