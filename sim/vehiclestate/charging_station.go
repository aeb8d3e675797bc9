package vehiclestate

import "github.com/hive-sim/hive/sim"

// ChargingStation is a vehicle parked at a station, drawing energy through
// a reserved plug. It holds the plug (StationID/Charger) until the
// vehicle's energy reaches its energy source's ideal limit (IdealLimit), at
// which point Transition's charge-category exit hook releases the plug
// back to the station and the vehicle returns to Idle.
type ChargingStation struct {
	Vid       sim.VehicleId
	StationID sim.StationId
	Charger   sim.ChargerKind
}

// NewChargingStation returns a ChargingStation bound to vid, station, and
// the already-reserved charger kind.
func NewChargingStation(vid sim.VehicleId, station sim.StationId, charger sim.ChargerKind) *ChargingStation {
	return &ChargingStation{Vid: vid, StationID: station, Charger: charger}
}

func (st *ChargingStation) Name() string            { return "ChargingStation" }
func (st *ChargingStation) VehicleID() sim.VehicleId { return st.Vid }

func (st *ChargingStation) Enter(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	v, ok := s.Vehicles[st.Vid]
	if !ok {
		return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "charging_station.Enter: vehicle not found"}
	}
	v.Route = nil
	v.State = st
	return s.ModifyVehicle(v)
}

func (st *ChargingStation) Update(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
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
			return Transition(s, env, st.Vid, NewIdle(st.Vid))
		},
		func(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
			v, ok := s.Vehicles[st.Vid]
			if !ok {
				return nil, &sim.EntityError{Entity: string(st.Vid), Msg: "charging_station.Update: vehicle not found"}
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

func (st *ChargingStation) Exit(s *sim.SimulationState, env *sim.Environment) (*sim.SimulationState, error) {
	return s, nil
}
