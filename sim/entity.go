package sim

import "fmt"

// EnergySource models a vehicle's battery or fuel tank.
//
// Invariant: 0 <= Level <= 1.
type EnergySource struct {
	Kind           EnergyKind
	CapacityKWh    float64
	Level          float64 // fraction of capacity remaining, in [0,1]
	IdealLimit     float64 // soc above which fast-charging is considered complete
	MaxChargeAccKW float64 // max charge acceptance rate
}

// UseEnergy debits kWh from the source, clamping at empty. Mirrors the
// original's EnergySource.use_energy: a vehicle may be asked to traverse
// farther than its remaining energy allows in one step; this is a
// documented bounded error, not a panic.
func (e EnergySource) UseEnergy(kWh float64) EnergySource {
	used := kWh / e.CapacityKWh
	level := e.Level - used
	if level < 0 {
		level = 0
	}
	e.Level = level
	return e
}

// AddEnergy credits kWh to the source, clamping at full.
func (e EnergySource) AddEnergy(kWh float64) EnergySource {
	added := kWh / e.CapacityKWh
	level := e.Level + added
	if level > 1 {
		level = 1
	}
	e.Level = level
	return e
}

func (e EnergySource) IsEmpty() bool           { return e.Level <= 0 }
func (e EnergySource) IsAtIdealLimit() bool    { return e.Level >= e.IdealLimit }
func (e EnergySource) IsFull() bool            { return e.Level >= 1 }

// VehicleState is the capability implemented by each tagged variant in
// sim/vehiclestate. Defined here (not in sim/vehiclestate) so Vehicle can
// hold one without creating an import cycle.
type VehicleState interface {
	// Name identifies the variant for logging and reports (e.g. "Idle").
	Name() string
	// Enter runs once when a vehicle transitions into this state.
	Enter(s *SimulationState, env *Environment) (*SimulationState, error)
	// Update runs once per tick while the vehicle remains in this state.
	Update(s *SimulationState, env *Environment) (*SimulationState, error)
	// Exit runs once when the vehicle transitions out of this state.
	Exit(s *SimulationState, env *Environment) (*SimulationState, error)
	// VehicleID returns the vehicle this state instance is bound to.
	VehicleID() VehicleId
}

// DriverState is the capability implemented by sim/driverstate variants.
type DriverState interface {
	Name() string
	Update(s *SimulationState, env *Environment) (*SimulationState, DriverState, error)
	GenerateInstructions(s *SimulationState, env *Environment) []Instruction
	VehicleID() VehicleId
}

// Instruction is a command that, applied, deterministically transitions a
// vehicle's state. Concrete kinds live in sim/instruction.
type Instruction interface {
	// Apply performs the transition, or returns (nil state unchanged) with
	// an *EntityError if the instruction is inadmissible; the pipeline
	// drops inadmissible instructions and files a report instead of
	// aborting the run.
	Apply(s *SimulationState, env *Environment) (*SimulationState, error)
	fmt.Stringer
}

// Generator is the capability implemented by sim/policy instruction
// generators. Generate returns the (possibly updated) generator alongside
// the instructions it produced this tick, mirroring the teacher's
// (self', instructions) pattern for stateful-but-pure policies.
type Generator interface {
	Name() string
	Generate(s *SimulationState, env *Environment) (Generator, []Instruction)
}

// Vehicle is a unit of the fleet.
//
// Invariants: 0 <= EnergySource.Level <= 1; HasPassengers() implies
// State is ServicingTrip/ServicingPooledTrip; an empty Route implies no
// movement phase is pending for the current state.
type Vehicle struct {
	ID              VehicleId
	MechatronicsID  MechatronicsId
	EnergySource    EnergySource
	Link            Link
	State           VehicleState
	Driver          DriverState
	Route           Route
	Passengers      map[RequestId]int // request id -> passenger count loaded
	ChargerIntent   ChargerKind
	HasChargerIntent bool
	OperatingCostKm Currency
	DistanceKm      Kilometers
	Balance         Currency
}

func (v Vehicle) Geoid() Geoid { return v.Link.Start }

func (v Vehicle) HasRoute() bool { return len(v.Route) > 0 }

func (v Vehicle) HasPassengers() bool { return len(v.Passengers) > 0 }

func (v Vehicle) String() string {
	stateName := "<nil>"
	if v.State != nil {
		stateName = v.State.Name()
	}
	return fmt.Sprintf("Vehicle(%s,%s,soc=%.2f)", v.ID, stateName, v.EnergySource.Level)
}

// WithEnergySource returns a copy of v with a new energy source.
func (v Vehicle) WithEnergySource(e EnergySource) Vehicle {
	v.EnergySource = e
	return v
}

// WithLink returns a copy of v with a new current link.
func (v Vehicle) WithLink(l Link) Vehicle {
	v.Link = l
	return v
}

// WithRoute returns a copy of v with a new route assigned.
func (v Vehicle) WithRoute(r Route) Vehicle {
	v.Route = r
	return v
}

// WithState returns a copy of v transitioned into a new state. Callers
// should use vehiclestate.Transition rather than this directly,
// so can-transition checks and enter/exit hooks run.
func (v Vehicle) WithState(st VehicleState) Vehicle {
	v.State = st
	return v
}

// AddPassengers loads passengers from a dispatched request onto the
// vehicle.
func (v Vehicle) AddPassengers(reqID RequestId, count int) Vehicle {
	if v.Passengers == nil {
		v.Passengers = map[RequestId]int{}
	}
	cp := make(map[RequestId]int, len(v.Passengers)+1)
	for k, val := range v.Passengers {
		cp[k] = val
	}
	cp[reqID] += count
	v.Passengers = cp
	return v
}

// DropOffPassengers removes a request's passengers from the vehicle.
func (v Vehicle) DropOffPassengers(reqID RequestId) Vehicle {
	if _, ok := v.Passengers[reqID]; !ok {
		return v
	}
	cp := make(map[RequestId]int, len(v.Passengers))
	for k, val := range v.Passengers {
		if k == reqID {
			continue
		}
		cp[k] = val
	}
	v.Passengers = cp
	return v
}

// Station is a charging location with a per-charger-kind inventory.
//
// Invariant: 0 <= Available <= Total for every charger kind; every
// checkout is paired with exactly one check-in.
type Station struct {
	ID        StationId
	Geoid     Geoid
	Chargers  map[ChargerKind]ChargerInventory
}

// ChargerInventory tracks total and available plugs for one charger kind.
type ChargerInventory struct {
	Total     int
	Available int
}

// HasAvailable reports whether kind has at least one free plug.
func (s Station) HasAvailable(kind ChargerKind) bool {
	inv, ok := s.Chargers[kind]
	return ok && inv.Available > 0
}

// Checkout reserves one plug of kind, returning the updated station.
// Returns ok=false if none are available.
func (s Station) Checkout(kind ChargerKind) (Station, bool) {
	inv, ok := s.Chargers[kind]
	if !ok || inv.Available <= 0 {
		return s, false
	}
	inv.Available--
	cp := copyChargerMap(s.Chargers)
	cp[kind] = inv
	s.Chargers = cp
	return s, true
}

// Checkin releases one plug of kind back to the station.
func (s Station) Checkin(kind ChargerKind) Station {
	inv := s.Chargers[kind]
	if inv.Available < inv.Total {
		inv.Available++
	}
	cp := copyChargerMap(s.Chargers)
	cp[kind] = inv
	s.Chargers = cp
	return s
}

func copyChargerMap(m map[ChargerKind]ChargerInventory) map[ChargerKind]ChargerInventory {
	cp := make(map[ChargerKind]ChargerInventory, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// Base is a vehicle depot with stall capacity and an optional associated
// charging station.
//
// Invariant: StallsReserved <= Capacity.
type Base struct {
	ID             BaseId
	Geoid          Geoid
	Capacity       int
	StallsReserved int
	StationID      StationId
	HasStation     bool
}

func (b Base) HasFreeStall() bool { return b.StallsReserved < b.Capacity }

// ReserveStall reserves a stall, returning the updated base and ok=false
// if none are free.
func (b Base) ReserveStall() (Base, bool) {
	if !b.HasFreeStall() {
		return b, false
	}
	b.StallsReserved++
	return b, true
}

// ReleaseStall frees a previously reserved stall.
func (b Base) ReleaseStall() Base {
	if b.StallsReserved > 0 {
		b.StallsReserved--
	}
	return b
}

// Request is a trip request from an origin to a destination.
//
// Lifecycle: created when DepartureTime <= sim_time; dispatched when
// AssignedVehicle is set; removed when serviced or when
// sim_time > CancelTime.
type Request struct {
	ID              RequestId
	Origin          Geoid
	Destination     Geoid
	Passengers      int
	DepartureTime   int64
	CancelTime      int64
	AssignedVehicle VehicleId
	Assigned        bool
}

func (r Request) IsDue(simTime int64) bool { return r.DepartureTime <= simTime }

func (r Request) IsExpired(simTime int64) bool { return simTime > r.CancelTime }

func (r Request) WithAssignment(v VehicleId) Request {
	r.AssignedVehicle = v
	r.Assigned = true
	return r
}
