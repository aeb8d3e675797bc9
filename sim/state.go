package sim

import "sort"

// SimulationState is the immutable per-tick snapshot of the whole fleet
// world: sim_time, the entity maps, and geoid-keyed spatial indices.
// SimulationState exclusively owns its entity maps; every mutator returns
// a new SimulationState with copy-on-write top-level maps, never aliasing
// a caller's reference to old state (spec §3 "Ownership").
type SimulationState struct {
	SimTime          int64
	TimestepSeconds  int64
	H3Resolution     int
	Vehicles         map[VehicleId]Vehicle
	Stations         map[StationId]Station
	Bases            map[BaseId]Base
	Requests         map[RequestId]Request
	RoadNetwork      RoadNetwork

	vehiclesByGeoid map[Geoid]map[VehicleId]struct{}
	stationsByGeoid map[Geoid]map[StationId]struct{}
	basesByGeoid    map[Geoid]map[BaseId]struct{}
	requestsByGeoid map[Geoid]map[RequestId]struct{}
}

// NewSimulationState constructs an empty SimulationState.
func NewSimulationState(rn RoadNetwork, startTime, timestepSeconds int64, h3Resolution int) *SimulationState {
	return &SimulationState{
		SimTime:         startTime,
		TimestepSeconds: timestepSeconds,
		H3Resolution:    h3Resolution,
		Vehicles:        map[VehicleId]Vehicle{},
		Stations:        map[StationId]Station{},
		Bases:           map[BaseId]Base{},
		Requests:        map[RequestId]Request{},
		RoadNetwork:     rn,
		vehiclesByGeoid: map[Geoid]map[VehicleId]struct{}{},
		stationsByGeoid: map[Geoid]map[StationId]struct{}{},
		basesByGeoid:    map[Geoid]map[BaseId]struct{}{},
		requestsByGeoid: map[Geoid]map[RequestId]struct{}{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	cp := make(map[K]V, len(m)+1)
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func addToIndex[K comparable](idx map[Geoid]map[K]struct{}, g Geoid, id K) map[Geoid]map[K]struct{} {
	cp := copyMap(idx)
	bucket := copyMap(cp[g])
	if bucket == nil {
		bucket = map[K]struct{}{}
	}
	bucket[id] = struct{}{}
	cp[g] = bucket
	return cp
}

func removeFromIndex[K comparable](idx map[Geoid]map[K]struct{}, g Geoid, id K) map[Geoid]map[K]struct{} {
	bucket, ok := idx[g]
	if !ok {
		return idx
	}
	if _, present := bucket[id]; !present {
		return idx
	}
	cp := copyMap(idx)
	newBucket := copyMap(bucket)
	delete(newBucket, id)
	if len(newBucket) == 0 {
		delete(cp, g)
	} else {
		cp[g] = newBucket
	}
	return cp
}

func (s *SimulationState) shallowCopy() *SimulationState {
	cp := *s
	return &cp
}

// AddVehicle adds v, failing if its id already exists.
func (s *SimulationState) AddVehicle(v Vehicle) (*SimulationState, error) {
	if _, exists := s.Vehicles[v.ID]; exists {
		return nil, &SimulationStateError{Op: "add_vehicle", Msg: "vehicle id already exists: " + string(v.ID)}
	}
	next := s.shallowCopy()
	next.Vehicles = copyMap(s.Vehicles)
	next.Vehicles[v.ID] = v
	next.vehiclesByGeoid = addToIndex(s.vehiclesByGeoid, v.Geoid(), v.ID)
	return next, nil
}

// AddStation adds st, failing if its id already exists.
func (s *SimulationState) AddStation(st Station) (*SimulationState, error) {
	if _, exists := s.Stations[st.ID]; exists {
		return nil, &SimulationStateError{Op: "add_station", Msg: "station id already exists: " + string(st.ID)}
	}
	next := s.shallowCopy()
	next.Stations = copyMap(s.Stations)
	next.Stations[st.ID] = st
	next.stationsByGeoid = addToIndex(s.stationsByGeoid, st.Geoid, st.ID)
	return next, nil
}

// AddBase adds b, failing if its id already exists.
func (s *SimulationState) AddBase(b Base) (*SimulationState, error) {
	if _, exists := s.Bases[b.ID]; exists {
		return nil, &SimulationStateError{Op: "add_base", Msg: "base id already exists: " + string(b.ID)}
	}
	next := s.shallowCopy()
	next.Bases = copyMap(s.Bases)
	next.Bases[b.ID] = b
	next.basesByGeoid = addToIndex(s.basesByGeoid, b.Geoid, b.ID)
	return next, nil
}

// AddRequest adds r, failing if its id already exists.
func (s *SimulationState) AddRequest(r Request) (*SimulationState, error) {
	if _, exists := s.Requests[r.ID]; exists {
		return nil, &SimulationStateError{Op: "add_request", Msg: "request id already exists: " + string(r.ID)}
	}
	next := s.shallowCopy()
	next.Requests = copyMap(s.Requests)
	next.Requests[r.ID] = r
	next.requestsByGeoid = addToIndex(s.requestsByGeoid, r.Origin, r.ID)
	return next, nil
}

// ModifyVehicle replaces a vehicle, failing if its id is not present.
// Re-indexes the spatial entry if the geoid changed.
func (s *SimulationState) ModifyVehicle(v Vehicle) (*SimulationState, error) {
	old, exists := s.Vehicles[v.ID]
	if !exists {
		return nil, &SimulationStateError{Op: "modify_vehicle", Msg: "vehicle not found: " + string(v.ID)}
	}
	if v.EnergySource.Level < 0 || v.EnergySource.Level > 1 {
		return nil, &SimulationStateError{Op: "modify_vehicle", Msg: "soc out of bounds for " + string(v.ID)}
	}
	next := s.shallowCopy()
	next.Vehicles = copyMap(s.Vehicles)
	next.Vehicles[v.ID] = v
	if old.Geoid() != v.Geoid() {
		next.vehiclesByGeoid = removeFromIndex(s.vehiclesByGeoid, old.Geoid(), v.ID)
		next.vehiclesByGeoid = addToIndex(next.vehiclesByGeoid, v.Geoid(), v.ID)
	}
	return next, nil
}

// ModifyStation replaces a station, failing if its id is not present.
func (s *SimulationState) ModifyStation(st Station) (*SimulationState, error) {
	old, exists := s.Stations[st.ID]
	if !exists {
		return nil, &SimulationStateError{Op: "modify_station", Msg: "station not found: " + string(st.ID)}
	}
	for kind, inv := range st.Chargers {
		if inv.Available < 0 || inv.Available > inv.Total {
			return nil, &SimulationStateError{Op: "modify_station", Msg: "plug balance violated for " + string(st.ID) + "/" + string(kind)}
		}
	}
	next := s.shallowCopy()
	next.Stations = copyMap(s.Stations)
	next.Stations[st.ID] = st
	if old.Geoid != st.Geoid {
		next.stationsByGeoid = removeFromIndex(s.stationsByGeoid, old.Geoid, st.ID)
		next.stationsByGeoid = addToIndex(next.stationsByGeoid, st.Geoid, st.ID)
	}
	return next, nil
}

// ModifyBase replaces a base, failing if its id is not present.
func (s *SimulationState) ModifyBase(b Base) (*SimulationState, error) {
	old, exists := s.Bases[b.ID]
	if !exists {
		return nil, &SimulationStateError{Op: "modify_base", Msg: "base not found: " + string(b.ID)}
	}
	if b.StallsReserved > b.Capacity {
		return nil, &SimulationStateError{Op: "modify_base", Msg: "stalls reserved exceeds capacity for " + string(b.ID)}
	}
	next := s.shallowCopy()
	next.Bases = copyMap(s.Bases)
	next.Bases[b.ID] = b
	if old.Geoid != b.Geoid {
		next.basesByGeoid = removeFromIndex(s.basesByGeoid, old.Geoid, b.ID)
		next.basesByGeoid = addToIndex(next.basesByGeoid, b.Geoid, b.ID)
	}
	return next, nil
}

// ModifyRequest replaces a request, failing if its id is not present.
func (s *SimulationState) ModifyRequest(r Request) (*SimulationState, error) {
	old, exists := s.Requests[r.ID]
	if !exists {
		return nil, &SimulationStateError{Op: "modify_request", Msg: "request not found: " + string(r.ID)}
	}
	next := s.shallowCopy()
	next.Requests = copyMap(s.Requests)
	next.Requests[r.ID] = r
	if old.Origin != r.Origin {
		next.requestsByGeoid = removeFromIndex(s.requestsByGeoid, old.Origin, r.ID)
		next.requestsByGeoid = addToIndex(next.requestsByGeoid, r.Origin, r.ID)
	}
	return next, nil
}

// RemoveRequest removes a request by id. Idempotent on an absent id:
// remove_request(remove_request(s,r)) == remove_request(s,r).
func (s *SimulationState) RemoveRequest(id RequestId) *SimulationState {
	r, exists := s.Requests[id]
	if !exists {
		return s
	}
	next := s.shallowCopy()
	next.Requests = copyMap(s.Requests)
	delete(next.Requests, id)
	next.requestsByGeoid = removeFromIndex(s.requestsByGeoid, r.Origin, id)
	return next
}

// GeoidContents is the result of an AtGeoid query.
type GeoidContents struct {
	Vehicles []Vehicle
	Stations []Station
	Bases    []Base
	Requests []Request
}

// AtGeoid returns everything located at g, each slice sorted by id for
// deterministic iteration.
func (s *SimulationState) AtGeoid(g Geoid) GeoidContents {
	var out GeoidContents
	for id := range s.vehiclesByGeoid[g] {
		out.Vehicles = append(out.Vehicles, s.Vehicles[id])
	}
	sort.Slice(out.Vehicles, func(i, j int) bool { return out.Vehicles[i].ID < out.Vehicles[j].ID })
	for id := range s.stationsByGeoid[g] {
		out.Stations = append(out.Stations, s.Stations[id])
	}
	sort.Slice(out.Stations, func(i, j int) bool { return out.Stations[i].ID < out.Stations[j].ID })
	for id := range s.basesByGeoid[g] {
		out.Bases = append(out.Bases, s.Bases[id])
	}
	sort.Slice(out.Bases, func(i, j int) bool { return out.Bases[i].ID < out.Bases[j].ID })
	for id := range s.requestsByGeoid[g] {
		out.Requests = append(out.Requests, s.Requests[id])
	}
	sort.Slice(out.Requests, func(i, j int) bool { return out.Requests[i].ID < out.Requests[j].ID })
	return out
}

// GetVehicles returns vehicles matching filter, in ascending id order, to
// guarantee determinism across runs (spec §4.1).
func (s *SimulationState) GetVehicles(filter func(Vehicle) bool) []Vehicle {
	out := make([]Vehicle, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if filter == nil || filter(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VehicleIDsSorted returns all vehicle ids in ascending order.
func (s *SimulationState) VehicleIDsSorted() []VehicleId {
	out := make([]VehicleId, 0, len(s.Vehicles))
	for id := range s.Vehicles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RequestIDsSorted returns all request ids in ascending order.
func (s *SimulationState) RequestIDsSorted() []RequestId {
	out := make([]RequestId, 0, len(s.Requests))
	for id := range s.Requests {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tick advances sim_time by exactly one timestep.
func (s *SimulationState) Tick() *SimulationState {
	next := s.shallowCopy()
	next.SimTime = s.SimTime + s.TimestepSeconds
	return next
}

// StepVehicle invokes the named vehicle's state-machine Update. Returns
// nil only on an invariant violation, which callers must treat as fatal
// for the tick (spec §4.1).
func (s *SimulationState) StepVehicle(vid VehicleId, env *Environment) (*SimulationState, error) {
	v, ok := s.Vehicles[vid]
	if !ok || v.State == nil {
		return s, nil
	}
	updated, err := v.State.Update(s, env)
	if err != nil {
		if _, isEntity := err.(*EntityError); isEntity {
			env.Reporter.File(Report{Type: "entity_error", Time: s.SimTime, Fields: map[string]string{
				"vehicle_id": string(vid), "msg": err.Error(),
			}})
			return s, nil
		}
		return nil, err
	}
	return updated, nil
}

// Validate checks the spec §8 invariants that can be checked from the
// state alone: plug balance, soc bounds, and stall capacity. Invariants
// that span ticks, such as mass conservation, are not checked here.
func (s *SimulationState) Validate() error {
	for id, v := range s.Vehicles {
		if v.EnergySource.Level < 0 || v.EnergySource.Level > 1 {
			return &SimulationStateError{Op: "validate", Msg: "soc out of bounds for " + string(id)}
		}
	}
	for id, st := range s.Stations {
		for kind, inv := range st.Chargers {
			if inv.Available < 0 || inv.Available > inv.Total {
				return &SimulationStateError{Op: "validate", Msg: "plug balance violated for " + string(id) + "/" + string(kind)}
			}
		}
	}
	for id, b := range s.Bases {
		if b.StallsReserved > b.Capacity || b.StallsReserved < 0 {
			return &SimulationStateError{Op: "validate", Msg: "stall capacity violated for " + string(id)}
		}
	}
	return nil
}
