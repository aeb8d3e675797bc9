package sim

import "strconv"

// The FromRow constructors below are the thin, out-of-core edge a CSV
// scenario loader sits behind (spec.md §1 names file ingestion as an
// external collaborator). They parse one already-split CSV row (a
// string-keyed map of column name to cell value) into an entity, doing
// no file I/O themselves.

// VehicleFromRow builds a Vehicle from a CSV row, with an empty route and
// no passengers. State is left nil; callers assign the initial state and
// initial Link/Geoid before inserting into a SimulationState.
func VehicleFromRow(row map[string]string) (Vehicle, error) {
	id := VehicleId(row["vehicle_id"])
	mechID := MechatronicsId(row["vehicle_type_id"])
	capacity, err := strconv.ParseFloat(row["capacity_kwh"], 64)
	if err != nil {
		return Vehicle{}, &EntityError{Entity: "vehicle " + string(id), Msg: "capacity_kwh: " + err.Error()}
	}
	level, err := strconv.ParseFloat(row["initial_soc"], 64)
	if err != nil {
		return Vehicle{}, &EntityError{Entity: "vehicle " + string(id), Msg: "initial_soc: " + err.Error()}
	}
	opCost, err := strconv.ParseFloat(row["operating_cost_km"], 64)
	if err != nil {
		opCost = 0
	}
	return Vehicle{
		ID:             id,
		MechatronicsID: mechID,
		EnergySource:   EnergySource{CapacityKWh: capacity, Level: level, IdealLimit: 0.8},
		OperatingCostKm: Currency(opCost),
	}, nil
}

// RequestFromRow builds a Request from a CSV row.
func RequestFromRow(row map[string]string) (Request, error) {
	id := RequestId(row["request_id"])
	passengers, err := strconv.Atoi(row["passengers"])
	if err != nil {
		passengers = 1
	}
	departure, err := strconv.ParseInt(row["departure_time"], 10, 64)
	if err != nil {
		return Request{}, &EntityError{Entity: "request " + string(id), Msg: "departure_time: " + err.Error()}
	}
	cancel, err := strconv.ParseInt(row["cancel_time"], 10, 64)
	if err != nil {
		return Request{}, &EntityError{Entity: "request " + string(id), Msg: "cancel_time: " + err.Error()}
	}
	return Request{
		ID:            id,
		Origin:        Geoid(row["origin"]),
		Destination:   Geoid(row["destination"]),
		Passengers:    passengers,
		DepartureTime: departure,
		CancelTime:    cancel,
	}, nil
}

// StationFromRow builds a Station with a single charger kind's inventory;
// multi-charger-kind stations are built by merging successive rows that
// share a station_id (the loader's responsibility, not this constructor's).
func StationFromRow(row map[string]string) (Station, error) {
	id := StationId(row["station_id"])
	total, err := strconv.Atoi(row["plug_count"])
	if err != nil {
		return Station{}, &EntityError{Entity: "station " + string(id), Msg: "plug_count: " + err.Error()}
	}
	kind := ChargerKind(row["charger_kind"])
	return Station{
		ID:    id,
		Geoid: Geoid(row["geoid"]),
		Chargers: map[ChargerKind]ChargerInventory{
			kind: {Total: total, Available: total},
		},
	}, nil
}

// BaseFromRow builds a Base from a CSV row.
func BaseFromRow(row map[string]string) (Base, error) {
	id := BaseId(row["base_id"])
	capacity, err := strconv.Atoi(row["stall_count"])
	if err != nil {
		return Base{}, &EntityError{Entity: "base " + string(id), Msg: "stall_count: " + err.Error()}
	}
	stationID := StationId(row["station_id"])
	return Base{
		ID:         id,
		Geoid:      Geoid(row["geoid"]),
		Capacity:   capacity,
		StationID:  stationID,
		HasStation: stationID != "",
	}, nil
}
