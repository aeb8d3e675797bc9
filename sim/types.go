package sim

// Identity types. Distinct types (not aliases) prevent accidental mixing of
// id spaces across entity kinds.
type VehicleId string
type StationId string
type BaseId string
type RequestId string
type MechatronicsId string
type ChargerKind string

// Seconds, Kilometers, and Currency document intent at call sites; they are
// plain numeric types, not wrapped, to keep arithmetic ergonomic.
type Seconds = int64
type Kilometers = float64
type Currency = float64

const SecondsToHours = 1.0 / 3600.0

// EnergyKind distinguishes electric vehicles (state-of-charge, charger
// compatible) from liquid-fueled ones (refuel at a pump, never plug-charge).
type EnergyKind string

const (
	EnergyElectric EnergyKind = "electric"
	EnergyLiquid   EnergyKind = "liquid"
)

const (
	ChargerLevel2   ChargerKind = "level_2"
	ChargerDCFast   ChargerKind = "dc_fast"
	ChargerPump     ChargerKind = "pump"
)
