// Package sim provides the core discrete-time simulation engine for HIVE.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - entity.go: Vehicle, Station, Base, Request value types and the energy source
//   - state.go: SimulationState, the immutable per-tick snapshot
//   - simulator.go: the tick loop and update pipeline
//
// # Architecture
//
// The sim package owns the entity model, the simulation-state container, and
// the interfaces that subpackages implement:
//   - sim/vehiclestate/: vehicle state-machine variants (Idle, Repositioning, ...)
//   - sim/driverstate/: driver availability state machine (human/autonomous)
//   - sim/instruction/: instruction kinds that apply state transitions
//   - sim/policy/: instruction generators (charging, dispatch, repositioning, base)
//   - sim/network/: RoadNetwork implementations (euclidean, osm stub)
//   - sim/mechatronics/: powertrain/powercurve implementations
//   - sim/report/: buffered event reporting and run statistics
//
// Subpackages register their implementations via init() functions that
// call RegisterRoadNetwork / RegisterMechatronics, filling package-level
// name-to-constructor registries and breaking the import cycle between sim/ (interface owner) and the
// subpackages (implementation), the same pattern used throughout this
// codebase's sibling simulators.
package sim
