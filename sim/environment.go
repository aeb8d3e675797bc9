package sim

// Environment groups process-lifetime immutable collaborators: config, the
// mechatronics table, the road network, the RNG, and the report sink.
// Never mutated during a run — handlers encapsulate their own state behind
// Reporter, and Environment itself is passed by pointer but never written
// to after construction (spec §3 "Environment").
type Environment struct {
	Config          *Config
	Bundle          *GeneratorBundle
	Mechatronics    map[MechatronicsId]Mechatronics
	RoadNetwork     RoadNetwork
	RNG             *PartitionedRNG
	Reporter        Reporter
}

// MechatronicsFor looks up the mechatronics model for a vehicle. For an
// unregistered id (a misconfigured vehicle_types file) it returns a nil
// model and false, and each caller decides how to proceed; it is not
// fatal here.
func (e *Environment) MechatronicsFor(id MechatronicsId) (Mechatronics, bool) {
	m, ok := e.Mechatronics[id]
	return m, ok
}

// Reporter is the narrow interface the core depends on; sim/report.Reporter
// implements it. Kept here (not in sim/report) so Environment need not
// import the report subpackage, mirroring the register-from-subpackage
// pattern used for RoadNetwork/Mechatronics but via a plain interface
// since Reporter has no construction-time config the core must validate.
type Reporter interface {
	File(report Report)
	Flush(simTime int64)
	Close()
}

// Report is a single filed event. Fields carries arbitrary string-keyed
// data for JSON/line-protocol serialization; Type names the report kind
// (e.g. "dropped_request", "refuel_search", "invariant_violation").
type Report struct {
	Type   string
	Time   int64
	Fields map[string]string
}
