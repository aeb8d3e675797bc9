package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// SimConfig groups simulation-horizon and timestep parameters (spec §6 "sim").
type SimConfig struct {
	SimName                   string  `yaml:"sim_name"`
	StartTime                 int64   `yaml:"start_time"`
	EndTime                   int64   `yaml:"end_time"`
	TimestepDurationSeconds   int64   `yaml:"timestep_duration_seconds"`
	SimH3Resolution           int     `yaml:"sim_h3_resolution"`
	IdleEnergyRateKWhPerHour  float64 `yaml:"idle_energy_rate_kwh_per_hour"`
	RequestCancelTimeSeconds  int64   `yaml:"request_cancel_time_seconds"`
}

// NetworkConfig selects and configures the RoadNetwork adapter (spec §6 "network").
type NetworkConfig struct {
	NetworkType    string  `yaml:"network_type"` // "osm_network" | "euclidean"
	DefaultSpeedKmph float64 `yaml:"default_speed_kmph"`
}

// DispatcherConfig groups dispatch/charging/repositioning policy parameters
// (spec §6 "dispatcher").
type DispatcherConfig struct {
	ChargingRangeKmThreshold  float64 `yaml:"charging_range_km_threshold"`
	IdealFastchargeSocLimit   float64 `yaml:"ideal_fastcharge_soc_limit"`
	MaxSearchRadiusKm         float64 `yaml:"max_search_radius_km"`
	IdleTimeOutSeconds        int64   `yaml:"idle_time_out_seconds"`
	MaxAllowableIdleSeconds   int64   `yaml:"max_allowable_idle_seconds"`
	ChargingSearchType        string  `yaml:"charging_search_type"` // "nearest_shortest_queue" | "shortest_time"
}

// InputConfig names the scenario files consumed by the (out-of-core) file
// loader (spec §6 "input").
type InputConfig struct {
	VehiclesFile     string `yaml:"vehicles_file"`
	RequestsFile     string `yaml:"requests_file"`
	BasesFile        string `yaml:"bases_file"`
	StationsFile     string `yaml:"stations_file"`
	RoadNetworkFile  string `yaml:"road_network_file"`
	VehicleTypesFile string `yaml:"vehicle_types_file"`
	ScenarioDirectory string `yaml:"scenario_directory"`
}

// GlobalConfig groups output and logging parameters (spec §6 "global").
type GlobalConfig struct {
	OutputBaseDirectory string `yaml:"output_base_directory"`
	LogPeriodSeconds    int64  `yaml:"log_period_seconds"`
	LogLevel            string `yaml:"log_level"`
	LogRun              bool   `yaml:"log_run"`
	LogStates           bool   `yaml:"log_states"`
	LogEvents           bool   `yaml:"log_events"`
	LogStats            bool   `yaml:"log_stats"`
}

// Config is the full enumerated configuration surface from spec §6.
type Config struct {
	Sim        SimConfig        `yaml:"sim"`
	Network    NetworkConfig    `yaml:"network"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
	Input      InputConfig      `yaml:"input"`
	Global     GlobalConfig     `yaml:"global"`
}

// LoadConfig reads and strictly parses a YAML scenario config, rejecting
// unrecognized keys, mirroring the teacher's LoadPolicyBundle.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Source: path, Err: err}
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, &IOError{Source: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks config.go invariants and §6 value ranges, returning a
// *ConfigError on the first violation found.
func (c *Config) Validate() error {
	if c.Sim.EndTime < c.Sim.StartTime {
		return &ConfigError{Field: "sim.end_time", Msg: "must be >= sim.start_time"}
	}
	if c.Sim.TimestepDurationSeconds <= 0 {
		return &ConfigError{Field: "sim.timestep_duration_seconds", Msg: "must be > 0"}
	}
	if c.Sim.SimH3Resolution < 0 {
		return &ConfigError{Field: "sim.sim_h3_resolution", Msg: "must be >= 0"}
	}
	if c.Network.NetworkType != "osm_network" && c.Network.NetworkType != "euclidean" {
		return &ConfigError{Field: "network.network_type", Msg: fmt.Sprintf("unknown network type %q", c.Network.NetworkType)}
	}
	if c.Network.DefaultSpeedKmph <= 0 {
		return &ConfigError{Field: "network.default_speed_kmph", Msg: "must be > 0"}
	}
	if d := c.Dispatcher.IdealFastchargeSocLimit; math.IsNaN(d) || d < 0 || d > 1 {
		return &ConfigError{Field: "dispatcher.ideal_fastcharge_soc_limit", Msg: "must be in [0,1]"}
	}
	if c.Dispatcher.ChargingSearchType != "" &&
		c.Dispatcher.ChargingSearchType != "nearest_shortest_queue" &&
		c.Dispatcher.ChargingSearchType != "shortest_time" {
		return &ConfigError{Field: "dispatcher.charging_search_type", Msg: "unknown search type"}
	}
	return nil
}
