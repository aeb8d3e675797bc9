package sim

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// GeneratorBundle selects which instruction generators run, in what order,
// and which driver schedule function governs human-driven vehicles. It is
// loadable from YAML the same strict way as Config.
type GeneratorBundle struct {
	Generators   []string `yaml:"generators"`    // declared order; later entries override earlier on the same vehicle
	DriverSchedule string `yaml:"driver_schedule"`
}

var (
	validGenerators     = map[string]bool{"charging-fleet-manager": true, "dispatcher": true, "position-fleet-manager": true, "base-fleet-manager": true}
	validDriverSchedules = map[string]bool{"": true, "always-on": true, "fixed-shift": true}
)

// IsValidGeneratorName reports whether name is a recognized generator.
func IsValidGeneratorName(name string) bool { return validGenerators[name] }

// IsValidDriverSchedule reports whether name is a recognized driver
// schedule function.
func IsValidDriverSchedule(name string) bool { return validDriverSchedules[name] }

// LoadGeneratorBundle reads and strictly parses a YAML generator bundle.
func LoadGeneratorBundle(path string) (*GeneratorBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator bundle: %w", err)
	}
	var b GeneratorBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&b); err != nil {
		return nil, fmt.Errorf("parsing generator bundle: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks that every generator name and the driver schedule name
// are recognized.
func (b *GeneratorBundle) Validate() error {
	if len(b.Generators) == 0 {
		return fmt.Errorf("generator bundle: at least one generator must be declared; valid options: %s", validNames(validGenerators))
	}
	for _, name := range b.Generators {
		if !validGenerators[name] {
			return fmt.Errorf("unknown generator %q; valid options: %s", name, validNames(validGenerators))
		}
	}
	if !validDriverSchedules[b.DriverSchedule] {
		return fmt.Errorf("unknown driver schedule %q; valid options: %s", b.DriverSchedule, validNames(validDriverSchedules))
	}
	return nil
}

func validNames(m map[string]bool) string {
	names := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
