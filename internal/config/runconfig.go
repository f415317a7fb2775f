package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RunConfig is the host-side configuration for a single simulation run,
// loaded from YAML the same way the teacher's reinforcement.TrainingConfig
// is: viper locates/reads the file, and the typed struct is recovered via
// an intermediate yaml.Marshal/Unmarshal round trip so viper's generic
// map-of-interfaces decoding doesn't have to understand our nested types.
type RunConfig struct {
	FuelUnitNS      uint64 `yaml:"fuelUnitNs"`
	PhysicsPeriodUS uint64 `yaml:"physicsPeriodUs"`
	TotalSimTimeUS  uint64 `yaml:"totalSimTimeUs"`
	RaceStartUS     uint64 `yaml:"raceStartUs"`
	TrackPath       string `yaml:"trackPath"`
	NWorkers        int    `yaml:"nWorkers"`
	ServerAddr      string `yaml:"serverAddr"`
}

// DefaultRunConfig mirrors the constants named in spec.md §4.1 and §4.4.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		FuelUnitNS:      50,
		PhysicsPeriodUS: 500,
		TotalSimTimeUS:  60_000_000,
		RaceStartUS:     1_000_000,
		NWorkers:        4,
		ServerAddr:      ":8080",
	}
}

// LoadRunConfig reads a RunConfig from a YAML file at path, falling back to
// DefaultRunConfig for any field the file omits.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return cfg, err
	}

	var raw map[string]interface{}
	if err := vp.Unmarshal(&raw); err != nil {
		return cfg, err
	}

	spec, err := yaml.Marshal(raw)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(spec, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
