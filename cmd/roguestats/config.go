package main

import (
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	httpfrontend "github.com/MestreLion/roguestats/frontend/http"
	"github.com/MestreLion/roguestats/pkg/log"
	"github.com/MestreLion/roguestats/state"
	"github.com/MestreLion/roguestats/state/memory"
)

// Default values for the monster generator output.
const (
	defaultMonsters = 100
	defaultLevels   = 30
)

type storeConfig struct {
	Name   string      `yaml:"name"`
	Config interface{} `yaml:"config"`
}

// Config represents the configuration used for executing roguestats.
type Config struct {
	Monsters    int                 `yaml:"monsters"`
	Levels      int                 `yaml:"levels"`
	Seed        *int64              `yaml:"seed"`
	SeedPhrase  string              `yaml:"seed_phrase"`
	MetricsAddr string              `yaml:"metrics_addr"`
	HTTPConfig  httpfrontend.Config `yaml:"http"`
	State       storeConfig         `yaml:"state"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Monsters: defaultMonsters,
		Levels:   defaultLevels,
		HTTPConfig: httpfrontend.Config{
			Addr: "127.0.0.1:6880",
		},
		State: storeConfig{Name: memory.Name},
	}
}

// LogFields renders the current config as a set of Logrus fields.
func (cfg Config) LogFields() log.Fields {
	fields := log.Fields{
		"monsters":    cfg.Monsters,
		"levels":      cfg.Levels,
		"seedPhrase":  cfg.SeedPhrase,
		"metricsAddr": cfg.MetricsAddr,
		"stateStore":  cfg.State.Name,
	}
	if cfg.Seed != nil {
		fields["seed"] = *cfg.Seed
	}
	return fields
}

// Validate replaces invalid values with their defaults, warning to the
// logger for each of them.
func (cfg Config) Validate() Config {
	validcfg := cfg

	if cfg.Monsters <= 0 {
		validcfg.Monsters = defaultMonsters
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "Monsters",
			"provided": cfg.Monsters,
			"default":  validcfg.Monsters,
		})
	}

	if cfg.Levels <= 0 {
		validcfg.Levels = defaultLevels
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "Levels",
			"provided": cfg.Levels,
			"default":  validcfg.Levels,
		})
	}

	if cfg.State.Name == "" {
		validcfg.State.Name = memory.Name
		log.Warn("falling back to default configuration", log.Fields{
			"name":     "State.Name",
			"provided": cfg.State.Name,
			"default":  validcfg.State.Name,
		})
	}

	return validcfg
}

// NewStore creates the configured state.Store.
func (cfg Config) NewStore() (state.Store, error) {
	cfgBytes, err := yaml.Marshal(cfg.State.Config)
	if err != nil {
		panic("failed to remarshal valid YAML")
	}

	s, err := state.NewStore(cfg.State.Name, cfgBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid state store %q", cfg.State.Name)
	}
	return s, nil
}

// ConfigFile represents a namespaced YAML configuration file.
type ConfigFile struct {
	Roguestats Config `yaml:"roguestats"`
}

// ParseConfigFile returns a new ConfigFile given the path to a YAML
// configuration file.
//
// It supports relative and absolute paths and environment variables.
// An empty path yields the default configuration.
func ParseConfigFile(path string) (*ConfigFile, error) {
	if path == "" {
		return &ConfigFile{Roguestats: DefaultConfig()}, nil
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config")
	}
	defer f.Close()

	contents, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfgFile := ConfigFile{Roguestats: DefaultConfig()}
	if err := yaml.Unmarshal(contents, &cfgFile); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	return &cfgFile, nil
}
