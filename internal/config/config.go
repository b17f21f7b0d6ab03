// Package config loads the run configuration for trackctl.
//
// The defaults reproduce the historical study setup, so a bare `trackctl
// sweep` in a prepared study directory behaves like the original scripts.
// A YAML file overrides any subset of the defaults; CLI flags override both.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when --config is not
// given. Its absence is not an error; the defaults apply.
const DefaultFile = "trackctl.yaml"

// SweepConfig drives the chromaticity sweep.
type SweepConfig struct {
	// Template is the simulator script carrying the placeholder token.
	Template string `yaml:"template"`

	// Placeholder is the literal token replaced per sweep point.
	Placeholder string `yaml:"placeholder"`

	// Values are substituted verbatim, so "2.2" stays "2.2" and never
	// becomes "2.20".
	Values []string `yaml:"values"`

	// OutputPattern names the converter's per-value SDDS file; %s is the
	// sweep value.
	OutputPattern string `yaml:"output_pattern"`

	// Intermediates are glob patterns for the simulator's raw tracking
	// files, removed after each conversion.
	Intermediates []string `yaml:"intermediates"`
}

// ToolConfig is one external program: the command followed by fixed
// arguments.
type ToolConfig []string

// Program returns the binary name, empty when unconfigured.
func (t ToolConfig) Program() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Args returns the fixed arguments after the binary name.
func (t ToolConfig) Args() []string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// ToolsConfig names the external programs.
type ToolsConfig struct {
	Simulator  ToolConfig `yaml:"simulator"`
	Converter  ToolConfig `yaml:"converter"`
	EntryPoint ToolConfig `yaml:"entrypoint"`

	// EntryOption is the fixed option passed to the entry point on every
	// invocation, before any user-supplied flag.
	EntryOption string `yaml:"entry_option"`
}

// ScaffoldConfig drives the project scaffolding.
type ScaffoldConfig struct {
	// ParamsTemplate is the base parameters file copied per run.
	ParamsTemplate string `yaml:"params_template"`
}

// Config is the complete trackctl configuration.
type Config struct {
	Sweep    SweepConfig    `yaml:"sweep"`
	Tools    ToolsConfig    `yaml:"tools"`
	Scaffold ScaffoldConfig `yaml:"scaffold"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sweep: SweepConfig{
			Template:      "track_template.sad",
			Placeholder:   "{{zx}}",
			Values:        []string{"1.0", "1.2", "1.5", "1.8", "2.0", "2.2"},
			OutputPattern: "tracking_%s.sdds",
			Intermediates: []string{"Outputdata/tracking_x*", "Outputdata/tracking_y*"},
		},
		Tools: ToolsConfig{
			Simulator:   ToolConfig{"sad"},
			Converter:   ToolConfig{"python3", "tracking/make_sdds_from_tracking.py"},
			EntryPoint:  ToolConfig{"python3", "main.py"},
			EntryOption: "--tracking",
		},
		Scaffold: ScaffoldConfig{
			ParamsTemplate: "parameters.txt",
		},
	}
}

// Load reads path over the defaults. When explicit is false and the file
// does not exist, the defaults are returned as-is; with explicit true a
// missing file is an error.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Sweep.Placeholder == "" {
		return fmt.Errorf("sweep.placeholder must not be empty")
	}
	if c.Sweep.Template == "" {
		return fmt.Errorf("sweep.template must not be empty")
	}
	if c.Tools.Simulator.Program() == "" {
		return fmt.Errorf("tools.simulator must name a program")
	}
	if c.Tools.Converter.Program() == "" {
		return fmt.Errorf("tools.converter must name a program")
	}
	if c.Tools.EntryPoint.Program() == "" {
		return fmt.Errorf("tools.entrypoint must name a program")
	}
	return nil
}
