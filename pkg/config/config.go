package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"
)

// ErrMissingInput is returned when a model has no input document
var ErrMissingInput = errors.New("input is required")

// Config represents the complete configuration of a fluentnamer run
type Config struct {
	// Defaults are merged into the transform settings of every model
	Defaults Transform `yaml:"defaults"`
	Models   []Model   `yaml:"models"`
}

// Model represents one code model to transform
type Model struct {
	Name string `yaml:"name"`
	// Input is an OpenAPI 3 / Swagger 2.0 document or a code model document, as a path or HTTP(S) URL
	Input string `yaml:"input"`
	// InputFormat is "openapi" or "codemodel"; detected from the input when empty
	InputFormat string `yaml:"inputFormat"`
	// Output is where the transformed code model is written
	Output string `yaml:"output"`
	// Outputs lists the emitter types to run (e.g. ["yaml", "report"]).
	// Defaults to the format implied by the Output extension.
	Outputs []string `yaml:"outputs"`
	// ReportPath is where the report emitter writes; defaults to Output with a .md extension
	ReportPath string `yaml:"reportPath"`
	// ClientName overrides the root client name of the code model
	ClientName string    `yaml:"clientName"`
	Transform  Transform `yaml:"transform"`
	// Dump writes a snapshot of the model after every stage to a temporary directory
	Dump bool `yaml:"dump"`
	// PreCommand is an optional command to run before the transformation starts.
	// Uses Docker Compose array format: ["autorest", "--version"]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand"`
	// PostCommand is an optional command to run after the outputs are written.
	// The command will be executed in the output directory.
	PostCommand []string `yaml:"postCommand"`
}

// GetPreCommand returns the pre-transformation command to execute.
func (m *Model) GetPreCommand() []string {
	return m.PreCommand
}

// GetPostCommand returns the post-transformation command to execute.
func (m *Model) GetPostCommand() []string {
	return m.PostCommand
}

// OutputDir returns the directory the model's outputs are written to
func (m *Model) OutputDir() string {
	return filepath.Dir(m.Output)
}

// EmitterTypes returns the configured emitter types, falling back to the Output extension
func (m *Model) EmitterTypes() []string {
	if len(m.Outputs) > 0 {
		return m.Outputs
	}
	if strings.EqualFold(filepath.Ext(m.Output), ".json") {
		return []string{"json"}
	}
	return []string{"yaml"}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes, validates and completes a configuration document
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("config.models must list at least one model")
	}
	for i := range cfg.Models {
		if err := cfg.Models[i].complete(cfg.Defaults); err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
	}
	return &cfg, nil
}

// Complete validates a model built outside of a config file and fills its defaults
func (m *Model) Complete() error {
	return m.complete(Transform{})
}

func (m *Model) complete(defaults Transform) error {
	if m.Input == "" {
		return ErrMissingInput
	}
	if m.Output == "" {
		return errors.New("output is required")
	}
	switch m.InputFormat {
	case "", InputOpenAPI, InputCodeModel:
	default:
		return fmt.Errorf("unsupported inputFormat %q", m.InputFormat)
	}
	if err := mergo.Merge(&m.Transform, defaults); err != nil {
		return fmt.Errorf("failed to merge transform defaults: %w", err)
	}
	if err := mergo.Merge(&m.Transform, DefaultTransform()); err != nil {
		return fmt.Errorf("failed to merge transform defaults: %w", err)
	}
	// Do not absolutize when input is an HTTP(S) URL
	if !isURL(m.Input) {
		m.Input = absPath(m.Input)
	}
	m.Output = absPath(m.Output)
	if m.ReportPath == "" {
		m.ReportPath = strings.TrimSuffix(m.Output, filepath.Ext(m.Output)) + ".md"
	}
	m.ReportPath = absPath(m.ReportPath)
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(m.Output), filepath.Ext(m.Output))
	}
	return nil
}

// Override merges non-zero fields of o over the model's transform settings
func (m *Model) Override(o Transform) error {
	return mergo.Merge(&m.Transform, o, mergo.WithOverride)
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func absPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, _ := filepath.Abs(p)
	return abs
}

const (
	InputOpenAPI   = "openapi"
	InputCodeModel = "codemodel"
)
