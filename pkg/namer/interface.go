// Package namer runs the fluentnamer pipeline for configured models: it loads each
// input, runs the transformer stages, and hands the result to the registered emitters.
package namer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/transformer"
)

// Emitter defines the interface for outputs of a transformed code model
type Emitter interface {
	// Emit writes the outputs of one model run
	Emit(model config.Model, result *Result) error
	// GetType returns the type identifier for this emitter (e.g., "yaml")
	GetType() string
}

// Result is the outcome of one model run
type Result struct {
	// Input is a snapshot of the model taken before the first pass
	Input *codemodel.CodeModel
	// Output is the transformed model
	Output *codemodel.CodeModel
	// DumpDir is set when stage snapshots were written
	DumpDir string
}

// Registry manages available emitters
type Registry struct {
	emitters map[string]Emitter
}

// NewRegistry creates a new emitter registry
func NewRegistry() *Registry {
	return &Registry{
		emitters: make(map[string]Emitter),
	}
}

// Register adds an emitter to the registry
func (r *Registry) Register(e Emitter) {
	r.emitters[e.GetType()] = e
}

// Get retrieves an emitter by type
func (r *Registry) Get(emitterType string) (Emitter, bool) {
	e, exists := r.emitters[emitterType]
	return e, exists
}

// GetAvailableTypes returns all registered emitter types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.emitters))
	for t := range r.emitters {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// TransformOptions contains options for a transformation run
type TransformOptions struct {
	ConfigPath  string
	SingleModel string
	// Overrides are merged over the transform settings of every model
	Overrides config.Transform
	// Dump forces stage snapshots for every model
	Dump     bool
	Fallback FallbackOptions
}

// FallbackOptions describe a single model when no config file is provided
type FallbackOptions struct {
	Input       string
	InputFormat string
	Output      string
	Outputs     []string
	ClientName  string
}

// Service provides high-level transformation functionality
type Service struct {
	registry *Registry
	log      zerolog.Logger
}

// NewService creates a new service with the default emitters
func NewService(log zerolog.Logger) *Service {
	registry := NewRegistry()
	// Register default emitters
	registry.Register(NewCodeModelEmitter(codemodel.FormatYAML))
	registry.Register(NewCodeModelEmitter(codemodel.FormatJSON))
	registry.Register(NewReportEmitter())
	return NewServiceWithRegistry(registry, log)
}

// NewServiceWithRegistry creates a new service with a custom registry
func NewServiceWithRegistry(registry *Registry, log zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		log:      log,
	}
}

// GetRegistry returns the emitter registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Transform runs the models described by opts
func (s *Service) Transform(ctx context.Context, opts TransformOptions) error {
	var cfg *config.Config
	var err error

	if opts.ConfigPath == "" {
		// Use fallback options to create a config
		if opts.Fallback.Input == "" || opts.Fallback.Output == "" {
			return errors.New("either config path or fallback input and output must be provided")
		}
		model := config.Model{
			Input:       opts.Fallback.Input,
			InputFormat: opts.Fallback.InputFormat,
			Output:      opts.Fallback.Output,
			Outputs:     opts.Fallback.Outputs,
			ClientName:  opts.Fallback.ClientName,
		}
		if err := model.Complete(); err != nil {
			return err
		}
		cfg = &config.Config{Models: []config.Model{model}}
	} else {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
	}

	for i := range cfg.Models {
		if err := cfg.Models[i].Override(opts.Overrides); err != nil {
			return fmt.Errorf("model %s: %w", cfg.Models[i].Name, err)
		}
		cfg.Models[i].Dump = cfg.Models[i].Dump || opts.Dump
	}

	return s.TransformFromConfig(ctx, cfg, opts.SingleModel)
}

// TransformFromConfig runs every model of the configuration, or only the named one.
// Models are independent and run concurrently; the first failure cancels the rest.
func (s *Service) TransformFromConfig(ctx context.Context, cfg *config.Config, onlyModel string) error {
	var models []config.Model
	for _, m := range cfg.Models {
		if onlyModel != "" && m.Name != onlyModel {
			continue
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return fmt.Errorf("model %q not found in config", onlyModel)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range models {
		m := m
		g.Go(func() error {
			if _, err := s.RunModel(ctx, m); err != nil {
				return fmt.Errorf("model %s: %w", m.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// RunModel loads, transforms and emits a single model
func (s *Service) RunModel(ctx context.Context, model config.Model) (*Result, error) {
	log := s.log.With().Str("model", model.Name).Logger()

	emitters := make([]Emitter, 0, len(model.EmitterTypes()))
	for _, t := range model.EmitterTypes() {
		e, exists := s.registry.Get(t)
		if !exists {
			return nil, fmt.Errorf("unsupported output type: %s (available: %s)", t, strings.Join(s.registry.GetAvailableTypes(), ", "))
		}
		emitters = append(emitters, e)
	}

	// Ensure output directory exists before pre-commands
	if err := os.MkdirAll(model.OutputDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Execute pre-transformation commands if specified
	if err := s.executePreCommands(ctx, model); err != nil {
		return nil, fmt.Errorf("pre-transformation commands failed: %w", err)
	}

	result, err := s.transform(ctx, model, log)
	if err != nil {
		return nil, err
	}

	for _, e := range emitters {
		if err := e.Emit(model, result); err != nil {
			return nil, fmt.Errorf("%s output failed: %w", e.GetType(), err)
		}
		log.Info().Str("output", e.GetType()).Msg("Wrote output")
	}

	// Execute post-transformation commands if specified
	if err := s.executePostCommands(ctx, model); err != nil {
		return nil, fmt.Errorf("post-transformation commands failed: %w", err)
	}
	return result, nil
}

// Preview loads and transforms a model without writing outputs or running commands
func (s *Service) Preview(ctx context.Context, model config.Model) (*Result, error) {
	return s.transform(ctx, model, s.log.With().Str("model", model.Name).Logger())
}

func (s *Service) transform(ctx context.Context, model config.Model, log zerolog.Logger) (*Result, error) {
	m, err := LoadModel(model, log)
	if err != nil {
		return nil, err
	}
	if model.ClientName != "" {
		m.Name = model.ClientName
	}
	input, err := codemodel.Clone(m)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot input model: %w", err)
	}
	result := &Result{Input: input, Output: m}

	d, err := newDumper(model.Dump, log)
	if err != nil {
		return nil, err
	}
	result.DumpDir = d.Dir()

	t := transformer.New(model.Transform, log)
	stages := []struct {
		name string
		run  func(*codemodel.CodeModel) *codemodel.CodeModel
	}{
		{"input", func(m *codemodel.CodeModel) *codemodel.CodeModel { return m }},
		{"pre", t.PreTransform},
		{"naming", t.Naming},
		{"post", t.PostTransform},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stage.run(m)
		if err := d.Dump(stage.name, m); err != nil {
			return nil, err
		}
	}
	if err := codemodel.Validate(m); err != nil {
		return nil, fmt.Errorf("transformed model is inconsistent: %w", err)
	}
	return result, nil
}

// executePreCommands executes the pre-transformation command for a model
func (s *Service) executePreCommands(ctx context.Context, model config.Model) error {
	command := model.GetPreCommand()
	if len(command) == 0 {
		return nil // No command to execute
	}

	return s.executeCommand(ctx, command, model.OutputDir(), "pre-command")
}

// executePostCommands executes the post-transformation command for a model
func (s *Service) executePostCommands(ctx context.Context, model config.Model) error {
	command := model.GetPostCommand()
	if len(command) == 0 {
		return nil // No command to execute
	}

	return s.executeCommand(ctx, command, model.OutputDir(), "post-command")
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	cmdDescription := strings.Join(command, " ")
	s.log.Debug().Str("command", cmdDescription).Str("dir", workDir).Msg("Run " + commandLabel)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}

	return nil
}
