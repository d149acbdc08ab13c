package namer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/openapi"
)

// TransformModel is a convenience function for transforming with minimal configuration
func TransformModel(opts TransformModelOptions) error {
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	service := NewService(log)

	return service.Transform(context.Background(), TransformOptions{
		ConfigPath:  opts.ConfigPath,
		SingleModel: opts.SingleModel,
		Overrides:   opts.Overrides,
		Dump:        opts.Dump,
		Fallback: FallbackOptions{
			Input:       opts.Input,
			InputFormat: opts.InputFormat,
			Output:      opts.Output,
			Outputs:     opts.Outputs,
			ClientName:  opts.ClientName,
		},
	})
}

// TransformModelOptions contains options for the convenience TransformModel function
type TransformModelOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleModel transforms only the named model from config (optional)
	SingleModel string

	// Overrides are merged over every model's transform settings
	Overrides config.Transform
	Dump      bool

	// Fallback options when no config file is provided
	Input       string   // OpenAPI document, Swagger document or code model file (path or URL)
	InputFormat string   // "openapi" or "codemodel"; detected when empty
	Output      string   // Output file
	Outputs     []string // Emitter types (e.g. "yaml", "report")
	ClientName  string   // Client name override

	Log *zerolog.Logger
}

// TransformFromConfig is a convenience function for transforming from a config file
func TransformFromConfig(configPath string, singleModel ...string) error {
	service := NewService(zerolog.Nop())
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	onlyModel := ""
	if len(singleModel) > 0 {
		onlyModel = singleModel[0]
	}

	return service.TransformFromConfig(context.Background(), cfg, onlyModel)
}

// ValidateSpec validates an OpenAPI/Swagger document or a code model document
func ValidateSpec(path string) error {
	format, err := DetectFormat(config.Model{Input: path})
	if err != nil {
		return err
	}
	if format == config.InputOpenAPI {
		return openapi.ValidateDocument(path)
	}
	m, err := codemodel.ReadFile(path)
	if err != nil {
		return err
	}
	if err := codemodel.Validate(m); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
