// Package fluentnamer normalizes code models built from OpenAPI 3 and Swagger 2.0
// documents before SDK emission.
//
// It renames anonymous schemas, infers canonical resource and error base types,
// normalizes operation names and resolves naming conflicts. It also prunes schemas
// that nothing references.
//
// Quick Start:
//
//	import "github.com/blimu-dev/fluentnamer"
//
//	// Transform a Swagger document into a normalized code model
//	err := fluentnamer.Transform(fluentnamer.TransformOptions{
//		Input:   "./specs/compute.json",
//		Output:  "./out/compute.yaml",
//		Outputs: []string{"yaml", "report"},
//	})
//
// For more advanced usage, see the namer and transformer packages.
package fluentnamer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/namer"
)

// Transform runs the pipeline with full configuration options.
// Either ConfigPath or Input and Output must be set.
//
// Example:
//
//	err := fluentnamer.Transform(fluentnamer.TransformOptions{
//		Input:      "./openapi.yaml",
//		Output:     "./out/model.json",
//		ClientName: "WidgetManagementClient",
//		Overrides: config.Transform{
//			RemoveOperationGroup: config.NameList{"Internal"},
//		},
//	})
func Transform(opts TransformOptions) error {
	return namer.TransformModel(namer.TransformModelOptions{
		ConfigPath:  opts.ConfigPath,
		SingleModel: opts.SingleModel,
		Overrides:   opts.Overrides,
		Dump:        opts.Dump,
		Input:       opts.Input,
		InputFormat: opts.InputFormat,
		Output:      opts.Output,
		Outputs:     opts.Outputs,
		ClientName:  opts.ClientName,
		Log:         opts.Log,
	})
}

// TransformFromConfig transforms the models of a YAML configuration file.
// Optionally, you can specify a single model name to transform only that model.
//
// Example:
//
//	// Transform all models from config
//	err := fluentnamer.TransformFromConfig("./fluentnamer.yaml")
//
//	// Transform only a specific model
//	err := fluentnamer.TransformFromConfig("./fluentnamer.yaml", "compute")
func TransformFromConfig(configPath string, singleModel ...string) error {
	return namer.TransformFromConfig(configPath, singleModel...)
}

// ValidateSpec validates an OpenAPI/Swagger document or a code model document.
//
// Example:
//
//	err := fluentnamer.ValidateSpec("./openapi.yaml")
//	if err != nil {
//		log.Fatalf("Invalid document: %v", err)
//	}
func ValidateSpec(path string) error {
	return namer.ValidateSpec(path)
}

// TransformOptions contains options for a transformation
type TransformOptions struct {
	// ConfigPath is the path to the configuration file (optional)
	ConfigPath string

	// SingleModel transforms only the named model from config (optional)
	SingleModel string

	// Overrides are merged over the transform settings of every model
	Overrides config.Transform

	// Dump writes the model after every stage to a temporary directory
	Dump bool

	// Fallback options when no config file is provided
	Input       string   // OpenAPI/Swagger document or code model, path or URL
	InputFormat string   // "openapi" or "codemodel"; detected when empty
	Output      string   // Output code model file
	Outputs     []string // Output types (e.g., "yaml", "json", "report")
	ClientName  string   // Client name of the code model

	// Log receives pass decisions; nothing is logged when nil
	Log *zerolog.Logger
}
