package namer

import (
	"fmt"
	"net/url"
	"os"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/openapi"
)

// DetectFormat returns the input format of a model: the configured one, or
// openapi for URLs and API documents and codemodel for anything else
func DetectFormat(model config.Model) (string, error) {
	if model.InputFormat != "" {
		return model.InputFormat, nil
	}
	if isURL(model.Input) {
		return config.InputOpenAPI, nil
	}
	data, err := os.ReadFile(model.Input)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if openapi.IsAPIDocument(data) {
		return config.InputOpenAPI, nil
	}
	return config.InputCodeModel, nil
}

// LoadModel reads the input of a model into a code model
func LoadModel(model config.Model, log zerolog.Logger) (*codemodel.CodeModel, error) {
	format, err := DetectFormat(model)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("input", model.Input).Str("format", format).Msg("Load input")

	switch format {
	case config.InputCodeModel:
		return codemodel.ReadFile(model.Input)
	case config.InputOpenAPI:
		doc, err := openapi.LoadDocument(model.Input)
		if err != nil {
			return nil, err
		}
		return openapi.Build(doc, model.ClientName, log)
	default:
		return nil, fmt.Errorf("unsupported inputFormat %q", format)
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
