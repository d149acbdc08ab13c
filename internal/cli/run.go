package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/namer"
	"github.com/blimu-dev/fluentnamer/pkg/report"
)

type FallbackParams struct {
	Input       string
	InputFormat string
	Output      string
	Outputs     []string
	ClientName  string
}

type RunTransformParams struct {
	ConfigPath  string
	SingleModel string
	Overrides   config.Transform
	Dump        bool
	Fallback    FallbackParams
}

func RunValidate(input string) error {
	return namer.ValidateSpec(input)
}

func RunTransform(ctx context.Context, p RunTransformParams, log zerolog.Logger) error {
	if p.ConfigPath == "" && (p.Fallback.Input == "" || p.Fallback.Output == "") {
		return errors.New("either --config or both --input and --output must be provided")
	}
	opts := namer.TransformOptions{
		ConfigPath:  p.ConfigPath,
		SingleModel: p.SingleModel,
		Overrides:   p.Overrides,
		Dump:        p.Dump,
		Fallback: namer.FallbackOptions{
			Input:       p.Fallback.Input,
			InputFormat: p.Fallback.InputFormat,
			Output:      p.Fallback.Output,
			Outputs:     p.Fallback.Outputs,
			ClientName:  p.Fallback.ClientName,
		},
	}
	if opts.ConfigPath != "" {
		opts.ConfigPath = absPath(opts.ConfigPath)
	}
	return namer.NewService(log).Transform(ctx, opts)
}

type RunReportParams struct {
	Input       string
	InputFormat string
	ClientName  string
	Overrides   config.Transform
}

// RunReport transforms the input in memory and writes the report to w
func RunReport(ctx context.Context, p RunReportParams, w io.Writer, log zerolog.Logger) error {
	if p.Input == "" {
		return errors.New("--input is required")
	}
	input := p.Input
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		input = absPath(input)
	}
	model := config.Model{
		Name:        strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		Input:       input,
		InputFormat: p.InputFormat,
		ClientName:  p.ClientName,
		Transform:   config.DefaultTransform(),
	}
	if err := model.Override(p.Overrides); err != nil {
		return err
	}

	result, err := namer.NewService(log).Preview(ctx, model)
	if err != nil {
		return err
	}
	if err := report.Render(w, report.Summarize(result.Input, result.Output)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
