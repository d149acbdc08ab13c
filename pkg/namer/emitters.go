package namer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
	"github.com/blimu-dev/fluentnamer/pkg/report"
)

// CodeModelEmitter writes the transformed code model document
type CodeModelEmitter struct {
	format codemodel.Format
}

// NewCodeModelEmitter creates an emitter for the given document format
func NewCodeModelEmitter(format codemodel.Format) *CodeModelEmitter {
	return &CodeModelEmitter{format: format}
}

// GetType returns the format name
func (e *CodeModelEmitter) GetType() string {
	return string(e.format)
}

// Emit writes the model to the configured output. The extension is replaced
// when it names another format, so yaml and json outputs can sit side by side.
func (e *CodeModelEmitter) Emit(model config.Model, result *Result) error {
	data, err := codemodel.Encode(result.Output, e.format)
	if err != nil {
		return err
	}
	path := OutputPath(model.Output, e.format)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OutputPath returns output, or output with the extension of format when its own extension names another format
func OutputPath(output string, format codemodel.Format) string {
	ext := filepath.Ext(output)
	if f, err := codemodel.ParseFormat(ext); err == nil && f == format {
		return output
	}
	if _, err := codemodel.ParseFormat(ext); err == nil {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + string(format)
}

// ReportEmitter writes the markdown summary of a run to the model's report path
type ReportEmitter struct{}

// NewReportEmitter creates a report emitter
func NewReportEmitter() *ReportEmitter {
	return &ReportEmitter{}
}

// GetType returns "report"
func (e *ReportEmitter) GetType() string {
	return "report"
}

// Emit renders the report
func (e *ReportEmitter) Emit(model config.Model, result *Result) error {
	return report.WriteFile(model.ReportPath, report.Summarize(result.Input, result.Output))
}
