package namer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
)

const widgets = "../openapi/testdata/widgets.yaml"

var anonymousName = regexp.MustCompile(`^(Components\w*(Additionalproperties|Allof\d*|Items)|Enum\d+|Paths\w*Requestbody\w*Schema)$`)

func newModel(t *testing.T, outputs ...string) config.Model {
	t.Helper()
	m := config.Model{
		Input:   widgets,
		Output:  filepath.Join(t.TempDir(), "out", "widgets.yaml"),
		Outputs: outputs,
	}
	require.NoError(t, m.Complete())
	return m
}

func names(m *codemodel.CodeModel) map[string]bool {
	out := map[string]bool{}
	for _, s := range m.LiveSchemas() {
		if !s.External {
			out[s.Name] = true
		}
	}
	return out
}

func TestRunModel(t *testing.T) {
	model := newModel(t, "yaml", "json", "report")
	result, err := NewService(zerolog.Nop()).RunModel(context.Background(), model)
	require.NoError(t, err)

	var before []string
	for n := range names(result.Input) {
		if anonymousName.MatchString(n) {
			before = append(before, n)
		}
	}
	assert.NotEmpty(t, before, "input snapshot keeps the synthesized names")
	for n := range names(result.Output) {
		assert.NotRegexp(t, anonymousName, n)
	}
	assert.True(t, names(result.Output)["WidgetsCreateOrUpdateRequestBody"])
	assert.Empty(t, result.DumpDir)

	written, err := codemodel.ReadFile(model.Output)
	require.NoError(t, err)
	assert.Equal(t, "WidgetService", written.Name)
	assert.Equal(t, names(result.Output), names(written))

	_, err = codemodel.ReadFile(filepath.Join(filepath.Dir(model.Output), "widgets.json"))
	require.NoError(t, err)

	report, err := os.ReadFile(model.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "# WidgetService transformation report")
	assert.Contains(t, string(report), "### Renamed")
}

func TestRunModelFromCodeModel(t *testing.T) {
	first := newModel(t)
	_, err := NewService(zerolog.Nop()).RunModel(context.Background(), first)
	require.NoError(t, err)

	second := config.Model{
		Input:      first.Output,
		Output:     filepath.Join(t.TempDir(), "again.yaml"),
		ClientName: "RenamedClient",
	}
	require.NoError(t, second.Complete())
	result, err := NewService(zerolog.Nop()).RunModel(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, "RenamedClient", result.Output.Name)
	assert.True(t, names(result.Output)["WidgetsCreateOrUpdateRequestBody"])
}

func TestRunModelDump(t *testing.T) {
	model := newModel(t)
	model.Dump = true
	result, err := NewService(zerolog.Nop()).RunModel(context.Background(), model)
	require.NoError(t, err)
	require.NotEmpty(t, result.DumpDir)
	t.Cleanup(func() { os.RemoveAll(result.DumpDir) })

	assert.Contains(t, filepath.Base(result.DumpDir), "code-model-")
	for _, stage := range []string{"input", "pre", "naming", "post"} {
		_, err := codemodel.ReadFile(filepath.Join(result.DumpDir, stage+".yaml"))
		assert.NoError(t, err, stage)
	}
}

func TestRunModelUnsupportedOutput(t *testing.T) {
	_, err := NewService(zerolog.Nop()).RunModel(context.Background(), newModel(t, "python"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output type: python (available: json, report, yaml)")
}

func TestRunModelCommands(t *testing.T) {
	model := newModel(t)
	model.PreCommand = []string{"sh", "-c", "echo pre > pre.txt"}
	model.PostCommand = []string{"sh", "-c", "test -f widgets.yaml && echo post > post.txt"}
	_, err := NewService(zerolog.Nop()).RunModel(context.Background(), model)
	require.NoError(t, err)

	for _, f := range []string{"pre.txt", "post.txt"} {
		assert.FileExists(t, filepath.Join(model.OutputDir(), f))
	}

	failing := newModel(t)
	failing.PreCommand = []string{"false"}
	_, err = NewService(zerolog.Nop()).RunModel(context.Background(), failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pre-command (false) failed")
	assert.NoFileExists(t, failing.Output)
}

func TestRunModelCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewService(zerolog.Nop()).RunModel(ctx, newModel(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransformFromConfig(t *testing.T) {
	dir := t.TempDir()
	input, err := filepath.Abs(widgets)
	require.NoError(t, err)
	configPath := filepath.Join(dir, "fluentnamer.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
models:
  - name: first
    input: %[1]s
    output: %[2]s/first.yaml
  - name: second
    input: %[1]s
    output: %[2]s/second.json
    clientName: SecondClient
`, input, dir)), 0o644))

	require.NoError(t, TransformFromConfig(configPath))
	assert.FileExists(t, filepath.Join(dir, "first.yaml"))
	second, err := codemodel.ReadFile(filepath.Join(dir, "second.json"))
	require.NoError(t, err)
	assert.Equal(t, "SecondClient", second.Name)

	require.NoError(t, os.Remove(filepath.Join(dir, "first.yaml")))
	require.NoError(t, TransformFromConfig(configPath, "second"))
	assert.NoFileExists(t, filepath.Join(dir, "first.yaml"))

	err = TransformFromConfig(configPath, "third")
	assert.ErrorContains(t, err, `model "third" not found`)
}

func TestTransformOverrides(t *testing.T) {
	output := filepath.Join(t.TempDir(), "widgets.yaml")
	err := TransformModel(TransformModelOptions{
		Input:  widgets,
		Output: output,
		Overrides: config.Transform{
			RemoveOperationGroup:       config.NameList{"Widgets"},
			NameForUngroupedOperations: "ResourceProviders",
		},
	})
	require.NoError(t, err)

	m, err := codemodel.ReadFile(output)
	require.NoError(t, err)
	var groups []string
	for _, og := range m.OperationGroups {
		groups = append(groups, og.Name)
	}
	assert.Equal(t, []string{"ResourceProviders"}, groups)
}

func TestTransformRequiresInput(t *testing.T) {
	err := NewService(zerolog.Nop()).Transform(context.Background(), TransformOptions{})
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()
	codeModel := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(codeModel, []byte("name: Client\n"), 0o644))

	tests := []struct {
		name  string
		model config.Model
		want  string
	}{
		{"explicit", config.Model{Input: codeModel, InputFormat: config.InputOpenAPI}, config.InputOpenAPI},
		{"url", config.Model{Input: "https://example.com/api.json"}, config.InputOpenAPI},
		{"openapi document", config.Model{Input: widgets}, config.InputOpenAPI},
		{"swagger document", config.Model{Input: "../openapi/testdata/gadgets.json"}, config.InputOpenAPI},
		{"code model", config.Model{Input: codeModel}, config.InputCodeModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat(config.Model{Input: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output string
		format codemodel.Format
		want   string
	}{
		{"out/model.yaml", codemodel.FormatYAML, "out/model.yaml"},
		{"out/model.yml", codemodel.FormatYAML, "out/model.yml"},
		{"out/model.yaml", codemodel.FormatJSON, "out/model.json"},
		{"out/model.json", codemodel.FormatYAML, "out/model.yaml"},
		{"out/model", codemodel.FormatJSON, "out/model.json"},
		{"out/model.v1", codemodel.FormatYAML, "out/model.v1.yaml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutputPath(tt.output, tt.format), tt.output)
	}
}

func TestValidateSpec(t *testing.T) {
	assert.NoError(t, ValidateSpec(widgets))

	model := newModel(t)
	_, err := NewService(zerolog.Nop()).RunModel(context.Background(), model)
	require.NoError(t, err)
	assert.NoError(t, ValidateSpec(model.Output))

	broken := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte(`name: Client
schemas:
  - id: s1
    type: object
    name: Foo
    properties:
      - name: bar
        serializedName: bar
        schema: s9
`), 0o644))
	assert.ErrorIs(t, ValidateSpec(broken), codemodel.ErrUnknownSchema)
}

func TestRegistry(t *testing.T) {
	r := NewService(zerolog.Nop()).GetRegistry()
	assert.Equal(t, []string{"json", "report", "yaml"}, r.GetAvailableTypes())

	e, ok := r.Get("yaml")
	require.True(t, ok)
	assert.Equal(t, "yaml", e.GetType())
	_, ok = r.Get("go")
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	model := config.Model{Input: widgets, Output: filepath.Join(dir, "unused.yaml"), Transform: config.DefaultTransform()}
	result, err := NewService(zerolog.Nop()).Preview(context.Background(), model)
	require.NoError(t, err)

	assert.NotSame(t, result.Input, result.Output)
	assert.True(t, names(result.Output)["WidgetsCreateOrUpdateRequestBody"])
	assert.NoFileExists(t, model.Output)
}
