package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*
var templatesFS embed.FS

const summaryTemplate = "summary.md.gotmpl"

func newTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"code": func(s string) string { return "`" + s + "`" },
		"delta": func(c TypeCount) string {
			switch d := c.After - c.Before; {
			case d > 0:
				return fmt.Sprintf("+%d", d)
			case d < 0:
				return fmt.Sprintf("%d", d)
			}
			return ""
		},
	}
	// Merge sprig functions
	for k, v := range sprig.TxtFuncMap() {
		funcMap[k] = v
	}

	content, err := templatesFS.ReadFile("templates/" + summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", summaryTemplate, err)
	}
	tmpl, err := template.New(summaryTemplate).Funcs(funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", summaryTemplate, err)
	}
	return tmpl, nil
}

// Render writes the markdown report of s to w
func Render(w io.Writer, s *Summary) error {
	tmpl, err := newTemplate()
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, s); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", summaryTemplate, err)
	}
	return nil
}

// WriteFile renders the report to path, creating its directory
func WriteFile(path string, s *Summary) error {
	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
