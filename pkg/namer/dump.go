package namer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// dumper writes a snapshot of the model after each stage. A nil dumper writes nothing.
type dumper struct {
	dir string
	log zerolog.Logger
}

func newDumper(enabled bool, log zerolog.Logger) (*dumper, error) {
	if !enabled {
		return nil, nil
	}
	dir := filepath.Join(os.TempDir(), "code-model-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dump directory: %w", err)
	}
	log.Info().Str("dir", dir).Msg("Dumping code model stages")
	return &dumper{dir: dir, log: log}, nil
}

// Dir returns the dump directory, empty when dumping is off
func (d *dumper) Dir() string {
	if d == nil {
		return ""
	}
	return d.dir
}

// Dump writes <stage>.yaml
func (d *dumper) Dump(stage string, m *codemodel.CodeModel) error {
	if d == nil {
		return nil
	}
	path := filepath.Join(d.dir, stage+".yaml")
	if err := codemodel.WriteFile(m, path); err != nil {
		return fmt.Errorf("failed to dump %s stage: %w", stage, err)
	}
	d.log.Debug().Str("stage", stage).Str("path", path).Msg("Dumped code model")
	return nil
}
