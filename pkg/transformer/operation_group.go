package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
)

// OperationGroupFilter drops whole operation groups by name
type OperationGroupFilter struct {
	remove config.NameList
	log    zerolog.Logger
}

// NewOperationGroupFilter creates the pass
func NewOperationGroupFilter(remove config.NameList, log zerolog.Logger) *OperationGroupFilter {
	return &OperationGroupFilter{remove: remove, log: log.With().Str("pass", "operation-group-filter").Logger()}
}

// Name implements Pass
func (f *OperationGroupFilter) Name() string { return "operation-group-filter" }

// Process implements Pass
func (f *OperationGroupFilter) Process(m *codemodel.CodeModel) {
	if len(f.remove) == 0 {
		return
	}
	kept := m.OperationGroups[:0]
	for _, og := range m.OperationGroups {
		if f.remove.Contains(og.Name) {
			f.log.Info().Str("group", og.Name).Msg("Remove operation group")
			continue
		}
		kept = append(kept, og)
	}
	m.OperationGroups = kept
}

// OperationGroupRenamer renames operation groups by exact name
type OperationGroupRenamer struct {
	renames config.RenameMap
	log     zerolog.Logger
}

// NewOperationGroupRenamer creates the pass
func NewOperationGroupRenamer(renames config.RenameMap, log zerolog.Logger) *OperationGroupRenamer {
	return &OperationGroupRenamer{renames: renames, log: log.With().Str("pass", "operation-group-renamer").Logger()}
}

// Name implements Pass
func (r *OperationGroupRenamer) Name() string { return "operation-group-renamer" }

// Process implements Pass
func (r *OperationGroupRenamer) Process(m *codemodel.CodeModel) {
	for _, from := range r.renames.Keys() {
		to := r.renames[from]
		found := false
		for _, og := range m.OperationGroups {
			if og.Name == from {
				r.log.Info().Str("from", from).Str("to", to).Msg("Rename operation group")
				og.Name = to
				found = true
			}
		}
		if !found {
			r.log.Warn().Str("group", from).Msg("Operation group not found")
		}
	}
}

// SchemaRenamer renames object and enum schemas by exact name
type SchemaRenamer struct {
	renames config.RenameMap
	log     zerolog.Logger
}

// NewSchemaRenamer creates the pass
func NewSchemaRenamer(renames config.RenameMap, log zerolog.Logger) *SchemaRenamer {
	return &SchemaRenamer{renames: renames, log: log.With().Str("pass", "schema-renamer").Logger()}
}

// Name implements Pass
func (r *SchemaRenamer) Name() string { return "schema-renamer" }

// Process implements Pass
func (r *SchemaRenamer) Process(m *codemodel.CodeModel) {
	for _, from := range r.renames.Keys() {
		to := r.renames[from]
		s := m.FindSchema(from, codemodel.TypeObject, codemodel.TypeChoice, codemodel.TypeSealedChoice)
		if s == nil {
			r.log.Warn().Str("schema", from).Msg("Schema not found")
			continue
		}
		r.log.Info().Str("from", from).Str("to", to).Msg("Rename schema")
		s.Name = to
	}
}
