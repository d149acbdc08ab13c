package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/utils"
)

// LanguageNaming turns names into identifiers: PascalCase for the client, schemas
// and operation groups, camelCase for properties, operations and parameters.
// Serialized names are left alone.
type LanguageNaming struct {
	log zerolog.Logger
}

// NewLanguageNaming creates the pass
func NewLanguageNaming(log zerolog.Logger) *LanguageNaming {
	return &LanguageNaming{log: log.With().Str("pass", "language-naming").Logger()}
}

// Name implements Pass
func (n *LanguageNaming) Name() string { return "language-naming" }

// Process implements Pass
func (n *LanguageNaming) Process(m *codemodel.CodeModel) {
	renamed := 0
	apply := func(name *string, fn func(string) string) {
		if *name == "" {
			return
		}
		if to := fn(*name); to != "" && to != *name {
			n.log.Debug().Str("from", *name).Str("to", to).Msg("Rename")
			*name = to
			renamed++
		}
	}

	apply(&m.Name, utils.PascalIdentifier)
	for _, s := range m.LiveSchemas() {
		if s.External {
			continue
		}
		apply(&s.Name, utils.PascalIdentifier)
		for _, p := range s.Properties {
			apply(&p.Name, utils.CamelIdentifier)
		}
	}

	seen := map[*codemodel.Parameter]bool{}
	param := func(p *codemodel.Parameter) {
		if !seen[p] {
			seen[p] = true
			apply(&p.Name, utils.CamelIdentifier)
		}
	}
	for _, p := range m.GlobalParameters {
		param(p)
	}
	for _, og := range m.OperationGroups {
		apply(&og.Name, utils.PascalIdentifier)
		for _, op := range og.Operations {
			apply(&op.Name, utils.CamelIdentifier)
			for _, p := range op.AllParameters() {
				param(p)
			}
			for _, p := range op.SignatureParameters {
				param(p)
			}
		}
	}
	n.log.Info().Int("renamed", renamed).Msg("Applied language naming")
}
