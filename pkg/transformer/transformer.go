// Package transformer rewrites a code model before code emission: it normalizes
// names, infers canonical resource and error base types, renames well-known
// operations, resolves naming conflicts and prunes unreferenced schemas.
//
// The passes run in a fixed order split in two phases:
//
//	m := codemodel.New("Client")
//	t := transformer.New(config.DefaultTransform(), logger)
//	t.Transform(m) // PreTransform, language naming, PostTransform
//
// Every pass mutates the model in place and keeps parent/child relations symmetric.
package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
)

// Pass is a single in-place rewrite of a code model
type Pass interface {
	// Name identifies the pass in logs
	Name() string
	// Process rewrites the model
	Process(m *codemodel.CodeModel)
}

type passFunc struct {
	name string
	fn   func(m *codemodel.CodeModel)
}

func (p passFunc) Name() string                   { return p.name }
func (p passFunc) Process(m *codemodel.CodeModel) { p.fn(m) }

// Transformer orchestrates the passes
type Transformer struct {
	settings config.Transform
	log      zerolog.Logger
}

// New creates a transformer. Unset settings take their defaults.
func New(settings config.Transform, log zerolog.Logger) *Transformer {
	defaults := config.DefaultTransform()
	if settings.OperationGroupSuffix == "" {
		settings.OperationGroupSuffix = defaults.OperationGroupSuffix
	}
	if settings.CleanupMaxPasses <= 0 {
		settings.CleanupMaxPasses = defaults.CleanupMaxPasses
	}
	return &Transformer{settings: settings, log: log}
}

// Transform runs the whole pipeline
func (t *Transformer) Transform(m *codemodel.CodeModel) *codemodel.CodeModel {
	t.PreTransform(m)
	t.Naming(m)
	t.PostTransform(m)
	return m
}

// Naming applies language naming conventions when they are enabled
func (t *Transformer) Naming(m *codemodel.CodeModel) *codemodel.CodeModel {
	if t.settings.LanguageNamingEnabled() {
		t.run(m, NewLanguageNaming(t.log))
	}
	return m
}

// PreTransform runs the passes that prepare names and parameters
func (t *Transformer) PreTransform(m *codemodel.CodeModel) *codemodel.CodeModel {
	t.run(m, t.PrePasses()...)
	return m
}

// PostTransform runs the passes that normalize the model for emission
func (t *Transformer) PostTransform(m *codemodel.CodeModel) *codemodel.CodeModel {
	t.run(m, t.PostPasses()...)
	return m
}

// PrePasses returns the pre-transform passes in execution order
func (t *Transformer) PrePasses() []Pass {
	return []Pass{
		passFunc{"remove-xml", t.removeXMLFormat},
		passFunc{"deduplicate-operations", t.deduplicateOperations},
		passFunc{"normalize-parameter-location", t.normalizeParameterLocation},
		passFunc{"rename-ungrouped-operation-group", t.renameUngroupedOperationGroup},
		NewSchemaNameNormalization(t.settings.NamingOverride, t.settings.DeduplicateAnonymousEnums, t.log),
		NewConstantSchemaOptimization(t.log),
		passFunc{"rename-host-parameter", t.renameHostParameter},
		passFunc{"subscription-id-uuid", t.transformSubscriptionIDUUID},
	}
}

// PostPasses returns the post-transform passes in execution order
func (t *Transformer) PostPasses() []Pass {
	passes := []Pass{
		NewOperationGroupFilter(t.settings.RemoveOperationGroup, t.log),
		NewOperationGroupRenamer(t.settings.RenameOperationGroup, t.log),
		NewNamingConflictResolver(t.settings.OperationGroupSuffix, t.log),
		NewSchemaRenamer(t.settings.RenameModel, t.log),
		NewOperationNameNormalization(t.log),
		NewResourceTypeNormalization(t.log),
		NewErrorTypeNormalization(t.log),
		NewResponseStatusCodeNormalization(t.log),
	}
	if t.settings.ResourcePropertyAsSubResource {
		passes = append(passes, NewResourcePropertyNormalization(t.log))
	}
	return append(passes, NewSchemaCleanup(t.settings.PreserveModel, t.settings.CleanupMaxPasses, t.log))
}

func (t *Transformer) run(m *codemodel.CodeModel, passes ...Pass) {
	for _, p := range passes {
		t.log.Debug().Str("pass", p.Name()).Msg("Run pass")
		p.Process(m)
	}
}
