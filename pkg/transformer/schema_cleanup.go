package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/config"
)

// SchemaCleanup removes object and enum schemas nothing refers to any more.
// Every sweep only looks at direct references, so a schema kept alive by a schema
// removed in one sweep goes in the next; sweeps repeat until nothing changes or
// the bound is reached.
type SchemaCleanup struct {
	preserve  config.NameList
	maxPasses int
	log       zerolog.Logger
}

// NewSchemaCleanup creates the pass
func NewSchemaCleanup(preserve config.NameList, maxPasses int, log zerolog.Logger) *SchemaCleanup {
	if maxPasses <= 0 {
		maxPasses = config.DefaultTransform().CleanupMaxPasses
	}
	return &SchemaCleanup{preserve: preserve, maxPasses: maxPasses, log: log.With().Str("pass", "schema-cleanup").Logger()}
}

// Name implements Pass
func (c *SchemaCleanup) Name() string { return "schema-cleanup" }

// Process implements Pass
func (c *SchemaCleanup) Process(m *codemodel.CodeModel) {
	for i := 0; i < c.maxPasses; i++ {
		if !c.sweep(m) {
			return
		}
	}
	c.log.Debug().Int("passes", c.maxPasses).Msg("Stopped before reaching a fixed point")
}

// Removed returns the live candidates nothing refers to. It does not modify the model.
func (c *SchemaCleanup) Removed(m *codemodel.CodeModel) []*codemodel.Schema {
	used := usedSchemas(m)
	var out []*codemodel.Schema
	for _, s := range removalCandidates(m) {
		if !used[s.ID] && !c.preserve.Contains(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

func (c *SchemaCleanup) sweep(m *codemodel.CodeModel) bool {
	unused := c.Removed(m)
	if len(unused) == 0 {
		return false
	}
	for _, s := range unused {
		c.log.Info().Str("schema", s.Name).Str("type", string(s.Type)).Msg("Remove unused schema")
		m.RemoveSchema(s.ID)
	}
	c.removeOrphanCollections(m)
	c.pruneDanglingProperties(m)
	return true
}

// removalCandidates are the enums, plus the leaf objects whose parents are all canonical resources
func removalCandidates(m *codemodel.CodeModel) []*codemodel.Schema {
	var out []*codemodel.Schema
	for _, s := range m.ObjectSchemas() {
		if len(s.Children.Immediate) > 0 {
			continue
		}
		candidate := true
		for _, p := range m.Resolve(s.Parents.Immediate) {
			if p.Type != codemodel.TypeObject || !isCanonicalResource(p) {
				candidate = false
				break
			}
		}
		if candidate {
			out = append(out, s)
		}
	}
	return append(out, m.EnumSchemas()...)
}

// usedSchemas collects the schemas directly referred to by operations, global
// parameters, object properties, discriminators and collection parents.
// Collections are transparent: a reference to an array also uses its element.
func usedSchemas(m *codemodel.CodeModel) map[codemodel.SchemaID]bool {
	used := map[codemodel.SchemaID]bool{}
	var use func(id codemodel.SchemaID)
	use = func(id codemodel.SchemaID) {
		s := m.Schema(id)
		if s == nil || used[id] {
			return
		}
		used[id] = true
		if s.IsCollection() {
			use(s.ElementType)
		}
	}

	for _, p := range m.GlobalParameters {
		use(p.Schema)
	}
	for _, op := range m.Operations() {
		for _, p := range op.AllParameters() {
			use(p.Schema)
		}
		for _, p := range op.SignatureParameters {
			use(p.Schema)
		}
		for _, r := range append(append([]*codemodel.Response(nil), op.Responses...), op.Exceptions...) {
			use(r.Schema)
			for _, h := range r.Headers {
				use(h.Schema)
			}
		}
	}
	for _, s := range m.LiveSchemas() {
		if s.Type != codemodel.TypeObject {
			continue
		}
		if !runtimeProvided(s) {
			for _, p := range s.Properties {
				// a schema referring to itself does not keep itself alive
				if innermostElement(m, p.Schema) == s.ID {
					continue
				}
				use(p.Schema)
			}
		}
		if s.Discriminator != nil {
			for _, id := range s.Discriminator.Values {
				use(id)
			}
		}
		for _, p := range m.Resolve(s.Parents.Immediate) {
			if p.IsCollection() {
				use(p.ID)
			}
		}
	}
	return used
}

// innermostElement unwraps arrays and dictionaries down to their element schema
func innermostElement(m *codemodel.CodeModel, id codemodel.SchemaID) codemodel.SchemaID {
	seen := map[codemodel.SchemaID]bool{}
	for {
		s := m.Schema(id)
		if s == nil || !s.IsCollection() || seen[id] {
			return id
		}
		seen[id] = true
		id = s.ElementType
	}
}

// runtimeProvided objects map onto runtime library types, so their properties keep nothing alive
func runtimeProvided(s *codemodel.Schema) bool {
	return s.Name == systemDataName || s.Name == managementErrorName
}

// removeOrphanCollections drops listed arrays and dictionaries whose element was removed
func (c *SchemaCleanup) removeOrphanCollections(m *codemodel.CodeModel) {
	for changed := true; changed; {
		changed = false
		for _, s := range append(m.Resolve(m.Schemas.Arrays), m.Resolve(m.Schemas.Dictionaries)...) {
			if s.ElementType != codemodel.NoSchema && m.Schema(s.ElementType) == nil {
				c.log.Debug().Str("schema", s.Name).Msg("Remove collection of removed schema")
				m.RemoveSchema(s.ID)
				changed = true
			}
		}
	}
}

func (c *SchemaCleanup) pruneDanglingProperties(m *codemodel.CodeModel) {
	for _, s := range m.LiveSchemas() {
		if len(s.Properties) == 0 {
			continue
		}
		kept := s.Properties[:0]
		for _, p := range s.Properties {
			if p.Schema != codemodel.NoSchema && m.Schema(p.Schema) == nil {
				c.log.Info().Str("schema", s.Name).Str("property", p.SerializedName).Msg("Remove property of removed schema")
				continue
			}
			kept = append(kept, p)
		}
		s.Properties = kept
	}
}
