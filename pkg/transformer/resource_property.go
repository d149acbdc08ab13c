package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// ResourcePropertyNormalization replaces resource-typed properties of request
// payloads with SubResource, since a request only needs the referenced id.
type ResourcePropertyNormalization struct {
	log zerolog.Logger
}

// NewResourcePropertyNormalization creates the pass
func NewResourcePropertyNormalization(log zerolog.Logger) *ResourcePropertyNormalization {
	return &ResourcePropertyNormalization{log: log.With().Str("pass", "resource-property-normalization").Logger()}
}

// Name implements Pass
func (n *ResourcePropertyNormalization) Name() string { return "resource-property-normalization" }

// Process implements Pass
func (n *ResourcePropertyNormalization) Process(m *codemodel.CodeModel) {
	var arrayOfSubResource, dictionaryOfSubResource *codemodel.Schema
	collection := func(typ codemodel.SchemaType) *codemodel.Schema {
		sub := canonicalSchema(m, subResourceName)
		ref := &arrayOfSubResource
		name := "ArrayOf" + subResourceName
		if typ == codemodel.TypeDictionary {
			ref, name = &dictionaryOfSubResource, "DictionaryOf"+subResourceName
		}
		if *ref == nil {
			*ref = &codemodel.Schema{Type: typ, Name: name, ElementType: sub.ID}
			m.AddSchema(*ref)
		}
		return *ref
	}

	for _, s := range payloadSchemas(m) {
		for _, p := range s.Properties {
			ps := m.Schema(p.Schema)
			if ps == nil {
				continue
			}
			switch ps.Type {
			case codemodel.TypeObject:
				if isResourceShaped(m, ps) {
					n.log.Info().Str("schema", s.Name).Str("property", p.SerializedName).Str("from", ps.Name).
						Msg("Use SubResource for resource property")
					p.Schema = canonicalSchema(m, subResourceName).ID
				}
			case codemodel.TypeArray, codemodel.TypeDictionary:
				if elem := m.Schema(ps.ElementType); elem != nil && elem.Type == codemodel.TypeObject && isResourceShaped(m, elem) {
					n.log.Info().Str("schema", s.Name).Str("property", p.SerializedName).Str("from", elem.Name).
						Msg("Use SubResource collection for resource property")
					p.Schema = collection(ps.Type).ID
				}
			}
		}
	}
}

// payloadSchemas returns the object schemas of required, non-flattened request
// parameters, followed by the object schemas of their properties.
func payloadSchemas(m *codemodel.CodeModel) []*codemodel.Schema {
	seen := map[codemodel.SchemaID]bool{}
	var out []*codemodel.Schema
	add := func(s *codemodel.Schema) {
		if s != nil && s.Type == codemodel.TypeObject && !s.External && !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	for _, op := range m.Operations() {
		for _, r := range op.Requests {
			for _, p := range r.Parameters {
				if !p.Required || p.Flattened {
					continue
				}
				s := m.Schema(p.Schema)
				if s == nil || s.Type != codemodel.TypeObject {
					continue
				}
				add(s)
				for _, prop := range s.Properties {
					add(m.Schema(prop.Schema))
				}
			}
		}
	}
	return out
}

// isResourceShaped reports whether the schema stands for, or derives from, one
// of the canonical resources. SubResource itself is already minimal.
func isResourceShaped(m *codemodel.CodeModel, s *codemodel.Schema) bool {
	if s.Name == subResourceName {
		return false
	}
	if schemaResourceType(m, s) != ResourceTypeNone {
		return true
	}
	for _, p := range m.Resolve(s.Parents.All) {
		if isCanonicalResource(p) || schemaResourceType(m, p) != ResourceTypeNone {
			return true
		}
	}
	return false
}
