package transformer

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// ResourceTypeNormalization rewires object schemas onto the canonical
// SubResource, ProxyResource and Resource classes.
type ResourceTypeNormalization struct {
	log zerolog.Logger
}

// NewResourceTypeNormalization creates the pass
func NewResourceTypeNormalization(log zerolog.Logger) *ResourceTypeNormalization {
	return &ResourceTypeNormalization{log: log.With().Str("pass", "resource-type-normalization").Logger()}
}

// Name implements Pass
func (n *ResourceTypeNormalization) Name() string { return "resource-type-normalization" }

// Process implements Pass
func (n *ResourceTypeNormalization) Process(m *codemodel.CodeModel) {
	for _, s := range processingOrder(m.ObjectSchemas()) {
		parent := m.ObjectParent(s)
		if parent == nil {
			n.tryAdaptAsResource(m, s)
			continue
		}
		rt := schemaResourceType(m, parent)
		if rt == ResourceTypeNone {
			if parent.Name == systemDataName && s.Name != systemDataName {
				n.log.Info().Str("schema", s.Name).Str("to", systemDataName).Msg("Rename system data schema")
				s.Name = systemDataName
			}
			continue
		}

		n.adaptForParentSchema(m, s, parent, rt)
		if rt.ClassName() != parent.Name {
			n.replaceParent(m, s, parent, rt)
		}
		if s.Name == rt.ClassName() {
			// the schema is the canonical class itself
			m.SetParents(s.ID)
			s.Properties = cloneProperties(canonicalSchema(m, rt.ClassName()).Properties)
		}
	}
}

// processingOrder defers the canonical base schemas, so their subclasses are
// adapted while the bases still carry their own fields.
func processingOrder(objects []*codemodel.Schema) []*codemodel.Schema {
	var first, last []*codemodel.Schema
	for _, s := range objects {
		if isBaseResourceName(s.Name) {
			last = append(last, s)
		} else {
			first = append(first, s)
		}
	}
	return append(first, last...)
}

func isBaseResourceName(name string) bool {
	for _, base := range []string{resourceName, proxyResourceName, trackedResourceName, azureResourceName} {
		if name == base || strings.HasPrefix(name, base+autoGeneratedSuffix) {
			return true
		}
	}
	return false
}

// adaptForParentSchema pulls onto the schema the parent properties the canonical
// class will not provide: fields outside the canonical set, and canonical fields
// the parent declares as writable.
func (n *ResourceTypeNormalization) adaptForParentSchema(m *codemodel.CodeModel, s, parent *codemodel.Schema, rt ResourceType) {
	own := s.PropertyNames()
	var pulled []*codemodel.Property
	for _, p := range declaredProperties(m, parent) {
		if own[p.SerializedName] {
			continue
		}
		keep := false
		switch rt {
		case ResourceTypeSubResource:
			keep = !inFields(p.SerializedName, subResourceFields)
		case ResourceTypeProxyResource, ResourceTypeResource:
			keep = !inFields(p.SerializedName, rt.Fields()) ||
				(inFields(p.SerializedName, proxyResourceFields) && !p.ReadOnly)
		}
		if keep {
			own[p.SerializedName] = true
			pulled = append(pulled, p.Clone())
		}
	}
	if len(pulled) > 0 {
		n.log.Info().Str("schema", s.Name).Str("parent", parent.Name).Int("count", len(pulled)).
			Msg("Pull properties from parent")
		s.Properties = append(pulled, s.Properties...)
	}
}

func (n *ResourceTypeNormalization) replaceParent(m *codemodel.CodeModel, s, parent *codemodel.Schema, rt ResourceType) {
	dummy := canonicalSchema(m, rt.ClassName())
	n.log.Info().Str("schema", s.Name).Str("from", parent.Name).Str("to", dummy.Name).Msg("Change parent")
	m.RemoveParent(s.ID, parent.ID)
	m.InsertParent(s.ID, dummy.ID, 0)
}

// tryAdaptAsResource gives an azure-resource schema without object parents the canonical
// parent its fields match, dropping the fields the parent now provides.
func (n *ResourceTypeNormalization) tryAdaptAsResource(m *codemodel.CodeModel, s *codemodel.Schema) {
	if !s.AzureResource || schemaResourceType(m, s) != ResourceTypeNone {
		return
	}
	var rt ResourceType
	switch fields := s.PropertyNames(); {
	case hasAll(fields, resourceFields):
		rt = ResourceTypeResource
	case hasAll(fields, proxyResourceFields):
		rt = ResourceTypeProxyResource
	default:
		return
	}

	dummy := canonicalSchema(m, rt.ClassName())
	n.log.Info().Str("schema", s.Name).Str("to", dummy.Name).Msg("Add parent")
	m.InsertParent(s.ID, dummy.ID, 0)

	props := s.Properties[:0]
	for _, p := range s.Properties {
		inherited := inFields(p.SerializedName, proxyResourceFields) && p.ReadOnly
		if rt == ResourceTypeResource && (p.SerializedName == "location" || p.SerializedName == "tags") {
			inherited = true
		}
		if !inherited {
			props = append(props, p)
		}
	}
	s.Properties = props
}
