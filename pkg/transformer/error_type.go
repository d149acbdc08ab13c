package transformer

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// ErrorType classifies the shape of an exception schema
type ErrorType int

const (
	ErrorTypeGeneric ErrorType = iota
	ErrorTypeManagementError
	ErrorTypeSubclassManagementError
)

// ClassifyErrorFields matches the field names of an error schema against the management error shape
func ClassifyErrorFields(fields map[string]bool) ErrorType {
	all := len(fields) > 0
	for f := range fields {
		if !inFields(f, managementErrorFields) {
			all = false
			break
		}
	}
	switch {
	case all:
		return ErrorTypeManagementError
	case fields["code"] && fields["message"]:
		return ErrorTypeSubclassManagementError
	default:
		return ErrorTypeGeneric
	}
}

// ErrorTypeNormalization maps exception schemas onto the canonical ManagementError class
type ErrorTypeNormalization struct {
	log zerolog.Logger
}

// NewErrorTypeNormalization creates the pass
func NewErrorTypeNormalization(log zerolog.Logger) *ErrorTypeNormalization {
	return &ErrorTypeNormalization{log: log.With().Str("pass", "error-type-normalization").Logger()}
}

// Name implements Pass
func (n *ErrorTypeNormalization) Name() string { return "error-type-normalization" }

// Process implements Pass
func (n *ErrorTypeNormalization) Process(m *codemodel.CodeModel) {
	for _, wrapper := range exceptionSchemas(m) {
		if m.Schema(wrapper.ID) == nil {
			continue
		}
		errorSchema := wrapper
		if p := errorProperty(wrapper); p != nil {
			if s := m.Schema(p.Schema); s != nil && s.Type == codemodel.TypeObject {
				errorSchema = s
			}
		}

		switch ClassifyErrorFields(errorSchema.PropertyNames()) {
		case ErrorTypeManagementError:
			n.normalizeManagementError(m, wrapper, errorSchema)
		case ErrorTypeSubclassManagementError:
			n.normalizeSubclassError(m, wrapper, errorSchema)
		}
	}
}

func exceptionSchemas(m *codemodel.CodeModel) []*codemodel.Schema {
	seen := map[codemodel.SchemaID]bool{}
	var out []*codemodel.Schema
	for _, op := range m.Operations() {
		for _, r := range op.Exceptions {
			s := m.Schema(r.Schema)
			if s == nil || s.Type != codemodel.TypeObject || seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

func errorProperty(s *codemodel.Schema) *codemodel.Property {
	for _, p := range s.Properties {
		if strings.EqualFold(p.SerializedName, "error") {
			return p
		}
	}
	return nil
}

func (n *ErrorTypeNormalization) normalizeManagementError(m *codemodel.CodeModel, wrapper, errorSchema *codemodel.Schema) {
	n.log.Info().Str("schema", wrapper.Name).Str("to", managementErrorName).Msg("Rename error schema")
	wrapper.Name = managementErrorName
	errorSchema.Name = managementErrorName
	errorSchema.Properties = cloneProperties(canonicalSchema(m, managementErrorName).Properties)

	if wrapper.ID != errorSchema.ID {
		if n.hasNonExceptionChildren(m, wrapper) {
			n.moveErrorPropertyToChildren(m, wrapper)
		} else {
			m.MoveChildren(wrapper.ID, errorSchema.ID)
		}
	}
	n.normalizeSubclasses(m, errorSchema, map[codemodel.SchemaID]bool{})
}

func (n *ErrorTypeNormalization) hasNonExceptionChildren(m *codemodel.CodeModel, wrapper *codemodel.Schema) bool {
	for _, c := range m.Resolve(wrapper.Children.All) {
		if c.HasUsage(codemodel.UsageInput, codemodel.UsageOutput) {
			return true
		}
	}
	return false
}

// moveErrorPropertyToChildren detaches the children used outside exceptions from
// the wrapper, declaring the wrapper's error property on them directly. A
// descendant that still inherits an error property from another ancestor is
// left alone.
func (n *ErrorTypeNormalization) moveErrorPropertyToChildren(m *codemodel.CodeModel, wrapper *codemodel.Schema) {
	errProp := errorProperty(wrapper)
	for _, c := range m.Resolve(append([]codemodel.SchemaID(nil), wrapper.Children.All...)) {
		if !c.HasUsage(codemodel.UsageInput, codemodel.UsageOutput) {
			continue
		}
		n.log.Info().Str("schema", c.Name).Str("from", wrapper.Name).Msg("Move error property onto child")
		m.RemoveParent(c.ID, wrapper.ID)
		if errProp != nil && !declaresError(m, c) {
			c.Properties = append(c.Properties, errProp.Clone())
		}
	}
}

// declaresError reports whether the schema or one of its ancestors has an error property
func declaresError(m *codemodel.CodeModel, s *codemodel.Schema) bool {
	for _, p := range declaredProperties(m, s) {
		if strings.EqualFold(p.SerializedName, "error") {
			return true
		}
	}
	return false
}

func (n *ErrorTypeNormalization) normalizeSubclassError(m *codemodel.CodeModel, wrapper, errorSchema *codemodel.Schema) {
	dummy := canonicalSchema(m, managementErrorName)
	n.log.Info().Str("schema", errorSchema.Name).Str("to", dummy.Name).Msg("Change parent")
	m.SetParents(errorSchema.ID, dummy.ID)
	visited := map[codemodel.SchemaID]bool{}
	n.filterProperties(m, errorSchema, visited)

	if wrapper.ID != errorSchema.ID {
		// the wrapper takes over the nested schema entirely
		n.log.Info().Str("schema", wrapper.Name).Str("to", errorSchema.Name).Msg("Merge nested error schema into wrapper")
		wrapper.Name = errorSchema.Name
		wrapper.Description = errorSchema.Description
		wrapper.Properties = cloneProperties(errorSchema.Properties)
		m.SetParents(wrapper.ID, dummy.ID)
		m.MoveChildren(errorSchema.ID, wrapper.ID)
		replaceReferences(m, errorSchema.ID, wrapper.ID)
		for _, u := range errorSchema.Usage {
			wrapper.AddUsage(u)
		}
		m.RemoveSchema(errorSchema.ID)
		errorSchema = wrapper
		visited[wrapper.ID] = true
	}
	n.normalizeSubclasses(m, errorSchema, visited)
}

func (n *ErrorTypeNormalization) normalizeSubclasses(m *codemodel.CodeModel, s *codemodel.Schema, visited map[codemodel.SchemaID]bool) {
	for _, c := range m.Resolve(append([]codemodel.SchemaID(nil), s.Children.Immediate...)) {
		n.filterProperties(m, c, visited)
	}
}

// filterProperties drops the fields ManagementError provides and marks the rest read-only
func (n *ErrorTypeNormalization) filterProperties(m *codemodel.CodeModel, s *codemodel.Schema, visited map[codemodel.SchemaID]bool) {
	if visited[s.ID] {
		return
	}
	visited[s.ID] = true

	var kept []*codemodel.Property
	for _, p := range s.Properties {
		switch {
		case p.SerializedName == "details":
			n.normalizeErrorDetailType(m, p, visited)
			if elem := m.ElementOf(p.Schema); elem != nil && elem.Name != managementErrorName {
				p.ReadOnly = true
				kept = append(kept, p)
			}
		case !inFields(p.SerializedName, managementErrorFields):
			p.ReadOnly = true
			kept = append(kept, p)
		}
	}
	s.Properties = kept
}

func (n *ErrorTypeNormalization) normalizeErrorDetailType(m *codemodel.CodeModel, details *codemodel.Property, visited map[codemodel.SchemaID]bool) {
	if ds := m.Schema(details.Schema); ds != nil && ds.Type == codemodel.TypeArray {
		if elem := m.Schema(ds.ElementType); elem != nil && elem.Type == codemodel.TypeObject {
			if first := m.Schema(firstParent(elem)); first != nil && first.Name == managementErrorName {
				return
			}
			if ClassifyErrorFields(elem.PropertyNames()) == ErrorTypeManagementError {
				n.log.Info().Str("schema", elem.Name).Str("to", managementErrorName).Msg("Rename error detail schema")
				elem.Name = managementErrorName
				elem.Properties = cloneProperties(canonicalSchema(m, managementErrorName).Properties)
			} else {
				m.SetParents(elem.ID, canonicalSchema(m, managementErrorName).ID)
				n.filterProperties(m, elem, visited)
			}
			return
		}
	}
	details.Schema = managementErrorDetails(m).ID
}

func firstParent(s *codemodel.Schema) codemodel.SchemaID {
	if len(s.Parents.Immediate) == 0 {
		return codemodel.NoSchema
	}
	return s.Parents.Immediate[0]
}

// managementErrorDetails is the shared array-of-ManagementError schema
func managementErrorDetails(m *codemodel.CodeModel) *codemodel.Schema {
	if s := m.FindExternal(managementErrorDetailsName); s != nil && s.Type == codemodel.TypeArray {
		return s
	}
	s := &codemodel.Schema{
		Type:        codemodel.TypeArray,
		Name:        managementErrorDetailsName,
		ElementType: canonicalSchema(m, managementErrorName).ID,
		External:    true,
	}
	m.AddSchema(s)
	return s
}
