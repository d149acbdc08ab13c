package transformer

import (
	"strings"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

const (
	subResourceName       = "SubResource"
	proxyResourceName     = "ProxyResource"
	resourceName          = "Resource"
	trackedResourceName   = "TrackedResource"
	azureResourceName     = "AzureResource"
	extensionResourceName = "ExtensionResource"
	autoGeneratedSuffix   = "AutoGenerated"

	managementErrorName        = "ManagementError"
	managementErrorDetailsName = "ManagementErrorDetails"
	systemDataName             = "SystemData"
)

var (
	subResourceFields     = []string{"id"}
	proxyResourceFields   = []string{"id", "name", "type"}
	resourceFields        = []string{"id", "name", "type", "location", "tags"}
	managementErrorFields = []string{"code", "message", "target", "details", "additionalInfo"}
)

// ResourceType is one of the canonical resource shapes
type ResourceType int

const (
	ResourceTypeNone ResourceType = iota
	ResourceTypeSubResource
	ResourceTypeProxyResource
	ResourceTypeResource
)

// ClassName is the name of the runtime class for the shape
func (r ResourceType) ClassName() string {
	switch r {
	case ResourceTypeSubResource:
		return subResourceName
	case ResourceTypeProxyResource:
		return proxyResourceName
	case ResourceTypeResource:
		return resourceName
	default:
		return ""
	}
}

// Fields returns the canonical field names of the shape
func (r ResourceType) Fields() []string {
	switch r {
	case ResourceTypeSubResource:
		return subResourceFields
	case ResourceTypeProxyResource:
		return proxyResourceFields
	case ResourceTypeResource:
		return resourceFields
	default:
		return nil
	}
}

func (r ResourceType) String() string {
	if r == ResourceTypeNone {
		return "None"
	}
	return r.ClassName()
}

// ClassifyFields matches a set of field names against the canonical shapes,
// largest first, by containment.
func ClassifyFields(fields map[string]bool) ResourceType {
	switch {
	case hasAll(fields, resourceFields):
		return ResourceTypeResource
	case hasAll(fields, proxyResourceFields):
		return ResourceTypeProxyResource
	case hasAll(fields, subResourceFields):
		return ResourceTypeSubResource
	default:
		return ResourceTypeNone
	}
}

// schemaResourceType resolves the canonical shape a schema stands for. Well-known
// names map directly; the generic names are classified by their declared fields.
func schemaResourceType(m *codemodel.CodeModel, s *codemodel.Schema) ResourceType {
	name := s.Name
	switch {
	case name == subResourceName || strings.HasPrefix(name, subResourceName+autoGeneratedSuffix):
		return ResourceTypeSubResource
	case name == proxyResourceName || name == extensionResourceName || strings.HasPrefix(name, proxyResourceName+autoGeneratedSuffix):
		return ResourceTypeProxyResource
	case name == trackedResourceName || strings.HasPrefix(name, trackedResourceName+autoGeneratedSuffix):
		return ResourceTypeResource
	case name == resourceName || strings.HasPrefix(name, resourceName+autoGeneratedSuffix),
		name == azureResourceName || strings.HasPrefix(name, azureResourceName+autoGeneratedSuffix):
		return ClassifyFields(fieldNames(declaredProperties(m, s)))
	default:
		return ResourceTypeNone
	}
}

// isCanonicalResource reports whether the schema is one of the canonical resource classes
func isCanonicalResource(s *codemodel.Schema) bool {
	switch s.Name {
	case resourceName, proxyResourceName, subResourceName:
		return true
	}
	return false
}

// declaredProperties returns the properties of the schema and of all its ancestors
func declaredProperties(m *codemodel.CodeModel, s *codemodel.Schema) []*codemodel.Property {
	props := append([]*codemodel.Property(nil), s.Properties...)
	for _, p := range m.Resolve(s.Parents.All) {
		props = append(props, p.Properties...)
	}
	return props
}

func fieldNames(props []*codemodel.Property) map[string]bool {
	names := make(map[string]bool, len(props))
	for _, p := range props {
		names[p.SerializedName] = true
	}
	return names
}

func hasAll(fields map[string]bool, want []string) bool {
	for _, f := range want {
		if !fields[f] {
			return false
		}
	}
	return true
}

func inFields(name string, fields []string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// canonicalSchema returns the shared external schema for a canonical class, creating it on first use
func canonicalSchema(m *codemodel.CodeModel, name string) *codemodel.Schema {
	if s := m.FindExternal(name); s != nil && s.Type == codemodel.TypeObject {
		return s
	}
	s := &codemodel.Schema{
		Type:        codemodel.TypeObject,
		Name:        name,
		External:    true,
		Description: canonicalDescriptions[name],
	}
	m.AddSchema(s)
	s.Properties = canonicalProperties(m, name)
	return s
}

var canonicalDescriptions = map[string]string{
	subResourceName:     "Reference to another sub-resource.",
	proxyResourceName:   "The resource model definition for a Azure Resource Manager proxy resource.",
	resourceName:        "The resource model definition for an Azure Resource Manager tracked top level resource.",
	managementErrorName: "The details of a management error.",
}

func canonicalProperties(m *codemodel.CodeModel, name string) []*codemodel.Property {
	str := externalPrimitive(m, "string", codemodel.TypeString)
	prop := func(serialized, description string, readOnly bool) *codemodel.Property {
		return &codemodel.Property{
			Name:           serialized,
			SerializedName: serialized,
			Schema:         str.ID,
			ReadOnly:       readOnly,
			Description:    description,
		}
	}
	id := prop("id", "Fully qualified resource Id for the resource.", true)
	proxy := []*codemodel.Property{
		id,
		prop("name", "The name of the resource.", true),
		prop("type", "The type of the resource.", true),
	}

	switch name {
	case subResourceName:
		sub := prop("id", "Resource Id.", false)
		return []*codemodel.Property{sub}
	case proxyResourceName:
		return proxy
	case resourceName:
		location := prop("location", "The geo-location where the resource lives.", false)
		location.Required = true
		location.Mutability = []string{"read", "create"}
		tags := &codemodel.Property{
			Name:           "tags",
			SerializedName: "tags",
			Schema:         externalDictionary(m, str).ID,
			Description:    "Resource tags.",
			Mutability:     []string{"read", "create", "update"},
		}
		return append(proxy, location, tags)
	case managementErrorName:
		return []*codemodel.Property{
			prop("code", "The error code.", true),
			prop("message", "The error message.", true),
		}
	default:
		return nil
	}
}

func externalPrimitive(m *codemodel.CodeModel, name string, typ codemodel.SchemaType) *codemodel.Schema {
	if s := m.FindExternal(name); s != nil && s.Type == typ {
		return s
	}
	s := &codemodel.Schema{Type: typ, Name: name, External: true}
	m.AddSchema(s)
	return s
}

func externalDictionary(m *codemodel.CodeModel, element *codemodel.Schema) *codemodel.Schema {
	name := "DictionaryOf" + element.Name
	if s := m.FindExternal(name); s != nil && s.Type == codemodel.TypeDictionary {
		return s
	}
	s := &codemodel.Schema{Type: codemodel.TypeDictionary, Name: name, ElementType: element.ID, External: true}
	m.AddSchema(s)
	return s
}

// cloneProperties copies a property list so two schemas never share a Property
func cloneProperties(props []*codemodel.Property) []*codemodel.Property {
	out := make([]*codemodel.Property, 0, len(props))
	for _, p := range props {
		out = append(out, p.Clone())
	}
	return out
}
