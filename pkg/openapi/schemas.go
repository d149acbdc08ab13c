package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cast"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/utils"
)

const schemaRefPrefix = "#/components/schemas/"

// componentName extracts the schema name from a component reference, local or external
func componentName(ref string) (string, bool) {
	i := strings.LastIndex(ref, schemaRefPrefix)
	if i < 0 {
		return "", false
	}
	return ref[i+len(schemaRefPrefix):], true
}

// schema converts a schema reference. name is given to the schema when the
// reference is inline and the conversion creates a new object, array or dictionary.
func (b *Builder) schema(ref *openapi3.SchemaRef, name string) (codemodel.SchemaID, error) {
	if ref == nil {
		return b.primitive(codemodel.TypeAny, ""), nil
	}
	if ref.Ref != "" {
		if component, ok := componentName(ref.Ref); ok {
			return b.component(component, ref.Value)
		}
	}
	if ref.Value == nil {
		return codemodel.NoSchema, fmt.Errorf("unresolved schema reference %q", ref.Ref)
	}
	if id, ok := b.inline[ref.Value]; ok {
		return id, nil
	}
	return b.convert(ref.Value, name, "")
}

// component converts a named component schema once
func (b *Builder) component(name string, value *openapi3.Schema) (codemodel.SchemaID, error) {
	if id, ok := b.components[name]; ok {
		return id, nil
	}
	if value == nil && b.doc.Components != nil {
		if ref := b.doc.Components.Schemas[name]; ref != nil {
			value = ref.Value
		}
	}
	if value == nil {
		return codemodel.NoSchema, fmt.Errorf("unknown schema %q", name)
	}
	return b.convert(value, name, name)
}

// convert creates the schema for s. key is the component name, empty for inline schemas.
func (b *Builder) convert(s *openapi3.Schema, name, key string) (codemodel.SchemaID, error) {
	switch {
	case len(s.Enum) > 0:
		return b.enum(s, name, key), nil
	case isObject(s):
		return b.object(s, name, key)
	case s.Type.Is(openapi3.TypeArray):
		return b.array(s, name, key)
	default:
		id := b.primitive(primitiveType(s), s.Format)
		if key != "" {
			b.components[key] = id
		}
		return id, nil
	}
}

// register adds the schema and records it under its component name, or under the
// inline definition when key is empty. Inline names are made unique first.
func (b *Builder) register(s *openapi3.Schema, schema *codemodel.Schema, key string) codemodel.SchemaID {
	if key == "" && schema.Type != codemodel.TypeConstant && !schema.IsEnum() {
		schema.Name = b.uniqueName(schema.Name)
		if schema.SerializedName != "" {
			schema.SerializedName = schema.Name
		}
	}
	id := b.model.AddSchema(schema)
	if key != "" {
		b.components[key] = id
	} else {
		b.inline[s] = id
	}
	return id
}

func isObject(s *openapi3.Schema) bool {
	return s.Type.Is(openapi3.TypeObject) ||
		len(s.Properties) > 0 ||
		len(s.AllOf) > 0 ||
		isDictionary(s)
}

func isDictionary(s *openapi3.Schema) bool {
	return s.AdditionalProperties.Schema != nil ||
		(s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has)
}

func (b *Builder) object(s *openapi3.Schema, name, key string) (codemodel.SchemaID, error) {
	if len(s.Properties) == 0 && len(s.AllOf) == 0 && isDictionary(s) {
		return b.dictionary(s, name, key)
	}

	formats := []string{"json"}
	if s.XML != nil {
		formats = append(formats, "xml")
	}
	schema := &codemodel.Schema{
		Type:                 codemodel.TypeObject,
		Name:                 name,
		SerializedName:       name,
		Description:          s.Description,
		Summary:              s.Title,
		SerializationFormats: formats,
		AzureResource:        cast.ToBool(s.Extensions[extAzureResource]),
		DiscriminatorValue:   cast.ToString(s.Extensions[extDiscriminatorValue]),
		Extensions:           passthroughExtensions(s.Extensions),
	}
	id := b.register(s, schema, key)
	name = schema.Name

	for i, member := range s.AllOf {
		parent, err := b.schema(member, fmt.Sprintf("Components%sAllof%d", utils.PascalIdentifier(name), i))
		if err != nil {
			return id, fmt.Errorf("%s.allOf[%d]: %w", name, i, err)
		}
		if p := b.model.Schema(parent); p != nil && p.Type == codemodel.TypeObject {
			b.model.AddParent(id, parent)
		}
	}

	required := map[string]bool{}
	for _, r := range s.Required {
		required[r] = true
	}
	for _, propName := range sortedKeys(s.Properties) {
		ref := s.Properties[propName]
		propSchema, err := b.schema(ref, utils.PascalIdentifier(name)+utils.PascalIdentifier(propName))
		if err != nil {
			return id, fmt.Errorf("%s.%s: %w", name, propName, err)
		}
		p := &codemodel.Property{
			Name:           propName,
			SerializedName: propName,
			Schema:         propSchema,
			Required:       required[propName],
		}
		if v := ref.Value; v != nil {
			p.Name = clientName(v.Extensions, propName)
			p.ReadOnly = v.ReadOnly
			p.Description = v.Description
			p.Flattened = cast.ToBool(v.Extensions[extClientFlatten])
			p.Mutability = cast.ToStringSlice(v.Extensions[extMutability])
		}
		schema.Properties = append(schema.Properties, p)
	}

	if s.Discriminator != nil {
		b.discriminators[id] = s.Discriminator
	}
	return id, nil
}

func (b *Builder) dictionary(s *openapi3.Schema, name, key string) (codemodel.SchemaID, error) {
	schema := &codemodel.Schema{Type: codemodel.TypeDictionary, Name: name, Description: s.Description}
	id := b.register(s, schema, key)
	name = schema.Name
	elem, err := b.schema(s.AdditionalProperties.Schema, "Components"+utils.PascalIdentifier(name)+"Additionalproperties")
	if err != nil {
		return id, fmt.Errorf("%s.additionalProperties: %w", name, err)
	}
	schema.ElementType = elem
	return id, nil
}

func (b *Builder) array(s *openapi3.Schema, name, key string) (codemodel.SchemaID, error) {
	schema := &codemodel.Schema{Type: codemodel.TypeArray, Name: name, Description: s.Description}
	id := b.register(s, schema, key)
	name = schema.Name
	elem, err := b.schema(s.Items, "Components"+utils.PascalIdentifier(name)+"Items")
	if err != nil {
		return id, fmt.Errorf("%s.items: %w", name, err)
	}
	schema.ElementType = elem
	return id, nil
}

// enum creates a choice, a sealed choice or, for a single fixed value, a constant.
// Inline enums without an x-ms-enum name get the next EnumN name; inline constants
// keep the name derived from their owner.
func (b *Builder) enum(s *openapi3.Schema, name, key string) codemodel.SchemaID {
	ext := readEnumExtension(s.Extensions)
	if id, ok := b.namedEnums[ext.Name]; ok && ext.Name != "" {
		if key != "" {
			b.components[key] = id
		}
		return id
	}

	values := ext.Values
	if len(values) == 0 {
		for _, v := range s.Enum {
			if v == nil {
				continue
			}
			value := fmt.Sprint(v)
			values = append(values, codemodel.ChoiceValue{Value: value, Name: value})
		}
	}
	schema := &codemodel.Schema{
		Description: s.Description,
		ChoiceType:  primitiveType(s),
	}
	if schema.ChoiceType == codemodel.TypeAny {
		schema.ChoiceType = codemodel.TypeString
	}
	switch {
	case len(values) == 1 && !ext.ModelAsString:
		schema.Type = codemodel.TypeConstant
		schema.ConstantValue = values[0].Value
	case ext.ModelAsString:
		schema.Type = codemodel.TypeChoice
		schema.Choices = values
	default:
		schema.Type = codemodel.TypeSealedChoice
		schema.Choices = values
	}

	switch {
	case ext.Name != "":
		name = ext.Name
	case key == "" && schema.Type != codemodel.TypeConstant:
		b.enumCount++
		name = fmt.Sprintf("Enum%d", b.enumCount)
	}
	schema.Name = name
	id := b.register(s, schema, key)
	if ext.Name != "" {
		b.namedEnums[ext.Name] = id
	}
	return id
}

// primitive returns the shared schema for a primitive type and format
func (b *Builder) primitive(t codemodel.SchemaType, format string) codemodel.SchemaID {
	k := string(t) + "/" + format
	if id, ok := b.primitives[k]; ok {
		return id
	}
	id := b.model.AddSchema(&codemodel.Schema{Type: t, Name: string(t), Format: format})
	b.primitives[k] = id
	return id
}

func primitiveType(s *openapi3.Schema) codemodel.SchemaType {
	switch {
	case s.Type.Is(openapi3.TypeString):
		switch s.Format {
		case "uuid":
			return codemodel.TypeUUID
		case "date-time":
			return codemodel.TypeDateTime
		case "date":
			return codemodel.TypeDate
		case "binary", "file":
			return codemodel.TypeBinary
		}
		return codemodel.TypeString
	case s.Type.Is(openapi3.TypeInteger):
		return codemodel.TypeInteger
	case s.Type.Is(openapi3.TypeNumber):
		return codemodel.TypeNumber
	case s.Type.Is(openapi3.TypeBoolean):
		return codemodel.TypeBoolean
	default:
		return codemodel.TypeAny
	}
}

// uniqueName reserves a name for an inline schema, appending a counter when it is taken
func (b *Builder) uniqueName(name string) string {
	if !b.names[name] {
		b.names[name] = true
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !b.names[candidate] {
			b.names[candidate] = true
			return candidate
		}
	}
}

// linkDiscriminators fills the discriminator values of polymorphic bases from
// the explicit mapping, then from each immediate child's discriminator value or name
func (b *Builder) linkDiscriminators() {
	for _, base := range b.model.ObjectSchemas() {
		d, ok := b.discriminators[base.ID]
		if !ok {
			continue
		}
		values := map[string]codemodel.SchemaID{}
		mapped := map[codemodel.SchemaID]bool{}
		for _, value := range sortedKeys(d.Mapping) {
			name, ok := componentName(d.Mapping[value])
			if !ok {
				continue
			}
			if id, ok := b.components[name]; ok && containsID(base.Children.Immediate, id) {
				values[value] = id
				mapped[id] = true
			}
		}
		for _, child := range b.model.Resolve(base.Children.Immediate) {
			if mapped[child.ID] {
				continue
			}
			value := child.DiscriminatorValue
			if value == "" {
				value = child.Name
			}
			if _, taken := values[value]; !taken {
				values[value] = child.ID
				child.DiscriminatorValue = value
			}
		}
		base.Discriminator = &codemodel.Discriminator{PropertyName: d.PropertyName, Values: values}
	}
}

func containsID(ids []codemodel.SchemaID, id codemodel.SchemaID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
