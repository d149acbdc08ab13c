package transformer

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

var nopLog = zerolog.Nop()

// testModel builds small graphs for the pass tests
type testModel struct {
	*codemodel.CodeModel
	str codemodel.SchemaID
}

func newTestModel(t *testing.T) *testModel {
	t.Helper()
	m := codemodel.New("Client")
	str := &codemodel.Schema{Type: codemodel.TypeString, Name: "string"}
	return &testModel{CodeModel: m, str: m.AddSchema(str)}
}

func (b *testModel) object(name string, props ...*codemodel.Property) *codemodel.Schema {
	s := &codemodel.Schema{Type: codemodel.TypeObject, Name: name, Properties: props}
	b.AddSchema(s)
	return s
}

func (b *testModel) array(name string, elem *codemodel.Schema) *codemodel.Schema {
	s := &codemodel.Schema{Type: codemodel.TypeArray, Name: name, ElementType: elem.ID}
	b.AddSchema(s)
	return s
}

func (b *testModel) dictionary(name string, elem *codemodel.Schema) *codemodel.Schema {
	s := &codemodel.Schema{Type: codemodel.TypeDictionary, Name: name, ElementType: elem.ID}
	b.AddSchema(s)
	return s
}

func (b *testModel) enum(name string, values ...string) *codemodel.Schema {
	s := &codemodel.Schema{Type: codemodel.TypeChoice, Name: name, ChoiceType: codemodel.TypeString}
	for _, v := range values {
		s.Choices = append(s.Choices, codemodel.ChoiceValue{Value: v, Name: v})
	}
	b.AddSchema(s)
	return s
}

// strProp is a string property
func (b *testModel) strProp(name string) *codemodel.Property {
	return prop(name, b.str)
}

func (b *testModel) readOnly(names ...string) []*codemodel.Property {
	var out []*codemodel.Property
	for _, n := range names {
		p := b.strProp(n)
		p.ReadOnly = true
		out = append(out, p)
	}
	return out
}

func prop(name string, schema codemodel.SchemaID) *codemodel.Property {
	return &codemodel.Property{Name: name, SerializedName: name, Schema: schema}
}

func (b *testModel) group(name string, ops ...*codemodel.Operation) *codemodel.OperationGroup {
	og := &codemodel.OperationGroup{Name: name, Operations: ops}
	b.OperationGroups = append(b.OperationGroups, og)
	return og
}

func operation(name, method, path string, params ...*codemodel.Parameter) *codemodel.Operation {
	return &codemodel.Operation{
		Name: name,
		Requests: []*codemodel.Request{{
			Method:              method,
			Path:                path,
			Parameters:          params,
			SignatureParameters: append([]*codemodel.Parameter(nil), params...),
		}},
	}
}

func returns(op *codemodel.Operation, s *codemodel.Schema, codes ...string) *codemodel.Operation {
	if len(codes) == 0 {
		codes = []string{"200"}
	}
	op.Responses = append(op.Responses, &codemodel.Response{StatusCodes: codes, Schema: s.ID})
	return op
}

func raises(op *codemodel.Operation, s *codemodel.Schema) *codemodel.Operation {
	op.Exceptions = append(op.Exceptions, &codemodel.Response{StatusCodes: []string{"default"}, Schema: s.ID})
	return op
}

func pathParam(name string, schema codemodel.SchemaID) *codemodel.Parameter {
	return &codemodel.Parameter{
		Name:           name,
		SerializedName: name,
		Schema:         schema,
		Location:       codemodel.LocationPath,
		Implementation: codemodel.ImplementationMethod,
		Required:       true,
	}
}

func bodyParam(name string, schema codemodel.SchemaID) *codemodel.Parameter {
	return &codemodel.Parameter{
		Name:           name,
		SerializedName: name,
		Schema:         schema,
		Location:       codemodel.LocationBody,
		Implementation: codemodel.ImplementationMethod,
		Required:       true,
	}
}

func propertyNames(s *codemodel.Schema) []string {
	out := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		out = append(out, p.SerializedName)
	}
	return out
}

func schemaNames(schemas []*codemodel.Schema) []string {
	out := make([]string, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.Name)
	}
	return out
}
