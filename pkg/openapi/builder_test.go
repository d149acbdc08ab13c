package openapi

import (
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

func buildTestdata(t *testing.T, file string) *codemodel.CodeModel {
	t.Helper()
	doc, err := LoadDocument("testdata/" + file)
	require.NoError(t, err)
	m, err := Build(doc, "", zerolog.Nop())
	require.NoError(t, err)
	return m
}

func find(t *testing.T, m *codemodel.CodeModel, name string) *codemodel.Schema {
	t.Helper()
	for _, s := range m.LiveSchemas() {
		if s.Name == name {
			return s
		}
	}
	require.FailNow(t, "schema not found", name)
	return nil
}

func paramNames(params []*codemodel.Parameter) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.SerializedName)
	}
	return out
}

func TestBuildOperations(t *testing.T) {
	m := buildTestdata(t, "widgets.yaml")

	assert.Equal(t, "WidgetService", m.Name)
	assert.Equal(t, "Manages widgets.", m.Description)
	assert.Equal(t, []string{"$host", "api-version", "subscriptionId"}, paramNames(m.GlobalParameters))
	for _, p := range m.GlobalParameters {
		assert.Equal(t, codemodel.ImplementationClient, p.Implementation)
	}

	require.Len(t, m.OperationGroups, 2)
	assert.Equal(t, "", m.OperationGroups[0].Name)
	assert.Equal(t, "listOperations", m.OperationGroups[0].Operations[0].Name)
	widgets := m.OperationGroups[1]
	assert.Equal(t, "Widgets", widgets.Name)
	require.Len(t, widgets.Operations, 3)
	list, get, put := widgets.Operations[0], widgets.Operations[1], widgets.Operations[2]
	assert.Equal(t, "List", list.Name)
	assert.Equal(t, "Get", get.Name)
	assert.Equal(t, "CreateOrUpdate", put.Name)

	assert.Equal(t, []string{"$host", "subscriptionId", "api-version"}, paramNames(get.Parameters))
	require.Len(t, get.Requests, 1)
	assert.Equal(t, "GET", get.Requests[0].Method)
	assert.Equal(t, []string{"resourceGroupName", "widgetName"}, paramNames(get.Requests[0].Parameters))
	assert.Equal(t, get.Requests[0].Parameters, get.Requests[0].SignatureParameters)
	require.Len(t, get.Responses, 1)
	assert.Equal(t, []string{"200"}, get.Responses[0].StatusCodes)
	assert.Equal(t, "Widget", m.Schema(get.Responses[0].Schema).Name)
	require.Len(t, get.Exceptions, 1)
	assert.Equal(t, []string{"default"}, get.Exceptions[0].StatusCodes)
	assert.Equal(t, "CloudError", m.Schema(get.Exceptions[0].Schema).Name)

	require.NotNil(t, list.Pageable)
	assert.Equal(t, "nextLink", list.Pageable.NextLinkName)
	kind := list.Requests[0].Parameters[0]
	assert.Equal(t, "kind", kind.SerializedName)
	assert.False(t, kind.Required)
	assert.Regexp(t, `^Enum\d+$`, m.Schema(kind.Schema).Name)

	assert.True(t, put.LongRunning)
	body := put.Requests[0].Parameters[2]
	assert.Equal(t, "parameters", body.Name)
	assert.Equal(t, codemodel.LocationBody, body.Location)
	assert.True(t, body.Required)
	assert.Equal(t, []string{"application/json"}, put.Requests[0].MediaTypes)
	assert.Regexp(t, `^Paths\w*Requestbody\w*Schema$`, m.Schema(body.Schema).Name)
	require.Len(t, put.Responses[0].Headers, 1)
	assert.Equal(t, "Azure-AsyncOperation", put.Responses[0].Headers[0].Header)
}

func TestBuildSchemas(t *testing.T) {
	m := buildTestdata(t, "widgets.yaml")

	resource := find(t, m, "Resource")
	assert.True(t, resource.AzureResource)
	assert.Equal(t, []bool{true, true, true}, []bool{
		resource.Property("id").ReadOnly, resource.Property("name").ReadOnly, resource.Property("type").ReadOnly,
	})
	tags := m.Schema(resource.Property("tags").Schema)
	assert.Equal(t, codemodel.TypeDictionary, tags.Type)
	assert.Equal(t, codemodel.TypeString, m.Schema(tags.ElementType).Type)

	widget := find(t, m, "Widget")
	require.Len(t, widget.Parents.Immediate, 2)
	assert.Equal(t, resource.ID, widget.Parents.Immediate[0])
	base := m.Schema(widget.Parents.Immediate[1])
	assert.Equal(t, "ComponentsWidgetAllof1", base.Name)
	assert.NotNil(t, base.Property("etag"))
	require.Len(t, widget.Properties, 1)
	assert.Equal(t, "properties", widget.Properties[0].SerializedName)

	props := find(t, m, "WidgetProperties")
	state := m.Schema(props.Property("state").Schema)
	assert.Equal(t, "ProvisioningState", state.Name)
	assert.Equal(t, codemodel.TypeChoice, state.Type)
	assert.Equal(t, []codemodel.ChoiceValue{{Value: "Succeeded", Name: "Succeeded"}, {Value: "Failed", Name: "Failed"}}, state.Choices)

	color := m.Schema(props.Property("color").Schema)
	assert.Equal(t, codemodel.TypeSealedChoice, color.Type)
	assert.Regexp(t, regexp.MustCompile(`^Enum\d+$`), color.Name)

	mode := m.Schema(props.Property("mode").Schema)
	assert.Equal(t, codemodel.TypeConstant, mode.Type)
	assert.Equal(t, "fixed", mode.ConstantValue)
	assert.Equal(t, "WidgetPropertiesMode", mode.Name)

	labels := m.Schema(props.Property("labels").Schema)
	assert.Equal(t, codemodel.TypeDictionary, labels.Type)
	assert.Equal(t, "ComponentsWidgetPropertiesLabelsAdditionalproperties", m.Schema(labels.ElementType).Name)

	zones := m.Schema(props.Property("zones").Schema)
	assert.Equal(t, codemodel.TypeArray, zones.Type)
	assert.Equal(t, "ComponentsWidgetPropertiesZonesItems", m.Schema(zones.ElementType).Name)

	display := props.Property("displayName")
	assert.Equal(t, "title", display.Name)
	assert.Equal(t, []string{"read", "create"}, display.Mutability)
}

func TestBuildDiscriminator(t *testing.T) {
	m := buildTestdata(t, "widgets.yaml")

	pet := find(t, m, "Pet")
	require.NotNil(t, pet.Discriminator)
	assert.Equal(t, "kind", pet.Discriminator.PropertyName)
	assert.Equal(t, map[string]codemodel.SchemaID{
		"dog": find(t, m, "Dog").ID,
		"Cat": find(t, m, "Cat").ID,
	}, pet.Discriminator.Values)
	assert.True(t, pet.Property("kind").Required)
}

func TestBuildUsage(t *testing.T) {
	m := buildTestdata(t, "widgets.yaml")

	tests := []struct {
		schema string
		want   []codemodel.SchemaUsage
	}{
		{"Widget", []codemodel.SchemaUsage{codemodel.UsageOutput}},
		{"Resource", []codemodel.SchemaUsage{codemodel.UsageOutput}},
		{"WidgetProperties", []codemodel.SchemaUsage{codemodel.UsageOutput}},
		{"CloudError", []codemodel.SchemaUsage{codemodel.UsageException}},
		{"CloudErrorBody", []codemodel.SchemaUsage{codemodel.UsageException}},
		{"Pet", nil},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, find(t, m, tt.schema).Usage)
		})
	}

	put := m.OperationGroups[1].Operations[2]
	body := m.Schema(put.Requests[0].Parameters[2].Schema)
	assert.Equal(t, []codemodel.SchemaUsage{codemodel.UsageInput}, body.Usage)
}

func TestBuildSwagger(t *testing.T) {
	m := buildTestdata(t, "gadgets.json")

	assert.Equal(t, "GadgetClient", m.Name)
	assert.Equal(t, []string{"$host", "subscriptionId", "api-version"}, paramNames(m.GlobalParameters))
	require.Len(t, m.OperationGroups, 1)
	ops := m.OperationGroups[0].Operations
	require.Len(t, ops, 2)
	assert.Equal(t, "List", ops[0].Name)
	require.NotNil(t, ops[0].Pageable)
	assert.Empty(t, ops[0].Pageable.NextLinkName)

	create := ops[1]
	assert.Equal(t, "Create", create.Name)
	require.Len(t, create.Requests[0].Parameters, 2)
	body := create.Requests[0].Parameters[1]
	assert.Equal(t, "gadget", body.Name)
	assert.Equal(t, "Gadget", m.Schema(body.Schema).Name)

	gadget := find(t, m, "Gadget")
	size := m.Schema(gadget.Property("size").Schema)
	assert.Equal(t, "GadgetSize", size.Name)
	assert.Equal(t, codemodel.TypeChoice, size.Type)
	assert.ElementsMatch(t, []codemodel.SchemaUsage{codemodel.UsageInput, codemodel.UsageOutput}, gadget.Usage)
}

func TestBuildNameOverride(t *testing.T) {
	doc, err := LoadDocument("testdata/widgets.yaml")
	require.NoError(t, err)

	m, err := Build(doc, "FooManagementClient", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "FooManagementClient", m.Name)

	_, err = Build(nil, "", zerolog.Nop())
	assert.Error(t, err)
}

func TestSplitOperationID(t *testing.T) {
	tests := []struct {
		id, group, name string
	}{
		{"Widgets_Get", "Widgets", "Get"},
		{"Widgets_List_All", "Widgets", "List_All"},
		{"listOperations", "", "listOperations"},
		{"_Get", "", "_Get"},
		{"", "", ""},
	}
	for _, tt := range tests {
		group, name := splitOperationID(tt.id)
		assert.Equal(t, tt.group, group, tt.id)
		assert.Equal(t, tt.name, name, tt.id)
	}
}
