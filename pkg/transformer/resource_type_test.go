package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

func TestClassifyFields(t *testing.T) {
	tests := []struct {
		fields []string
		want   ResourceType
	}{
		{nil, ResourceTypeNone},
		{[]string{"name"}, ResourceTypeNone},
		{[]string{"id"}, ResourceTypeSubResource},
		{[]string{"id", "etag"}, ResourceTypeSubResource},
		{[]string{"id", "name", "type"}, ResourceTypeProxyResource},
		{[]string{"id", "name", "type", "location"}, ResourceTypeProxyResource},
		{[]string{"id", "name", "type", "location", "tags", "sku"}, ResourceTypeResource},
	}
	for _, tt := range tests {
		fields := map[string]bool{}
		for _, f := range tt.fields {
			fields[f] = true
		}
		assert.Equal(t, tt.want, ClassifyFields(fields), "fields %v", tt.fields)
	}
}

func azureResource(b *testModel) *codemodel.Schema {
	props := append(b.readOnly("id", "name", "type"), b.strProp("location"), b.strProp("tags"), b.strProp("customProp"))
	s := b.object("Widget", props...)
	s.AzureResource = true
	return s
}

func TestResourceTypeAdaptsAzureResourceWithoutParent(t *testing.T) {
	b := newTestModel(t)
	widget := azureResource(b)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	require.Len(t, widget.Parents.Immediate, 1)
	parent := b.Schema(widget.Parents.Immediate[0])
	assert.Equal(t, "Resource", parent.Name)
	assert.True(t, parent.External)
	assert.Equal(t, []string{"id", "name", "type", "location", "tags"}, propertyNames(parent))
	assert.Equal(t, []string{"customProp"}, propertyNames(widget))
	assert.Equal(t, []codemodel.SchemaID{widget.ID}, parent.Children.Immediate)
	assert.NotContains(t, b.Schemas.Objects, parent.ID)
	require.NoError(t, codemodel.Validate(b.CodeModel))
}

func TestResourceTypeAdaptsAzureResourceWithCollectionParent(t *testing.T) {
	b := newTestModel(t)
	widget := azureResource(b)
	stringMap := b.dictionary("StringMap", b.Schema(b.str))
	b.AddParent(widget.ID, stringMap.ID)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	parent := b.ObjectParent(widget)
	require.NotNil(t, parent)
	assert.Equal(t, "Resource", parent.Name)
	assert.Equal(t, []codemodel.SchemaID{parent.ID, stringMap.ID}, widget.Parents.Immediate)
	assert.Equal(t, []string{"customProp"}, propertyNames(widget))
	require.NoError(t, codemodel.Validate(b.CodeModel))
}

func TestResourceTypeProxyResourceKeepsWritableName(t *testing.T) {
	b := newTestModel(t)
	props := append(b.readOnly("id", "type"), b.strProp("name"), b.strProp("properties"))
	s := b.object("Setting", props...)
	s.AzureResource = true

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	parent := b.ObjectParent(s)
	require.NotNil(t, parent)
	assert.Equal(t, "ProxyResource", parent.Name)
	assert.Equal(t, []string{"name", "properties"}, propertyNames(s))
}

func TestResourceTypeIgnoresSchemasWithoutMarker(t *testing.T) {
	b := newTestModel(t)
	props := append(b.readOnly("id", "name", "type"), b.strProp("location"), b.strProp("tags"))
	s := b.object("Plain", props...)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	assert.Empty(t, s.Parents.Immediate)
	assert.Len(t, s.Properties, 5)
}

func TestResourceTypeReplacesWellKnownParent(t *testing.T) {
	b := newTestModel(t)
	tracked := b.object("TrackedResource", append(b.readOnly("id", "name", "type"),
		b.strProp("location"), b.strProp("tags"), b.strProp("etag"))...)
	vm := b.object("VirtualMachine", b.strProp("properties"))
	b.AddParent(vm.ID, tracked.ID)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	parent := b.ObjectParent(vm)
	require.NotNil(t, parent)
	assert.Equal(t, "Resource", parent.Name)
	assert.True(t, parent.External)
	assert.Equal(t, []string{"etag", "properties"}, propertyNames(vm))
	assert.Empty(t, tracked.Children.Immediate)
	require.NoError(t, codemodel.Validate(b.CodeModel))
}

func TestResourceTypeClassifiesGenericParentByFields(t *testing.T) {
	b := newTestModel(t)
	base := b.object("AzureResource", b.readOnly("id", "name", "type")...)
	child := b.object("Extension", b.strProp("properties"))
	b.AddParent(child.ID, base.ID)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	parent := b.ObjectParent(child)
	require.NotNil(t, parent)
	assert.Equal(t, "ProxyResource", parent.Name)
	assert.Equal(t, []string{"properties"}, propertyNames(child))
}

func TestResourceTypeSchemaBecomesCanonical(t *testing.T) {
	b := newTestModel(t)
	base := b.object("ProxyResourceAutoGenerated", b.readOnly("id", "name", "type")...)
	proxy := b.object("ProxyResource", b.strProp("extra"))
	b.AddParent(proxy.ID, base.ID)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	assert.Empty(t, proxy.Parents.Immediate)
	assert.Equal(t, []string{"id", "name", "type"}, propertyNames(proxy))
	require.NoError(t, codemodel.Validate(b.CodeModel))
}

func TestResourceTypeRenamesSystemData(t *testing.T) {
	b := newTestModel(t)
	sd := b.object("SystemData", b.strProp("createdBy"))
	own := b.object("WidgetSystemData")
	b.AddParent(own.ID, sd.ID)

	NewResourceTypeNormalization(nopLog).Process(b.CodeModel)

	assert.Equal(t, "SystemData", own.Name)
}

func TestResourceTypeIsIdempotent(t *testing.T) {
	b := newTestModel(t)
	widget := azureResource(b)
	tracked := b.object("TrackedResource", append(b.readOnly("id", "name", "type"),
		b.strProp("location"), b.strProp("tags"))...)
	vm := b.object("VirtualMachine", b.strProp("properties"))
	b.AddParent(vm.ID, tracked.ID)

	pass := NewResourceTypeNormalization(nopLog)
	pass.Process(b.CodeModel)
	snapshot := func() map[string][]string {
		out := map[string][]string{}
		for _, s := range b.LiveSchemas() {
			out[s.Name] = append(propertyNames(s), schemaNames(b.Resolve(s.Parents.Immediate))...)
		}
		return out
	}
	first := snapshot()
	nodes := len(b.Schemas.Nodes)

	pass.Process(b.CodeModel)

	assert.Equal(t, first, snapshot())
	assert.Equal(t, nodes, len(b.Schemas.Nodes), "canonical schemas are created once")
	assert.Equal(t, []string{"customProp"}, propertyNames(widget))
}
