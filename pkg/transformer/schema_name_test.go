package transformer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

func TestOverrideNameMatchesWholeWords(t *testing.T) {
	n := NewSchemaNameNormalization(map[string]string{"lower": "upper"}, false, nopLog)
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"lower", "upper"},
		{"flower", "flower"},
		{"lowers", "lowers"},
		{"lowerCase", "upperCase"},
		{"LowerCase", "UpperCase"},
		{"isLower", "isUpper"},
		{"is_lower_case", "is_upper_case"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.OverrideName(tt.in), "OverrideName(%q)", tt.in)
	}
}

func TestOverrideNameLongestKeyFirst(t *testing.T) {
	n := NewSchemaNameNormalization(map[string]string{"Vm": "VirtualMachine", "VmSize": "VMSizeType"}, false, nopLog)

	assert.Equal(t, "VMSizeType", n.OverrideName("VmSize"))
	assert.Equal(t, "VirtualMachineImage", n.OverrideName("VmImage"))
}

func TestSchemaNameOverridesEveryName(t *testing.T) {
	b := newTestModel(t)
	b.Name = "VmClient"
	vmSize := b.object("VmSize", b.strProp("vmId"))
	enum := b.enum("VmState", "on")
	param := pathParam("vmName", b.str)
	op := operation("listVm", http.MethodGet, "/vms/{vmName}", param)
	op.Responses = []*codemodel.Response{{
		StatusCodes: []string{"200"},
		Headers: []*codemodel.Header{
			{Name: "vmEtag", Header: "vm-etag", Schema: b.str},
		},
	}}
	og := b.group("Vms", op)

	NewSchemaNameNormalization(map[string]string{"Vm": "VirtualMachine"}, false, nopLog).Process(b.CodeModel)

	assert.Equal(t, "VirtualMachineClient", b.Name)
	assert.Equal(t, "VirtualMachineSize", vmSize.Name)
	assert.Equal(t, "virtualMachineId", vmSize.Properties[0].Name)
	assert.Equal(t, "vmId", vmSize.Properties[0].SerializedName)
	assert.Equal(t, "VirtualMachineState", enum.Name)
	assert.Equal(t, "Vms", og.Name)
	assert.Equal(t, "listVirtualMachine", op.Name)
	assert.Equal(t, "virtualMachineName", param.Name)
	assert.Equal(t, "vmEtag", op.Responses[0].Headers[0].Name, "headers only change case")
}

func TestSchemaNameOverrideHeaderCaseOnly(t *testing.T) {
	b := newTestModel(t)
	op := operation("get", http.MethodGet, "/x")
	op.Responses = []*codemodel.Response{{
		StatusCodes: []string{"200"},
		Headers:     []*codemodel.Header{{Name: "Etag", Header: "ETag", Schema: b.str}},
	}}
	b.group("Things", op)

	NewSchemaNameNormalization(map[string]string{"Etag": "ETag"}, false, nopLog).Process(b.CodeModel)

	assert.Equal(t, "ETag", op.Responses[0].Headers[0].Name)
}

func TestSchemaNameAnonymousSchemas(t *testing.T) {
	b := newTestModel(t)

	// additional properties
	tagValue := b.object("ComponentsTagsAdditionalproperties", b.strProp("value"))
	tags := b.dictionary("ManagedClusterTags", tagValue)

	// anonymous base type
	base := b.object("ComponentsFooAllof0", b.strProp("shared"))
	foo := b.object("Foo")
	b.AddParent(foo.ID, base.ID)

	// array item
	item := b.object("ComponentsWidgetsItems", b.strProp("name"))
	widgets := b.array("WidgetList", item)
	b.object("Catalog", prop("widgets", widgets.ID), prop("tags", tags.ID), prop("foo", foo.ID))

	// request body
	body := b.object("PathsXyzSubscriptionsWidgetsPutRequestbodyContentApplicationJsonSchema", b.strProp("size"))
	create := operation("Create", http.MethodPut, "/widgets", bodyParam("body", body.ID))
	b.group("Widgets", create)

	NewSchemaNameNormalization(nil, false, nopLog).Process(b.CodeModel)

	assert.Equal(t, "ManagedClusterTags", tagValue.Name)
	assert.Equal(t, "BaseFoo", base.Name)
	assert.Equal(t, "CatalogWidget", item.Name)
	assert.Equal(t, "WidgetsCreateRequestBody", body.Name)
}

func TestSchemaNameAnonymousEnums(t *testing.T) {
	tests := []struct {
		name        string
		deduplicate bool
		want        string
	}{
		{"left as derived", false, "WidgetState"},
		{"deduplicated when enabled", true, "WidgetState1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestModel(t)
			b.object("WidgetState")
			enum := b.enum("Enum12", "on", "off")
			b.object("Widget", prop("state", enum.ID))

			NewSchemaNameNormalization(nil, tt.deduplicate, nopLog).Process(b.CodeModel)

			assert.Equal(t, tt.want, enum.Name)
		})
	}
}

func TestSchemaNameAnonymousEnumFromParameter(t *testing.T) {
	b := newTestModel(t)
	enum := b.enum("Enum3", "a", "b")
	kinds := b.array("KindList", b.enum("Enum4", "x"))
	kind := &codemodel.Parameter{Name: "kind", SerializedName: "kind", Schema: enum.ID, Location: codemodel.LocationQuery}
	filters := &codemodel.Parameter{Name: "filters", SerializedName: "filters", Schema: kinds.ID, Location: codemodel.LocationQuery}
	b.group("Widgets", operation("list", http.MethodGet, "/widgets", kind, filters))

	NewSchemaNameNormalization(nil, false, nopLog).Process(b.CodeModel)

	assert.Equal(t, "WidgetsKind", enum.Name)
	assert.Equal(t, "WidgetsFilter", b.Schema(kinds.ElementType).Name)
}

func TestSchemaNameSynthesizedNamesAreDeduplicated(t *testing.T) {
	b := newTestModel(t)
	b.object("CatalogWidget")
	item := b.object("ComponentsWidgetsItems")
	b.object("Catalog", prop("widgets", b.array("WidgetList", item).ID))

	NewSchemaNameNormalization(nil, false, nopLog).Process(b.CodeModel)

	require.Equal(t, "CatalogWidget1", item.Name)
}
