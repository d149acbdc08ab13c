package openapi

import (
	"sort"

	"github.com/spf13/cast"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// Vendor extensions understood by the builder
const (
	extEnum               = "x-ms-enum"
	extPageable           = "x-ms-pageable"
	extLongRunning        = "x-ms-long-running-operation"
	extAzureResource      = "x-ms-azure-resource"
	extMutability         = "x-ms-mutability"
	extClientFlatten      = "x-ms-client-flatten"
	extClientName         = "x-ms-client-name"
	extDiscriminatorValue = "x-ms-discriminator-value"
	extParameterLocation  = "x-ms-parameter-location"
	extRequestBodyName    = "x-ms-requestBody-name"
	// set by the Swagger 2.0 conversion on request bodies
	extOriginalParamName = "x-originalParamName"
)

// enumExtension is the decoded x-ms-enum value
type enumExtension struct {
	Name          string
	ModelAsString bool
	Values        []codemodel.ChoiceValue
}

func readEnumExtension(ext map[string]any) enumExtension {
	raw, ok := ext[extEnum]
	if !ok {
		return enumExtension{}
	}
	m := cast.ToStringMap(raw)
	out := enumExtension{
		Name:          cast.ToString(m["name"]),
		ModelAsString: cast.ToBool(m["modelAsString"]),
	}
	for _, v := range cast.ToSlice(m["values"]) {
		entry := cast.ToStringMap(v)
		value := cast.ToString(entry["value"])
		name := cast.ToString(entry["name"])
		if name == "" {
			name = value
		}
		out.Values = append(out.Values, codemodel.ChoiceValue{
			Value:       value,
			Name:        name,
			Description: cast.ToString(entry["description"]),
		})
	}
	return out
}

func readPageable(ext map[string]any) *codemodel.Pageable {
	raw, ok := ext[extPageable]
	if !ok {
		return nil
	}
	m := cast.ToStringMap(raw)
	return &codemodel.Pageable{
		ItemName:     cast.ToString(m["itemName"]),
		NextLinkName: cast.ToString(m["nextLinkName"]),
	}
}

// clientName returns the x-ms-client-name override, or name
func clientName(ext map[string]any, name string) string {
	if n := cast.ToString(ext[extClientName]); n != "" {
		return n
	}
	return name
}

// passthroughExtensions keeps the extensions the builder does not turn into model fields
func passthroughExtensions(ext map[string]any) map[string]any {
	var out map[string]any
	for k, v := range ext {
		switch k {
		case extEnum, extAzureResource, extDiscriminatorValue, extClientName:
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
