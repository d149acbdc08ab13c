package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "hello"},
		{"café", "cafe"},
		{"São Paulo", "Sao Paulo"},
		{"résumé", "resume"},
		{"naïve", "naive"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, RemoveAccents(test.input), "RemoveAccents(%q)", test.input)
	}
}

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "Hello"},
		{"helloWorld", "HelloWorld"},
		{"XMLHttpRequest", "XmlhttpRequest"},
		{"hello-world", "HelloWorld"},
		{"HELLO_WORLD", "HelloWorld"},
		{"managedClusterProperties", "ManagedClusterProperties"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ToPascalCase(test.input), "ToPascalCase(%q)", test.input)
	}
}

func TestToKebabCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"helloWorld", "hello-world"},
		{"Virtual Machines", "virtual-machines"},
		{"hello_world", "hello-world"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, ToKebabCase(test.input), "ToKebabCase(%q)", test.input)
	}
}

func TestSplitWords(t *testing.T) {
	assert.Nil(t, SplitWords(""))
	assert.Equal(t, []string{"get", "User", "By", "Id"}, SplitWords("getUserById"))
	assert.Equal(t, []string{"api", "version"}, SplitWords("api-version"))
}

func TestPascalIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"widget", "Widget"},
		{"VMScaleSet", "VMScaleSet"},
		{"virtual-machine", "VirtualMachine"},
		{"api_version", "ApiVersion"},
		{"$host", "Host"},
		{"Components1Q1Og48SchemasManagedclusterAllof1", "Components1Q1Og48SchemasManagedclusterAllof1"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, PascalIdentifier(test.input), "PascalIdentifier(%q)", test.input)
	}
}

func TestCamelIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Widget", "widget"},
		{"getByResourceGroup", "getByResourceGroup"},
		{"VMName", "vmName"},
		{"ID", "id"},
		{"api-version", "apiVersion"},
		{"HTTPSettings", "httpSettings"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, CamelIdentifier(test.input), "CamelIdentifier(%q)", test.input)
	}
}

func TestFirstRuneCase(t *testing.T) {
	assert.Equal(t, "Lower", UpperFirst("lower"))
	assert.Equal(t, "lower", LowerFirst("Lower"))
	assert.Equal(t, "", UpperFirst(""))
}

func TestSingularPlural(t *testing.T) {
	assert.Equal(t, "Widget", Singular("Widgets"))
	assert.Equal(t, "property", Singular("properties"))
	assert.Equal(t, "Widgets", Plural("Widget"))
	assert.Equal(t, "Widgets", Plural("Widgets"))
	assert.Equal(t, "Policies", Plural("Policy"))
	assert.Equal(t, "", Plural(""))
}

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("Widgets"), Fold("WIDGETS"))
	assert.NotEqual(t, Fold("Widgets"), Fold("Gadgets"))
}
