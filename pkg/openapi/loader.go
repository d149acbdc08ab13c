package openapi

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"sigs.k8s.io/yaml"
)

// versionHeader holds the top-level keys that identify an API description.
// YAML documents may carry an unquoted version number, so the values stay untyped.
type versionHeader struct {
	OpenAPI any `json:"openapi"`
	Swagger any `json:"swagger"`
}

// LoadDocument loads an OpenAPI 3 or Swagger 2.0 document from a local file path
// or an HTTP(S) URL. Swagger 2.0 documents are converted to OpenAPI 3.
func LoadDocument(input string) (*openapi3.T, error) {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	return LoadDocumentWithLoader(loader, input)
}

// LoadDocumentWithLoader loads a document using a custom loader
func LoadDocumentWithLoader(loader *openapi3.Loader, input string) (*openapi3.T, error) {
	location, err := inputLocation(input)
	if err != nil {
		return nil, err
	}
	read := loader.ReadFromURIFunc
	if read == nil {
		read = openapi3.DefaultReadFromURI
	}
	data, err := read(loader, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	return LoadData(loader, data, location)
}

// LoadData decodes a document already in memory. location resolves relative
// external references and may be nil.
func LoadData(loader *openapi3.Loader, data []byte, location *url.URL) (*openapi3.T, error) {
	header, err := readHeader(data)
	if err != nil {
		return nil, err
	}
	switch {
	case header.Swagger != nil:
		return loadSwagger(loader, data, location)
	case location != nil:
		return loader.LoadFromDataWithPath(data, location)
	default:
		return loader.LoadFromData(data)
	}
}

// IsAPIDocument reports whether data is an OpenAPI 3 or Swagger 2.0 document
func IsAPIDocument(data []byte) bool {
	header, err := readHeader(data)
	return err == nil && (header.OpenAPI != nil || header.Swagger != nil)
}

// ValidateDocument validates an OpenAPI document
func ValidateDocument(input string) error {
	loader := &openapi3.Loader{IsExternalRefsAllowed: true}
	doc, err := LoadDocumentWithLoader(loader, input)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

func loadSwagger(loader *openapi3.Loader, data []byte, location *url.URL) (*openapi3.T, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode swagger document: %w", err)
	}
	var doc2 openapi2.T
	if err := json.Unmarshal(raw, &doc2); err != nil {
		return nil, fmt.Errorf("failed to decode swagger document: %w", err)
	}
	doc, err := openapi2conv.ToV3WithLoader(&doc2, loader, location)
	if err != nil {
		return nil, fmt.Errorf("failed to convert swagger document: %w", err)
	}
	return doc, nil
}

func readHeader(data []byte) (versionHeader, error) {
	var header versionHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		return header, fmt.Errorf("failed to parse document: %w", err)
	}
	return header, nil
}

func inputLocation(input string) (*url.URL, error) {
	// Try to parse as URL; if it looks like http(s), fetch via URL
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u, nil
	}
	if input == "" {
		return nil, fmt.Errorf("empty document location")
	}
	// Fallback to reading from filesystem path
	return &url.URL{Path: input}, nil
}
