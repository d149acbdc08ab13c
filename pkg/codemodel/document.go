package codemodel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format of a code model document
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrUnknownSchema is returned when a document references a schema id it does not declare
	ErrUnknownSchema = errors.New("unknown schema")
	// ErrUnknownParameter is returned when a document references a parameter it has not declared yet
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Document is the serialized form of a CodeModel. Schemas reference each other by string id;
// children are not stored and are derived from parents on decode.
type Document struct {
	Name             string              `yaml:"name" json:"name"`
	Description      string              `yaml:"description,omitempty" json:"description,omitempty"`
	Schemas          []SchemaDoc         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	GlobalParameters []ParameterDoc      `yaml:"globalParameters,omitempty" json:"globalParameters,omitempty"`
	OperationGroups  []OperationGroupDoc `yaml:"operationGroups,omitempty" json:"operationGroups,omitempty"`
}

// SchemaDoc is the serialized form of a Schema
type SchemaDoc struct {
	ID                   string            `yaml:"id" json:"id"`
	Type                 SchemaType        `yaml:"type" json:"type"`
	Name                 string            `yaml:"name" json:"name"`
	SerializedName       string            `yaml:"serializedName,omitempty" json:"serializedName,omitempty"`
	Description          string            `yaml:"description,omitempty" json:"description,omitempty"`
	Summary              string            `yaml:"summary,omitempty" json:"summary,omitempty"`
	Properties           []PropertyDoc     `yaml:"properties,omitempty" json:"properties,omitempty"`
	Parents              []string          `yaml:"parents,omitempty" json:"parents,omitempty"`
	Discriminator        *DiscriminatorDoc `yaml:"discriminator,omitempty" json:"discriminator,omitempty"`
	DiscriminatorValue   string            `yaml:"discriminatorValue,omitempty" json:"discriminatorValue,omitempty"`
	SerializationFormats []string          `yaml:"serializationFormats,omitempty" json:"serializationFormats,omitempty"`
	AzureResource        bool              `yaml:"x-ms-azure-resource,omitempty" json:"x-ms-azure-resource,omitempty"`
	ElementType          string            `yaml:"elementType,omitempty" json:"elementType,omitempty"`
	ChoiceType           SchemaType        `yaml:"choiceType,omitempty" json:"choiceType,omitempty"`
	Choices              []ChoiceValue     `yaml:"choices,omitempty" json:"choices,omitempty"`
	ConstantValue        string            `yaml:"constantValue,omitempty" json:"constantValue,omitempty"`
	Format               string            `yaml:"format,omitempty" json:"format,omitempty"`
	Usage                []SchemaUsage     `yaml:"usage,omitempty" json:"usage,omitempty"`
	External             bool              `yaml:"external,omitempty" json:"external,omitempty"`
	Extensions           map[string]any    `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// DiscriminatorDoc is the serialized form of a Discriminator
type DiscriminatorDoc struct {
	Property string            `yaml:"property" json:"property"`
	Values   map[string]string `yaml:"values,omitempty" json:"values,omitempty"`
}

// PropertyDoc is the serialized form of a Property
type PropertyDoc struct {
	Name           string   `yaml:"name" json:"name"`
	SerializedName string   `yaml:"serializedName" json:"serializedName"`
	Schema         string   `yaml:"schema" json:"schema"`
	Required       bool     `yaml:"required,omitempty" json:"required,omitempty"`
	ReadOnly       bool     `yaml:"readOnly,omitempty" json:"readOnly,omitempty"`
	Flattened      bool     `yaml:"flattened,omitempty" json:"flattened,omitempty"`
	Description    string   `yaml:"description,omitempty" json:"description,omitempty"`
	Mutability     []string `yaml:"x-ms-mutability,omitempty" json:"x-ms-mutability,omitempty"`
}

// ParameterDoc is the serialized form of a Parameter. A parameter that was already
// written elsewhere in the document is written as a Ref to its first occurrence.
type ParameterDoc struct {
	Ref            string                 `yaml:"$ref,omitempty" json:"$ref,omitempty"`
	Name           string                 `yaml:"name,omitempty" json:"name,omitempty"`
	SerializedName string                 `yaml:"serializedName,omitempty" json:"serializedName,omitempty"`
	Description    string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Schema         string                 `yaml:"schema,omitempty" json:"schema,omitempty"`
	Implementation ImplementationLocation `yaml:"implementation,omitempty" json:"implementation,omitempty"`
	Location       ParameterLocation      `yaml:"in,omitempty" json:"in,omitempty"`
	Required       bool                   `yaml:"required,omitempty" json:"required,omitempty"`
	Flattened      bool                   `yaml:"flattened,omitempty" json:"flattened,omitempty"`
}

// OperationGroupDoc is the serialized form of an OperationGroup
type OperationGroupDoc struct {
	Name       string         `yaml:"name" json:"name"`
	Operations []OperationDoc `yaml:"operations,omitempty" json:"operations,omitempty"`
}

// OperationDoc is the serialized form of an Operation
type OperationDoc struct {
	Name                string         `yaml:"name" json:"name"`
	Description         string         `yaml:"description,omitempty" json:"description,omitempty"`
	Parameters          []ParameterDoc `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	SignatureParameters []ParameterDoc `yaml:"signatureParameters,omitempty" json:"signatureParameters,omitempty"`
	Requests            []RequestDoc   `yaml:"requests,omitempty" json:"requests,omitempty"`
	Responses           []ResponseDoc  `yaml:"responses,omitempty" json:"responses,omitempty"`
	Exceptions          []ResponseDoc  `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`
	Pageable            *Pageable      `yaml:"x-ms-pageable,omitempty" json:"x-ms-pageable,omitempty"`
	LongRunning         bool           `yaml:"x-ms-long-running-operation,omitempty" json:"x-ms-long-running-operation,omitempty"`
}

// RequestDoc is the serialized form of a Request
type RequestDoc struct {
	Method              string         `yaml:"method" json:"method"`
	Path                string         `yaml:"path" json:"path"`
	MediaTypes          []string       `yaml:"mediaTypes,omitempty" json:"mediaTypes,omitempty"`
	Parameters          []ParameterDoc `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	SignatureParameters []ParameterDoc `yaml:"signatureParameters,omitempty" json:"signatureParameters,omitempty"`
}

// ResponseDoc is the serialized form of a Response
type ResponseDoc struct {
	StatusCodes []string    `yaml:"statusCodes,omitempty" json:"statusCodes,omitempty"`
	Schema      string      `yaml:"schema,omitempty" json:"schema,omitempty"`
	Headers     []HeaderDoc `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// HeaderDoc is the serialized form of a Header
type HeaderDoc struct {
	Name   string `yaml:"name" json:"name"`
	Header string `yaml:"header" json:"header"`
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
}

// ParseFormat maps a file extension or format name to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported code model format: %q", s)
	}
}

// Decode reads a code model document. JSON is assumed when the payload starts with '{'.
func Decode(data []byte) (*CodeModel, error) {
	var doc Document
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode code model json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode code model yaml: %w", err)
	}
	return FromDocument(&doc)
}

// Encode writes the model in the given format
func Encode(m *CodeModel, format Format) ([]byte, error) {
	doc := ToDocument(m)
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode code model yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported code model format: %q", format)
	}
}

// ReadFile decodes a code model document from disk
func ReadFile(path string) (*CodeModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// WriteFile encodes the model to disk, picking the format from the file extension
func WriteFile(m *CodeModel, path string) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		format = FormatYAML
	}
	data, err := Encode(m, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Clone returns an independent copy of the model, built by a document round trip
func Clone(m *CodeModel) (*CodeModel, error) {
	return FromDocument(ToDocument(m))
}

func schemaRef(id SchemaID) string {
	if id == NoSchema {
		return ""
	}
	return "s" + strconv.Itoa(int(id))
}

// ToDocument converts a model to its serialized form
func ToDocument(m *CodeModel) *Document {
	doc := &Document{Name: m.Name, Description: m.Description}
	for _, s := range m.LiveSchemas() {
		sd := SchemaDoc{
			ID:                   schemaRef(s.ID),
			Type:                 s.Type,
			Name:                 s.Name,
			SerializedName:       s.SerializedName,
			Description:          s.Description,
			Summary:              s.Summary,
			DiscriminatorValue:   s.DiscriminatorValue,
			SerializationFormats: s.SerializationFormats,
			AzureResource:        s.AzureResource,
			ElementType:          schemaRef(s.ElementType),
			ChoiceType:           s.ChoiceType,
			Choices:              s.Choices,
			ConstantValue:        s.ConstantValue,
			Format:               s.Format,
			Usage:                s.Usage,
			External:             s.External,
			Extensions:           s.Extensions,
		}
		for _, p := range s.Properties {
			sd.Properties = append(sd.Properties, PropertyDoc{
				Name:           p.Name,
				SerializedName: p.SerializedName,
				Schema:         schemaRef(p.Schema),
				Required:       p.Required,
				ReadOnly:       p.ReadOnly,
				Flattened:      p.Flattened,
				Description:    p.Description,
				Mutability:     p.Mutability,
			})
		}
		for _, p := range s.Parents.Immediate {
			sd.Parents = append(sd.Parents, schemaRef(p))
		}
		if s.Discriminator != nil {
			dd := &DiscriminatorDoc{Property: s.Discriminator.PropertyName}
			if len(s.Discriminator.Values) > 0 {
				dd.Values = make(map[string]string, len(s.Discriminator.Values))
				for k, v := range s.Discriminator.Values {
					dd.Values[k] = schemaRef(v)
				}
			}
			sd.Discriminator = dd
		}
		doc.Schemas = append(doc.Schemas, sd)
	}

	params := &paramEncoder{seen: map[*Parameter]string{}}
	doc.GlobalParameters = params.encode(m.GlobalParameters, "global")
	for gi, og := range m.OperationGroups {
		gd := OperationGroupDoc{Name: og.Name}
		for oi, op := range og.Operations {
			key := fmt.Sprintf("%d/%d", gi, oi)
			od := OperationDoc{
				Name:        op.Name,
				Description: op.Description,
				Pageable:    op.Pageable,
				LongRunning: op.LongRunning,
			}
			od.Parameters = params.encode(op.Parameters, key+"/parameters")
			od.SignatureParameters = params.encode(op.SignatureParameters, key+"/signatureParameters")
			for ri, r := range op.Requests {
				rkey := fmt.Sprintf("%s/requests/%d", key, ri)
				od.Requests = append(od.Requests, RequestDoc{
					Method:              r.Method,
					Path:                r.Path,
					MediaTypes:          r.MediaTypes,
					Parameters:          params.encode(r.Parameters, rkey+"/parameters"),
					SignatureParameters: params.encode(r.SignatureParameters, rkey+"/signatureParameters"),
				})
			}
			od.Responses = encodeResponses(op.Responses)
			od.Exceptions = encodeResponses(op.Exceptions)
			gd.Operations = append(gd.Operations, od)
		}
		doc.OperationGroups = append(doc.OperationGroups, gd)
	}
	return doc
}

type paramEncoder struct {
	seen map[*Parameter]string
}

func (e *paramEncoder) encode(params []*Parameter, prefix string) []ParameterDoc {
	var out []ParameterDoc
	for i, p := range params {
		if ref, ok := e.seen[p]; ok {
			out = append(out, ParameterDoc{Ref: ref})
			continue
		}
		e.seen[p] = fmt.Sprintf("%s/%d", prefix, i)
		out = append(out, ParameterDoc{
			Name:           p.Name,
			SerializedName: p.SerializedName,
			Description:    p.Description,
			Schema:         schemaRef(p.Schema),
			Implementation: p.Implementation,
			Location:       p.Location,
			Required:       p.Required,
			Flattened:      p.Flattened,
		})
	}
	return out
}

func encodeResponses(responses []*Response) []ResponseDoc {
	var out []ResponseDoc
	for _, r := range responses {
		rd := ResponseDoc{StatusCodes: r.StatusCodes, Schema: schemaRef(r.Schema)}
		for _, h := range r.Headers {
			rd.Headers = append(rd.Headers, HeaderDoc{Name: h.Name, Header: h.Header, Schema: schemaRef(h.Schema)})
		}
		out = append(out, rd)
	}
	return out
}

// FromDocument builds a model from its serialized form
func FromDocument(doc *Document) (*CodeModel, error) {
	m := New(doc.Name)
	m.Description = doc.Description

	ids := make(map[string]SchemaID, len(doc.Schemas))
	for _, sd := range doc.Schemas {
		if _, dup := ids[sd.ID]; dup || sd.ID == "" {
			return nil, fmt.Errorf("schema %q: missing or duplicate id %q", sd.Name, sd.ID)
		}
		ids[sd.ID] = m.AddSchema(&Schema{
			Type:                 sd.Type,
			Name:                 sd.Name,
			SerializedName:       sd.SerializedName,
			Description:          sd.Description,
			Summary:              sd.Summary,
			DiscriminatorValue:   sd.DiscriminatorValue,
			SerializationFormats: sd.SerializationFormats,
			AzureResource:        sd.AzureResource,
			ChoiceType:           sd.ChoiceType,
			Choices:              sd.Choices,
			ConstantValue:        sd.ConstantValue,
			Format:               sd.Format,
			Usage:                sd.Usage,
			External:             sd.External,
			Extensions:           sd.Extensions,
		})
	}
	resolve := func(ref, where string) (SchemaID, error) {
		if ref == "" {
			return NoSchema, nil
		}
		id, ok := ids[ref]
		if !ok {
			return NoSchema, fmt.Errorf("%w %q referenced by %s", ErrUnknownSchema, ref, where)
		}
		return id, nil
	}

	for _, sd := range doc.Schemas {
		s := m.Schema(ids[sd.ID])
		var err error
		if s.ElementType, err = resolve(sd.ElementType, sd.Name+".elementType"); err != nil {
			return nil, err
		}
		for _, pd := range sd.Properties {
			p := &Property{
				Name:           pd.Name,
				SerializedName: pd.SerializedName,
				Required:       pd.Required,
				ReadOnly:       pd.ReadOnly,
				Flattened:      pd.Flattened,
				Description:    pd.Description,
				Mutability:     pd.Mutability,
			}
			if p.Schema, err = resolve(pd.Schema, sd.Name+"."+pd.SerializedName); err != nil {
				return nil, err
			}
			s.Properties = append(s.Properties, p)
		}
		for _, ref := range sd.Parents {
			parent, err := resolve(ref, sd.Name+".parents")
			if err != nil {
				return nil, err
			}
			s.Parents.Immediate = append(s.Parents.Immediate, parent)
			ps := m.Schema(parent)
			ps.Children.Immediate = append(ps.Children.Immediate, s.ID)
		}
		if sd.Discriminator != nil {
			d := &Discriminator{PropertyName: sd.Discriminator.Property}
			if len(sd.Discriminator.Values) > 0 {
				d.Values = make(map[string]SchemaID, len(sd.Discriminator.Values))
				for k, v := range sd.Discriminator.Values {
					if d.Values[k], err = resolve(v, sd.Name+".discriminator"); err != nil {
						return nil, err
					}
				}
			}
			s.Discriminator = d
		}
	}
	m.RebuildRelations()

	params := &paramDecoder{resolve: resolve, seen: map[string]*Parameter{}}
	var err error
	if m.GlobalParameters, err = params.decode(doc.GlobalParameters, "global"); err != nil {
		return nil, err
	}
	for gi, gd := range doc.OperationGroups {
		og := &OperationGroup{Name: gd.Name}
		for oi, od := range gd.Operations {
			key := fmt.Sprintf("%d/%d", gi, oi)
			op := &Operation{
				Name:        od.Name,
				Description: od.Description,
				Pageable:    od.Pageable,
				LongRunning: od.LongRunning,
			}
			if op.Parameters, err = params.decode(od.Parameters, key+"/parameters"); err != nil {
				return nil, err
			}
			if op.SignatureParameters, err = params.decode(od.SignatureParameters, key+"/signatureParameters"); err != nil {
				return nil, err
			}
			for ri, rd := range od.Requests {
				rkey := fmt.Sprintf("%s/requests/%d", key, ri)
				r := &Request{Method: rd.Method, Path: rd.Path, MediaTypes: rd.MediaTypes}
				if r.Parameters, err = params.decode(rd.Parameters, rkey+"/parameters"); err != nil {
					return nil, err
				}
				if r.SignatureParameters, err = params.decode(rd.SignatureParameters, rkey+"/signatureParameters"); err != nil {
					return nil, err
				}
				op.Requests = append(op.Requests, r)
			}
			if op.Responses, err = decodeResponses(od.Responses, resolve, op.Name); err != nil {
				return nil, err
			}
			if op.Exceptions, err = decodeResponses(od.Exceptions, resolve, op.Name); err != nil {
				return nil, err
			}
			og.Operations = append(og.Operations, op)
		}
		m.OperationGroups = append(m.OperationGroups, og)
	}
	return m, nil
}

type paramDecoder struct {
	resolve func(ref, where string) (SchemaID, error)
	seen    map[string]*Parameter
}

func (d *paramDecoder) decode(docs []ParameterDoc, prefix string) ([]*Parameter, error) {
	var out []*Parameter
	for i, pd := range docs {
		if pd.Ref != "" {
			p, ok := d.seen[pd.Ref]
			if !ok {
				return nil, fmt.Errorf("%w %q referenced by %s", ErrUnknownParameter, pd.Ref, prefix)
			}
			out = append(out, p)
			continue
		}
		schema, err := d.resolve(pd.Schema, "parameter "+pd.SerializedName)
		if err != nil {
			return nil, err
		}
		p := &Parameter{
			Name:           pd.Name,
			SerializedName: pd.SerializedName,
			Description:    pd.Description,
			Schema:         schema,
			Implementation: pd.Implementation,
			Location:       pd.Location,
			Required:       pd.Required,
			Flattened:      pd.Flattened,
		}
		d.seen[fmt.Sprintf("%s/%d", prefix, i)] = p
		out = append(out, p)
	}
	return out, nil
}

func decodeResponses(docs []ResponseDoc, resolve func(ref, where string) (SchemaID, error), op string) ([]*Response, error) {
	var out []*Response
	for _, rd := range docs {
		schema, err := resolve(rd.Schema, "response of "+op)
		if err != nil {
			return nil, err
		}
		r := &Response{StatusCodes: rd.StatusCodes, Schema: schema}
		for _, hd := range rd.Headers {
			hs, err := resolve(hd.Schema, "header "+hd.Header+" of "+op)
			if err != nil {
				return nil, err
			}
			r.Headers = append(r.Headers, &Header{Name: hd.Name, Header: hd.Header, Schema: hs})
		}
		out = append(out, r)
	}
	return out, nil
}
