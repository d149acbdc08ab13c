package codemodel

import "strings"

// SchemaID addresses a schema in the model's arena. The zero value means "no schema".
type SchemaID int

// NoSchema is the absent schema reference
const NoSchema SchemaID = 0

// SchemaType identifies the variant of a schema
type SchemaType string

const (
	TypeObject       SchemaType = "object"
	TypeArray        SchemaType = "array"
	TypeDictionary   SchemaType = "dictionary"
	TypeChoice       SchemaType = "choice"
	TypeSealedChoice SchemaType = "sealed-choice"
	TypeConstant     SchemaType = "constant"
	TypeString       SchemaType = "string"
	TypeUUID         SchemaType = "uuid"
	TypeInteger      SchemaType = "integer"
	TypeNumber       SchemaType = "number"
	TypeBoolean      SchemaType = "boolean"
	TypeDateTime     SchemaType = "date-time"
	TypeDate         SchemaType = "date"
	TypeBinary       SchemaType = "binary"
	TypeAny          SchemaType = "any"
)

// SchemaUsage marks where a schema is used in operations
type SchemaUsage string

const (
	UsageInput     SchemaUsage = "input"
	UsageOutput    SchemaUsage = "output"
	UsageException SchemaUsage = "exception"
)

// ImplementationLocation says whether a parameter is fixed on the client or passed per method
type ImplementationLocation string

const (
	ImplementationClient ImplementationLocation = "client"
	ImplementationMethod ImplementationLocation = "method"
)

// ParameterLocation is the HTTP binding of a parameter
type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
	LocationBody   ParameterLocation = "body"
	LocationURI    ParameterLocation = "uri"
)

// Relations holds the inheritance edges of an object schema.
// Immediate lists direct edges; All lists the transitive closure.
type Relations struct {
	Immediate []SchemaID
	All       []SchemaID
}

// ChoiceValue is one value of an enum
type ChoiceValue struct {
	Value       string `yaml:"value" json:"value"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Discriminator describes polymorphic dispatch on an object schema
type Discriminator struct {
	// PropertyName is the serialized name of the discriminating property
	PropertyName string
	// Values maps discriminator values to the immediate subtypes they select
	Values map[string]SchemaID
}

// Schema is a node in the schema graph. Fields that do not apply to a variant stay zero.
type Schema struct {
	ID             SchemaID
	Type           SchemaType
	Name           string
	SerializedName string
	Description    string
	Summary        string

	// object
	Properties           []*Property
	Parents              Relations
	Children             Relations
	Discriminator        *Discriminator
	DiscriminatorValue   string
	SerializationFormats []string
	AzureResource        bool

	// array, dictionary
	ElementType SchemaID

	// choice, sealed choice, constant
	ChoiceType    SchemaType
	Choices       []ChoiceValue
	ConstantValue string

	// primitives
	Format string

	Usage []SchemaUsage
	// External schemas are provided by the runtime library and never emitted
	External   bool
	Extensions map[string]any
}

// Property is a field of an object schema
type Property struct {
	Name           string
	SerializedName string
	Schema         SchemaID
	Required       bool
	ReadOnly       bool
	Flattened      bool
	Description    string
	Mutability     []string
}

// Parameter is a request, operation or client parameter
type Parameter struct {
	Name           string
	SerializedName string
	Description    string
	Schema         SchemaID
	Implementation ImplementationLocation
	Location       ParameterLocation
	Required       bool
	Flattened      bool
}

// Request is one HTTP shape of an operation
type Request struct {
	Method              string
	Path                string
	MediaTypes          []string
	Parameters          []*Parameter
	SignatureParameters []*Parameter
}

// Header is a response header
type Header struct {
	Name   string
	Header string
	Schema SchemaID
}

// Response is a success or exception response of an operation
type Response struct {
	StatusCodes []string
	Schema      SchemaID
	Headers     []*Header
}

// Pageable carries the x-ms-pageable marker of an operation
type Pageable struct {
	ItemName     string `yaml:"itemName,omitempty" json:"itemName,omitempty"`
	NextLinkName string `yaml:"nextLinkName,omitempty" json:"nextLinkName,omitempty"`
}

// Operation is a single API method
type Operation struct {
	Name                string
	Description         string
	Parameters          []*Parameter
	SignatureParameters []*Parameter
	Requests            []*Request
	Responses           []*Response
	Exceptions          []*Response
	Pageable            *Pageable
	LongRunning         bool
}

// OperationGroup is a named collection of operations
type OperationGroup struct {
	Name       string
	Operations []*Operation
}

// Schemas is the schema arena plus the per-variant lists the emitter iterates
type Schemas struct {
	// Nodes is indexed by SchemaID-1; removed schemas leave a nil slot
	Nodes         []*Schema
	Objects       []SchemaID
	Arrays        []SchemaID
	Dictionaries  []SchemaID
	Choices       []SchemaID
	SealedChoices []SchemaID
	Constants     []SchemaID
	Primitives    []SchemaID
}

// CodeModel is the root of the graph the transformer passes rewrite
type CodeModel struct {
	Name             string
	Description      string
	Schemas          Schemas
	GlobalParameters []*Parameter
	OperationGroups  []*OperationGroup
}

// New creates an empty code model with the given client name
func New(name string) *CodeModel {
	return &CodeModel{Name: name}
}

// Operations returns every operation of every group in order
func (m *CodeModel) Operations() []*Operation {
	var out []*Operation
	for _, og := range m.OperationGroups {
		out = append(out, og.Operations...)
	}
	return out
}

// Property returns the property with the given serialized name, or nil
func (s *Schema) Property(serializedName string) *Property {
	for _, p := range s.Properties {
		if p.SerializedName == serializedName {
			return p
		}
	}
	return nil
}

// PropertyNames returns the serialized names of the schema's own properties
func (s *Schema) PropertyNames() map[string]bool {
	names := make(map[string]bool, len(s.Properties))
	for _, p := range s.Properties {
		names[p.SerializedName] = true
	}
	return names
}

// HasUsage reports whether the schema is marked with any of the given usages
func (s *Schema) HasUsage(usages ...SchemaUsage) bool {
	for _, u := range s.Usage {
		for _, want := range usages {
			if u == want {
				return true
			}
		}
	}
	return false
}

// AddUsage marks the schema with a usage if it is not marked already
func (s *Schema) AddUsage(u SchemaUsage) {
	if !s.HasUsage(u) {
		s.Usage = append(s.Usage, u)
	}
}

// IsCollection reports whether the schema is an array or a dictionary
func (s *Schema) IsCollection() bool {
	return s.Type == TypeArray || s.Type == TypeDictionary
}

// IsEnum reports whether the schema is a choice or a sealed choice
func (s *Schema) IsEnum() bool {
	return s.Type == TypeChoice || s.Type == TypeSealedChoice
}

// Clone returns a copy of the property
func (p *Property) Clone() *Property {
	c := *p
	c.Mutability = append([]string(nil), p.Mutability...)
	return &c
}

// AllParameters returns the operation-level parameters followed by every request's parameters
func (o *Operation) AllParameters() []*Parameter {
	params := append([]*Parameter(nil), o.Parameters...)
	for _, r := range o.Requests {
		params = append(params, r.Parameters...)
	}
	return params
}

// HasMethod reports whether any request of the operation uses the HTTP method (case-insensitive)
func (o *Operation) HasMethod(method string) bool {
	for _, r := range o.Requests {
		if strings.EqualFold(r.Method, method) {
			return true
		}
	}
	return false
}
