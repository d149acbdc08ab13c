package codemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: WidgetClient
schemas:
  - id: str
    type: string
    name: string
  - id: base
    type: object
    name: Base
    properties:
      - name: id
        serializedName: id
        schema: str
        readOnly: true
  - id: widget
    type: object
    name: Widget
    parents: [base]
    x-ms-azure-resource: true
    properties:
      - name: color
        serializedName: color
        schema: str
globalParameters:
  - name: subscriptionId
    serializedName: subscriptionId
    schema: str
    implementation: client
    in: path
    required: true
operationGroups:
  - name: Widgets
    operations:
      - name: get
        parameters:
          - $ref: global/0
        signatureParameters:
          - name: widgetName
            serializedName: widgetName
            schema: str
            implementation: method
            in: path
        requests:
          - method: GET
            path: /subscriptions/{subscriptionId}/widgets/{widgetName}
            parameters:
              - $ref: 0/0/signatureParameters/0
        responses:
          - statusCodes: ["200"]
            schema: widget
`

func TestDecodeYAML(t *testing.T) {
	m, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "WidgetClient", m.Name)
	widget := m.FindSchema("Widget", TypeObject)
	require.NotNil(t, widget)
	base := m.FindSchema("Base", TypeObject)
	require.NotNil(t, base)
	assert.True(t, widget.AzureResource)
	assert.Equal(t, []SchemaID{base.ID}, widget.Parents.Immediate)
	assert.Equal(t, []SchemaID{widget.ID}, base.Children.Immediate)

	require.Len(t, m.OperationGroups, 1)
	op := m.OperationGroups[0].Operations[0]
	assert.Same(t, m.GlobalParameters[0], op.Parameters[0])
	assert.Same(t, op.SignatureParameters[0], op.Requests[0].Parameters[0])
	assert.Equal(t, widget.ID, op.Responses[0].Schema)
	require.NoError(t, Validate(m))
}

func TestEncodeRoundTrip(t *testing.T) {
	m, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(m, format)
			require.NoError(t, err)
			back, err := Decode(data)
			require.NoError(t, err)

			assert.Equal(t, ToDocument(m), ToDocument(back))
			op := back.OperationGroups[0].Operations[0]
			assert.Same(t, back.GlobalParameters[0], op.Parameters[0])
		})
	}
}

func TestDecodeUnknownSchema(t *testing.T) {
	_, err := Decode([]byte(`{"name":"C","schemas":[{"id":"a","type":"array","name":"A","elementType":"missing"}]}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSchema)
}

func TestDecodeUnknownParameterRef(t *testing.T) {
	_, err := Decode([]byte(`
name: C
operationGroups:
  - name: G
    operations:
      - name: op
        parameters:
          - $ref: global/3
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestCloneIsIndependent(t *testing.T) {
	m, err := Decode([]byte(sampleYAML))
	require.NoError(t, err)

	c, err := Clone(m)
	require.NoError(t, err)
	c.FindSchema("Widget", TypeObject).Name = "Gadget"
	c.OperationGroups[0].Name = "Gadgets"

	assert.NotNil(t, m.FindSchema("Widget", TypeObject))
	assert.Equal(t, "Widgets", m.OperationGroups[0].Name)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{".yaml", FormatYAML, false},
		{"yml", FormatYAML, false},
		{".JSON", FormatJSON, false},
		{".xml", "", true},
	}
	for _, test := range tests {
		got, err := ParseFormat(test.input)
		if test.wantErr {
			assert.Error(t, err, test.input)
			continue
		}
		assert.NoError(t, err, test.input)
		assert.Equal(t, test.expected, got, test.input)
	}
}
