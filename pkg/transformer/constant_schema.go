package transformer

import (
	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// ConstantSchemaOptimization turns optional constants into single-value enums,
// so callers can leave them unset.
type ConstantSchemaOptimization struct {
	log zerolog.Logger
}

// NewConstantSchemaOptimization creates the pass
func NewConstantSchemaOptimization(log zerolog.Logger) *ConstantSchemaOptimization {
	return &ConstantSchemaOptimization{log: log.With().Str("pass", "constant-schema-optimization").Logger()}
}

// Name implements Pass
func (o *ConstantSchemaOptimization) Name() string { return "constant-schema-optimization" }

// Process implements Pass
func (o *ConstantSchemaOptimization) Process(m *codemodel.CodeModel) {
	choices := map[codemodel.SchemaID]codemodel.SchemaID{}
	convert := func(ref *codemodel.SchemaID) {
		s := m.Schema(*ref)
		if s == nil || s.Type != codemodel.TypeConstant {
			return
		}
		if id, ok := choices[s.ID]; ok {
			*ref = id
			return
		}
		choice := &codemodel.Schema{
			Type:           codemodel.TypeChoice,
			Name:           s.Name,
			SerializedName: s.SerializedName,
			Description:    s.Description,
			ChoiceType:     s.ChoiceType,
			Choices:        []codemodel.ChoiceValue{{Value: s.ConstantValue, Name: s.ConstantValue, Description: s.Description}},
			Usage:          append([]codemodel.SchemaUsage(nil), s.Usage...),
		}
		if choice.ChoiceType == "" {
			choice.ChoiceType = codemodel.TypeString
		}
		choices[s.ID] = m.AddSchema(choice)
		o.log.Info().Str("schema", s.Name).Str("value", s.ConstantValue).Msg("Convert optional constant to enum")
		*ref = choices[s.ID]
	}

	for _, s := range m.ObjectSchemas() {
		for _, p := range s.Properties {
			if !p.Required {
				convert(&p.Schema)
			}
		}
	}
	seen := map[*codemodel.Parameter]bool{}
	for _, op := range m.Operations() {
		for _, p := range op.AllParameters() {
			if !seen[p] && !p.Required {
				seen[p] = true
				convert(&p.Schema)
			}
		}
	}
}
