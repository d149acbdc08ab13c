package transformer

import (
	"strings"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

func (t *Transformer) removeXMLFormat(m *codemodel.CodeModel) {
	for _, s := range m.ObjectSchemas() {
		if len(s.SerializationFormats) == 0 {
			continue
		}
		formats := s.SerializationFormats[:0]
		for _, f := range s.SerializationFormats {
			if f != "xml" {
				formats = append(formats, f)
			}
		}
		s.SerializationFormats = formats
	}
}

// deduplicateOperations collapses repeated operations in the "Operations" group,
// which specs that merge several files tend to carry more than once.
func (t *Transformer) deduplicateOperations(m *codemodel.CodeModel) {
	for _, og := range m.OperationGroups {
		if !strings.EqualFold(og.Name, "Operations") {
			continue
		}
		seen := map[string]bool{}
		var kept, unnamed []*codemodel.Operation
		for _, op := range og.Operations {
			if op.Name == "" {
				unnamed = append(unnamed, op)
				continue
			}
			if seen[op.Name] {
				continue
			}
			seen[op.Name] = true
			kept = append(kept, op)
		}
		kept = append(kept, unnamed...)
		if len(kept) != len(og.Operations) {
			t.log.Warn().Str("group", og.Name).Int("before", len(og.Operations)).Int("after", len(kept)).
				Msg("Duplicate operations removed")
			og.Operations = kept
		}
	}
}

// normalizeParameterLocation demotes client path and query parameters other than
// subscriptionId and api-version to method parameters.
func (t *Transformer) normalizeParameterLocation(m *codemodel.CodeModel) {
	var modified []*codemodel.Parameter
	for _, p := range m.GlobalParameters {
		if p.Implementation != codemodel.ImplementationClient {
			continue
		}
		if (p.Location == codemodel.LocationPath && !strings.EqualFold(p.SerializedName, "subscriptionId")) ||
			(p.Location == codemodel.LocationQuery && !strings.EqualFold(p.SerializedName, "api-version")) {
			t.log.Warn().Str("parameter", p.SerializedName).Msg("Modify parameter implementation from CLIENT to METHOD")
			p.Implementation = codemodel.ImplementationMethod
			modified = append(modified, p)
		}
	}
	if len(modified) == 0 {
		return
	}
	for _, op := range m.Operations() {
		for _, p := range modified {
			if containsParameter(op.Parameters, p) && !containsParameter(op.SignatureParameters, p) {
				op.SignatureParameters = append(op.SignatureParameters, p)
			}
		}
	}
}

func (t *Transformer) renameUngroupedOperationGroup(m *codemodel.CodeModel) {
	name := t.settings.NameForUngroupedOperations
	if name == "" {
		return
	}
	for _, og := range m.OperationGroups {
		if og.Name == "" {
			t.log.Info().Str("to", name).Msg("Rename ungrouped operation group")
			og.Name = name
		}
	}
}

func (t *Transformer) renameHostParameter(m *codemodel.CodeModel) {
	for _, p := range m.GlobalParameters {
		if p.SerializedName == "$host" {
			p.Name = "endpoint"
		}
	}
}

func (t *Transformer) transformSubscriptionIDUUID(m *codemodel.CodeModel) {
	for _, p := range m.GlobalParameters {
		if p.SerializedName != "subscriptionId" {
			continue
		}
		s := m.Schema(p.Schema)
		if s == nil || s.Type != codemodel.TypeUUID {
			continue
		}
		str := &codemodel.Schema{
			Type:           codemodel.TypeString,
			Name:           s.Name,
			SerializedName: s.SerializedName,
			Description:    s.Description,
			Summary:        s.Summary,
			Usage:          append([]codemodel.SchemaUsage(nil), s.Usage...),
			Extensions:     s.Extensions,
		}
		p.Schema = m.AddSchema(str)
		t.log.Info().Str("parameter", p.SerializedName).Msg("Coerce UUID schema to string")
	}
}

func containsParameter(params []*codemodel.Parameter, p *codemodel.Parameter) bool {
	for _, x := range params {
		if x == p {
			return true
		}
	}
	return false
}
