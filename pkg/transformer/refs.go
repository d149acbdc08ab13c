package transformer

import "github.com/blimu-dev/fluentnamer/pkg/codemodel"

// forEachReference calls fn with a pointer to every schema reference held by
// properties, collection elements, discriminators, parameters, responses and headers.
// Relation edges are not references.
func forEachReference(m *codemodel.CodeModel, fn func(ref *codemodel.SchemaID)) {
	for _, s := range m.LiveSchemas() {
		if s.ElementType != codemodel.NoSchema {
			fn(&s.ElementType)
		}
		for _, p := range s.Properties {
			fn(&p.Schema)
		}
		if s.Discriminator != nil {
			for k, id := range s.Discriminator.Values {
				fn(&id)
				s.Discriminator.Values[k] = id
			}
		}
	}
	seen := map[*codemodel.Parameter]bool{}
	param := func(p *codemodel.Parameter) {
		if !seen[p] {
			seen[p] = true
			fn(&p.Schema)
		}
	}
	for _, p := range m.GlobalParameters {
		param(p)
	}
	for _, op := range m.Operations() {
		for _, p := range op.AllParameters() {
			param(p)
		}
		for _, p := range op.SignatureParameters {
			param(p)
		}
		for _, r := range op.Requests {
			for _, p := range r.SignatureParameters {
				param(p)
			}
		}
		for _, r := range append(append([]*codemodel.Response(nil), op.Responses...), op.Exceptions...) {
			if r.Schema != codemodel.NoSchema {
				fn(&r.Schema)
			}
			for _, h := range r.Headers {
				fn(&h.Schema)
			}
		}
	}
}

// replaceReferences points every reference to from at to instead
func replaceReferences(m *codemodel.CodeModel, from, to codemodel.SchemaID) {
	forEachReference(m, func(ref *codemodel.SchemaID) {
		if *ref == from {
			*ref = to
		}
	})
}

// isReferenced reports whether any reference points at id
func isReferenced(m *codemodel.CodeModel, id codemodel.SchemaID) bool {
	found := false
	forEachReference(m, func(ref *codemodel.SchemaID) {
		if *ref == id {
			found = true
		}
	})
	return found
}
