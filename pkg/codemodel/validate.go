package codemodel

import (
	"errors"
	"fmt"
)

var (
	// ErrDanglingReference is reported for a reference to a schema that is no longer in the graph
	ErrDanglingReference = errors.New("dangling schema reference")
	// ErrAsymmetricRelation is reported when a parent edge has no matching child edge, or the reverse
	ErrAsymmetricRelation = errors.New("asymmetric relation")
)

// Validate checks the structural invariants of the graph: every schema reference
// resolves to a live schema and every parent/child edge is mirrored on the other side.
// All problems found are joined into the returned error.
func Validate(m *CodeModel) error {
	var errs []error
	check := func(id SchemaID, where string) {
		if id != NoSchema && m.Schema(id) == nil {
			errs = append(errs, fmt.Errorf("%w: %s -> %d", ErrDanglingReference, where, id))
		}
	}

	for _, s := range m.LiveSchemas() {
		check(s.ElementType, s.Name+".elementType")
		for _, p := range s.Properties {
			check(p.Schema, s.Name+"."+p.SerializedName)
		}
		if s.Discriminator != nil {
			for v, id := range s.Discriminator.Values {
				check(id, fmt.Sprintf("%s.discriminator[%s]", s.Name, v))
			}
		}
		for _, pid := range s.Parents.Immediate {
			p := m.Schema(pid)
			if p == nil {
				errs = append(errs, fmt.Errorf("%w: %s.parents -> %d", ErrDanglingReference, s.Name, pid))
				continue
			}
			if !containsID(p.Children.Immediate, s.ID) {
				errs = append(errs, fmt.Errorf("%w: %s lists parent %s, which does not list it as a child", ErrAsymmetricRelation, s.Name, p.Name))
			}
		}
		for _, cid := range s.Children.Immediate {
			c := m.Schema(cid)
			if c == nil {
				errs = append(errs, fmt.Errorf("%w: %s.children -> %d", ErrDanglingReference, s.Name, cid))
				continue
			}
			if !containsID(c.Parents.Immediate, s.ID) {
				errs = append(errs, fmt.Errorf("%w: %s lists child %s, which does not list it as a parent", ErrAsymmetricRelation, s.Name, c.Name))
			}
		}
	}

	for _, p := range m.GlobalParameters {
		check(p.Schema, "global parameter "+p.SerializedName)
	}
	for _, og := range m.OperationGroups {
		for _, op := range og.Operations {
			where := og.Name + "." + op.Name
			for _, p := range op.AllParameters() {
				check(p.Schema, where+" parameter "+p.SerializedName)
			}
			for _, r := range append(append([]*Response(nil), op.Responses...), op.Exceptions...) {
				check(r.Schema, where+" response")
				for _, h := range r.Headers {
					check(h.Schema, where+" header "+h.Header)
				}
			}
		}
	}
	return errors.Join(errs...)
}
