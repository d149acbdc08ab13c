// Package report summarizes what the transformation pipeline changed in a code model.
//
// Schemas are matched by id, so before must be a snapshot of the input taken
// before any pass removed a schema (codemodel.Clone of a freshly built or decoded
// model keeps ids). Operations are matched by the method and path of their first request.
package report

import (
	"sort"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// TypeCount is the number of listed schemas of one type before and after
type TypeCount struct {
	Type   codemodel.SchemaType
	Before int
	After  int
}

// SchemaChange is a renamed schema
type SchemaChange struct {
	Type   codemodel.SchemaType
	Before string
	After  string
}

// SchemaRef names a schema and its type
type SchemaRef struct {
	Type codemodel.SchemaType
	Name string
}

// GroupChange is a renamed operation group
type GroupChange struct {
	Before string
	After  string
}

// OperationChange is an operation whose group or name changed
type OperationChange struct {
	Method      string
	Path        string
	BeforeGroup string
	BeforeName  string
	AfterGroup  string
	AfterName   string
}

// ParentAssignment is a schema that now inherits from a runtime-provided base type
type ParentAssignment struct {
	Schema string
	Parent string
}

// Summary is the data rendered into the report
type Summary struct {
	Name             string
	Counts           []TypeCount
	Renamed          []SchemaChange
	Removed          []SchemaRef
	RenamedGroups    []GroupChange
	RemovedGroups    []string
	Operations       []OperationChange
	CanonicalParents []ParentAssignment
}

// countedTypes are the schema types listed in the counts table
var countedTypes = []codemodel.SchemaType{
	codemodel.TypeObject,
	codemodel.TypeArray,
	codemodel.TypeDictionary,
	codemodel.TypeChoice,
	codemodel.TypeSealedChoice,
	codemodel.TypeConstant,
}

// Summarize compares the input snapshot with the transformed model
func Summarize(before, after *codemodel.CodeModel) *Summary {
	s := &Summary{Name: after.Name}
	for _, t := range countedTypes {
		s.Counts = append(s.Counts, TypeCount{Type: t, Before: countType(before, t), After: countType(after, t)})
	}

	for _, b := range before.LiveSchemas() {
		if b.External || !countable(b.Type) {
			continue
		}
		a := after.Schema(b.ID)
		switch {
		case a == nil:
			s.Removed = append(s.Removed, SchemaRef{Type: b.Type, Name: b.Name})
		case a.Name != b.Name:
			s.Renamed = append(s.Renamed, SchemaChange{Type: a.Type, Before: b.Name, After: a.Name})
		}
	}
	sort.Slice(s.Removed, func(i, j int) bool { return s.Removed[i].Name < s.Removed[j].Name })
	sort.Slice(s.Renamed, func(i, j int) bool { return s.Renamed[i].Before < s.Renamed[j].Before })

	s.summarizeOperations(before, after)

	for _, o := range after.ObjectSchemas() {
		for _, p := range after.Resolve(o.Parents.Immediate) {
			if p.External {
				s.CanonicalParents = append(s.CanonicalParents, ParentAssignment{Schema: o.Name, Parent: p.Name})
			}
		}
	}
	sort.Slice(s.CanonicalParents, func(i, j int) bool { return s.CanonicalParents[i].Schema < s.CanonicalParents[j].Schema })
	return s
}

// Changed reports whether the transformation changed anything the report lists
func (s *Summary) Changed() bool {
	return len(s.Renamed)+len(s.Removed)+len(s.RenamedGroups)+len(s.RemovedGroups)+
		len(s.Operations)+len(s.CanonicalParents) > 0
}

type operationKey struct {
	method string
	path   string
}

type located struct {
	group string
	name  string
}

func keyOf(op *codemodel.Operation) (operationKey, bool) {
	if len(op.Requests) == 0 {
		return operationKey{}, false
	}
	return operationKey{method: op.Requests[0].Method, path: op.Requests[0].Path}, true
}

func (s *Summary) summarizeOperations(before, after *codemodel.CodeModel) {
	afterOps := map[operationKey]located{}
	for _, og := range after.OperationGroups {
		for _, op := range og.Operations {
			if k, ok := keyOf(op); ok {
				afterOps[k] = located{group: og.Name, name: op.Name}
			}
		}
	}

	for _, og := range before.OperationGroups {
		groups := map[string]bool{}
		for _, op := range og.Operations {
			k, ok := keyOf(op)
			if !ok {
				continue
			}
			a, ok := afterOps[k]
			if !ok {
				continue
			}
			groups[a.group] = true
			if a.group != og.Name || a.name != op.Name {
				s.Operations = append(s.Operations, OperationChange{
					Method:      k.method,
					Path:        k.path,
					BeforeGroup: og.Name,
					BeforeName:  op.Name,
					AfterGroup:  a.group,
					AfterName:   a.name,
				})
			}
		}
		switch {
		case len(groups) == 0:
			s.RemovedGroups = append(s.RemovedGroups, og.Name)
		case len(groups) == 1 && !groups[og.Name]:
			for name := range groups {
				s.RenamedGroups = append(s.RenamedGroups, GroupChange{Before: og.Name, After: name})
			}
		}
	}
}

func countable(t codemodel.SchemaType) bool {
	for _, c := range countedTypes {
		if c == t {
			return true
		}
	}
	return false
}

func countType(m *codemodel.CodeModel, t codemodel.SchemaType) int {
	n := 0
	for _, s := range m.LiveSchemas() {
		if s.Type == t && !s.External {
			n++
		}
	}
	return n
}
