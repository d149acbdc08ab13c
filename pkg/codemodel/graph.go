package codemodel

// Schema returns the live schema with the given id, or nil when the id is absent or removed
func (m *CodeModel) Schema(id SchemaID) *Schema {
	if id <= 0 || int(id) > len(m.Schemas.Nodes) {
		return nil
	}
	return m.Schemas.Nodes[id-1]
}

// AddSchema stores s in the arena and returns its id.
// Schemas that are not external are also listed under their variant.
func (m *CodeModel) AddSchema(s *Schema) SchemaID {
	m.Schemas.Nodes = append(m.Schemas.Nodes, s)
	s.ID = SchemaID(len(m.Schemas.Nodes))
	if !s.External {
		l := m.Schemas.list(s.Type)
		*l = append(*l, s.ID)
	}
	return s.ID
}

// RemoveSchema drops a schema from the arena and from its variant list,
// detaching it from its parents and children on both sides.
func (m *CodeModel) RemoveSchema(id SchemaID) {
	s := m.Schema(id)
	if s == nil {
		return
	}
	for _, p := range append([]SchemaID(nil), s.Parents.Immediate...) {
		m.unlink(id, p)
	}
	for _, c := range append([]SchemaID(nil), s.Children.Immediate...) {
		m.unlink(c, id)
	}
	if !s.External {
		l := m.Schemas.list(s.Type)
		*l = removeID(*l, id)
	}
	m.Schemas.Nodes[id-1] = nil
	m.RebuildRelations()
}

// Resolve maps ids to live schemas, skipping removed ones
func (m *CodeModel) Resolve(ids []SchemaID) []*Schema {
	out := make([]*Schema, 0, len(ids))
	for _, id := range ids {
		if s := m.Schema(id); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// ObjectSchemas returns the listed object schemas
func (m *CodeModel) ObjectSchemas() []*Schema {
	return m.Resolve(m.Schemas.Objects)
}

// EnumSchemas returns the listed choice and sealed-choice schemas
func (m *CodeModel) EnumSchemas() []*Schema {
	return append(m.Resolve(m.Schemas.Choices), m.Resolve(m.Schemas.SealedChoices)...)
}

// LiveSchemas returns every schema still in the arena, external ones included
func (m *CodeModel) LiveSchemas() []*Schema {
	out := make([]*Schema, 0, len(m.Schemas.Nodes))
	for _, s := range m.Schemas.Nodes {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// FindSchema returns the first listed schema of the given types with the given name
func (m *CodeModel) FindSchema(name string, types ...SchemaType) *Schema {
	for _, t := range types {
		for _, s := range m.Resolve(*m.Schemas.list(t)) {
			if s.Name == name {
				return s
			}
		}
	}
	return nil
}

// FindExternal returns the external schema with the given name, or nil
func (m *CodeModel) FindExternal(name string) *Schema {
	for _, s := range m.Schemas.Nodes {
		if s != nil && s.External && s.Name == name {
			return s
		}
	}
	return nil
}

// ElementOf unwraps arrays and dictionaries down to their innermost element schema
func (m *CodeModel) ElementOf(id SchemaID) *Schema {
	seen := map[SchemaID]bool{}
	s := m.Schema(id)
	for s != nil && s.IsCollection() && !seen[s.ID] {
		seen[s.ID] = true
		s = m.Schema(s.ElementType)
	}
	return s
}

// ObjectParent returns the first immediate parent that is an object schema
func (m *CodeModel) ObjectParent(s *Schema) *Schema {
	for _, p := range m.Resolve(s.Parents.Immediate) {
		if p.Type == TypeObject {
			return p
		}
	}
	return nil
}

// AddParent appends parent to the child's immediate parents
func (m *CodeModel) AddParent(child, parent SchemaID) {
	m.InsertParent(child, parent, -1)
}

// InsertParent links child under parent, placing parent at index in the child's
// immediate parents (negative index appends). Both sides are updated.
func (m *CodeModel) InsertParent(child, parent SchemaID, index int) {
	c, p := m.Schema(child), m.Schema(parent)
	if c == nil || p == nil || child == parent || containsID(c.Parents.Immediate, parent) {
		return
	}
	if index < 0 || index >= len(c.Parents.Immediate) {
		c.Parents.Immediate = append(c.Parents.Immediate, parent)
	} else {
		c.Parents.Immediate = append(c.Parents.Immediate[:index], append([]SchemaID{parent}, c.Parents.Immediate[index:]...)...)
	}
	if !containsID(p.Children.Immediate, child) {
		p.Children.Immediate = append(p.Children.Immediate, child)
	}
	m.RebuildRelations()
}

// RemoveParent unlinks child from parent on both sides
func (m *CodeModel) RemoveParent(child, parent SchemaID) {
	m.unlink(child, parent)
	m.RebuildRelations()
}

// SetParents replaces the child's immediate parents
func (m *CodeModel) SetParents(child SchemaID, parents ...SchemaID) {
	c := m.Schema(child)
	if c == nil {
		return
	}
	for _, p := range append([]SchemaID(nil), c.Parents.Immediate...) {
		m.unlink(child, p)
	}
	for _, p := range parents {
		m.InsertParent(child, p, -1)
	}
	m.RebuildRelations()
}

// MoveChildren re-parents every immediate child of from onto to
func (m *CodeModel) MoveChildren(from, to SchemaID) {
	f := m.Schema(from)
	if f == nil || m.Schema(to) == nil || from == to {
		return
	}
	for _, c := range append([]SchemaID(nil), f.Children.Immediate...) {
		m.unlink(c, from)
		m.InsertParent(c, to, -1)
	}
	m.RebuildRelations()
}

func (m *CodeModel) unlink(child, parent SchemaID) {
	if c := m.Schema(child); c != nil {
		c.Parents.Immediate = removeID(c.Parents.Immediate, parent)
	}
	if p := m.Schema(parent); p != nil {
		p.Children.Immediate = removeID(p.Children.Immediate, child)
	}
}

// RebuildRelations recomputes the transitive All lists from the immediate edges.
// Ancestors are listed depth-first in immediate-parent order, so the first
// immediate parent and its own ancestors come first.
func (m *CodeModel) RebuildRelations() {
	for _, s := range m.Schemas.Nodes {
		if s == nil {
			continue
		}
		s.Parents.Immediate = m.liveIDs(s.Parents.Immediate)
		s.Children.Immediate = m.liveIDs(s.Children.Immediate)
	}
	for _, s := range m.Schemas.Nodes {
		if s == nil {
			continue
		}
		s.Parents.All = m.closure(s.ID, func(x *Schema) []SchemaID { return x.Parents.Immediate })
		s.Children.All = m.closure(s.ID, func(x *Schema) []SchemaID { return x.Children.Immediate })
	}
}

func (m *CodeModel) closure(start SchemaID, next func(*Schema) []SchemaID) []SchemaID {
	var out []SchemaID
	visited := map[SchemaID]bool{start: true}
	var walk func(id SchemaID)
	walk = func(id SchemaID) {
		s := m.Schema(id)
		if s == nil {
			return
		}
		for _, n := range next(s) {
			if visited[n] {
				continue
			}
			visited[n] = true
			out = append(out, n)
			walk(n)
		}
	}
	walk(start)
	return out
}

func (m *CodeModel) liveIDs(ids []SchemaID) []SchemaID {
	out := ids[:0]
	for _, id := range ids {
		if m.Schema(id) != nil {
			out = append(out, id)
		}
	}
	return out
}

func (ss *Schemas) list(t SchemaType) *[]SchemaID {
	switch t {
	case TypeObject:
		return &ss.Objects
	case TypeArray:
		return &ss.Arrays
	case TypeDictionary:
		return &ss.Dictionaries
	case TypeChoice:
		return &ss.Choices
	case TypeSealedChoice:
		return &ss.SealedChoices
	case TypeConstant:
		return &ss.Constants
	default:
		return &ss.Primitives
	}
}

func containsID(ids []SchemaID, id SchemaID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []SchemaID, id SchemaID) []SchemaID {
	out := make([]SchemaID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
