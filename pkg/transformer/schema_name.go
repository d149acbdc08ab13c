package transformer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/utils"
)

// Synthetic names the upstream parser gives to anonymous schemas
var (
	anonymousAdditionalProperties = regexp.MustCompile(`^Components\w*Additionalproperties$`)
	anonymousBaseType             = regexp.MustCompile(`^Components\w*Allof\d*$`)
	anonymousArrayItem            = regexp.MustCompile(`^Components\w*Items$`)
	anonymousEnum                 = regexp.MustCompile(`^Enum\d+$`)
	anonymousRequestBody          = regexp.MustCompile(`^Paths\w*Requestbody\w*Schema$`)
)

// SchemaNameNormalization applies the naming override plan to every name and
// gives readable names to anonymous schemas.
type SchemaNameNormalization struct {
	plan             map[string]string
	keys             []string
	deduplicateEnums bool
	log              zerolog.Logger
}

// NewSchemaNameNormalization creates the pass. Every override is also applied with its
// first letter lower-cased and upper-cased.
func NewSchemaNameNormalization(namingOverride map[string]string, deduplicateEnums bool, log zerolog.Logger) *SchemaNameNormalization {
	plan := map[string]string{}
	for k, v := range namingOverride {
		plan[k] = v
	}
	for k, v := range namingOverride {
		if lk := utils.LowerFirst(k); plan[lk] == "" {
			plan[lk] = utils.LowerFirst(v)
		}
		if uk := utils.UpperFirst(k); plan[uk] == "" {
			plan[uk] = utils.UpperFirst(v)
		}
	}
	keys := make([]string, 0, len(plan))
	for k := range plan {
		if k != "" {
			keys = append(keys, k)
		}
	}
	// longer keys first, so "lowerCase" applies before "lower"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return &SchemaNameNormalization{
		plan:             plan,
		keys:             keys,
		deduplicateEnums: deduplicateEnums,
		log:              log.With().Str("pass", "schema-name-normalization").Logger(),
	}
}

// Name implements Pass
func (n *SchemaNameNormalization) Name() string { return "schema-name-normalization" }

// Process implements Pass
func (n *SchemaNameNormalization) Process(m *codemodel.CodeModel) {
	if len(n.keys) > 0 {
		n.applyOverrides(m)
	}

	names := map[string]bool{}
	for _, s := range append(m.ObjectSchemas(), m.EnumSchemas()...) {
		names[s.Name] = true
	}
	n.normalizeAdditionalProperties(m, names)
	n.normalizeAnonymousBaseTypes(m, names)
	n.normalizeAnonymousArrayItems(m, names)
	n.normalizeAnonymousEnums(m, names)
	n.normalizeAnonymousRequestBodies(m, names)
}

// OverrideName applies the plan to a single name
func (n *SchemaNameNormalization) OverrideName(name string) string {
	newName := name
	if name == "" {
		return newName
	}
	for _, key := range n.keys {
		index := strings.Index(newName, key)
		if index >= 0 && wordMatch(newName, key, index) {
			newName = strings.ReplaceAll(newName, key, n.plan[key])
		}
	}
	return newName
}

// wordMatch rejects a match that continues a word on either side: the character
// before the match has the same case as its first character, or the character after
// it has the same case as its last.
func wordMatch(name, key string, index int) bool {
	r := []rune(name)
	start := len([]rune(name[:index]))
	end := start + len([]rune(key))
	if start > 0 && sameCase(r[start-1], r[start]) {
		return false
	}
	if end < len(r) && sameCase(r[end-1], r[end]) {
		return false
	}
	return true
}

func sameCase(a, b rune) bool {
	return (unicode.IsLower(a) && unicode.IsLower(b)) || (unicode.IsUpper(a) && unicode.IsUpper(b))
}

func (n *SchemaNameNormalization) override(kind string, name *string) {
	if newName := n.OverrideName(*name); newName != *name {
		n.log.Info().Str("kind", kind).Str("from", *name).Str("to", newName).Msg("Override name")
		*name = newName
	}
}

func (n *SchemaNameNormalization) applyOverrides(m *codemodel.CodeModel) {
	n.override("client", &m.Name)
	for _, s := range m.ObjectSchemas() {
		n.override("object", &s.Name)
		for _, p := range s.Properties {
			n.override("property", &p.Name)
		}
	}
	for _, s := range m.EnumSchemas() {
		n.override("enum", &s.Name)
	}
	for _, s := range m.Resolve(m.Schemas.Dictionaries) {
		n.override("dictionary", &s.Name)
	}
	seen := map[*codemodel.Parameter]bool{}
	for _, og := range m.OperationGroups {
		n.override("operation group", &og.Name)
		for _, op := range og.Operations {
			n.override("operation", &op.Name)
			for _, p := range op.AllParameters() {
				if !seen[p] {
					seen[p] = true
					n.override("parameter", &p.Name)
				}
			}
			for _, r := range op.Responses {
				for _, h := range r.Headers {
					newName := n.OverrideName(h.Name)
					if newName == h.Name {
						continue
					}
					// header names only change case, the wire name must stay recognizable
					if strings.EqualFold(newName, h.Name) {
						h.Name = newName
					} else {
						n.log.Warn().Str("header", h.Name).Str("to", newName).Msg("Abort overriding response header name")
					}
				}
			}
		}
	}
}

func (n *SchemaNameNormalization) rename(s *codemodel.Schema, newName string, names map[string]bool) {
	n.log.Info().Str("from", s.Name).Str("to", newName).Msg("Rename schema")
	s.Name = newName
	names[newName] = true
}

func deduplicateName(names map[string]bool, name string) string {
	if !names[name] {
		return name
	}
	for i := 1; i < 100; i++ {
		candidate := name + strconv.Itoa(i)
		if !names[candidate] {
			return candidate
		}
	}
	return name
}

func (n *SchemaNameNormalization) normalizeAdditionalProperties(m *codemodel.CodeModel, names map[string]bool) {
	for _, dict := range m.Resolve(m.Schemas.Dictionaries) {
		elem := m.Schema(dict.ElementType)
		if elem == nil || elem.Type != codemodel.TypeObject || !anonymousAdditionalProperties.MatchString(elem.Name) {
			continue
		}
		n.rename(elem, deduplicateName(names, dict.Name), names)
		for _, c := range m.Resolve(elem.Children.All) {
			if anonymousAdditionalProperties.MatchString(c.Name) {
				n.rename(c, deduplicateName(names, dict.Name), names)
			}
		}
	}
}

func (n *SchemaNameNormalization) normalizeAnonymousBaseTypes(m *codemodel.CodeModel, names map[string]bool) {
	for _, s := range m.ObjectSchemas() {
		if !anonymousBaseType.MatchString(s.Name) || len(s.Children.Immediate) == 0 {
			continue
		}
		child := m.Schema(s.Children.Immediate[0])
		if child == nil {
			continue
		}
		n.rename(s, deduplicateName(names, "Base"+child.Name), names)
	}
}

func (n *SchemaNameNormalization) normalizeAnonymousArrayItems(m *codemodel.CodeModel, names map[string]bool) {
	for _, s := range m.ObjectSchemas() {
		if anonymousArrayItem.MatchString(s.Name) {
			n.renameFromOwner(m, s, names, true)
		}
	}
}

func (n *SchemaNameNormalization) normalizeAnonymousEnums(m *codemodel.CodeModel, names map[string]bool) {
	for _, s := range m.EnumSchemas() {
		if anonymousEnum.MatchString(s.Name) {
			n.renameFromOwner(m, s, names, n.deduplicateEnums)
		}
	}
}

func (n *SchemaNameNormalization) normalizeAnonymousRequestBodies(m *codemodel.CodeModel, names map[string]bool) {
	for _, og := range m.OperationGroups {
		for _, op := range og.Operations {
			for _, req := range op.Requests {
				for _, p := range req.Parameters {
					if p.Location != codemodel.LocationBody {
						continue
					}
					s := m.Schema(p.Schema)
					if s != nil && s.Type == codemodel.TypeObject && anonymousRequestBody.MatchString(s.Name) {
						newName := utils.PascalIdentifier(og.Name) + utils.PascalIdentifier(op.Name) + "RequestBody"
						n.rename(s, deduplicateName(names, newName), names)
					}
					break
				}
			}
		}
	}
}

// renameFromOwner derives a name from whatever refers to the schema: an object
// property (directly or as array element) or an operation parameter.
func (n *SchemaNameNormalization) renameFromOwner(m *codemodel.CodeModel, s *codemodel.Schema, names map[string]bool, deduplicate bool) {
	newName := ownerDerivedName(m, s.ID)
	if newName == "" {
		return
	}
	if deduplicate {
		newName = deduplicateName(names, newName)
	}
	n.rename(s, newName, names)
}

func ownerDerivedName(m *codemodel.CodeModel, id codemodel.SchemaID) string {
	isArrayOf := func(ref codemodel.SchemaID) bool {
		a := m.Schema(ref)
		return a != nil && a.Type == codemodel.TypeArray && a.ElementType == id
	}
	objects := m.ObjectSchemas()
	for _, o := range objects {
		for _, p := range o.Properties {
			if p.Schema == id {
				return o.Name + utils.PascalIdentifier(p.SerializedName)
			}
		}
	}
	for _, o := range objects {
		for _, p := range o.Properties {
			if isArrayOf(p.Schema) {
				return o.Name + utils.PascalIdentifier(utils.Singular(p.SerializedName))
			}
		}
	}
	for _, og := range m.OperationGroups {
		for _, op := range og.Operations {
			for _, p := range op.AllParameters() {
				if p.Schema == id {
					return utils.PascalIdentifier(og.Name) + utils.PascalIdentifier(p.SerializedName)
				}
			}
		}
	}
	for _, og := range m.OperationGroups {
		for _, op := range og.Operations {
			for _, p := range op.AllParameters() {
				if isArrayOf(p.Schema) {
					return utils.PascalIdentifier(og.Name) + utils.PascalIdentifier(utils.Singular(p.SerializedName))
				}
			}
		}
	}
	return ""
}
