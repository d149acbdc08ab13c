package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Transform holds the settings consumed by the transformer passes
type Transform struct {
	// PreserveModel lists schema names exempt from cleanup
	PreserveModel NameList `yaml:"preserveModel"`
	// RemoveOperationGroup lists operation groups to drop
	RemoveOperationGroup NameList `yaml:"removeOperationGroup"`
	// RenameModel maps schema names to new names ("From:To,From2:To2" or a YAML map)
	RenameModel RenameMap `yaml:"renameModel"`
	// RenameOperationGroup maps operation group names to new names
	RenameOperationGroup RenameMap `yaml:"renameOperationGroup"`
	// NamingOverride is a word-boundary-safe substring rename plan applied to every name
	NamingOverride map[string]string `yaml:"namingOverride"`
	// NameForUngroupedOperations names the operation group that has no name
	NameForUngroupedOperations string `yaml:"nameForUngroupedOperations"`
	// ResourcePropertyAsSubResource downgrades nested resource properties of request payloads to SubResource
	ResourcePropertyAsSubResource bool `yaml:"resourcePropertyAsSubResource"`
	// OperationGroupSuffix disambiguates operation groups that collide with other names
	OperationGroupSuffix string `yaml:"operationGroupSuffix"`
	// DeduplicateAnonymousEnums makes renamed anonymous enums unique like other synthesized names
	DeduplicateAnonymousEnums bool `yaml:"deduplicateAnonymousEnums"`
	// CleanupMaxPasses bounds the schema cleanup fixed-point iteration
	CleanupMaxPasses int `yaml:"cleanupMaxPasses"`
	// LanguageNaming converts names to identifier casing between the pre and post transforms
	LanguageNaming *bool `yaml:"languageNaming"`
}

// DefaultTransform returns the settings used for anything a configuration leaves unset
func DefaultTransform() Transform {
	languageNaming := true
	return Transform{
		OperationGroupSuffix: "Operations",
		CleanupMaxPasses:     5,
		LanguageNaming:       &languageNaming,
	}
}

// LanguageNamingEnabled reports whether language naming runs; it is on unless disabled explicitly
func (t Transform) LanguageNamingEnabled() bool {
	return t.LanguageNaming == nil || *t.LanguageNaming
}

// NameList is a list of names written either as a YAML sequence or a comma-separated string
type NameList []string

// UnmarshalYAML accepts "a,b,c" as well as [a, b, c]
func (l *NameList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = ParseNameList(node.Value)
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return err
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("line %d: expected a list of names", node.Line)
	}
}

// Contains reports whether the list holds the name
func (l NameList) Contains(name string) bool {
	for _, n := range l {
		if n == name {
			return true
		}
	}
	return false
}

// ParseNameList splits a comma-separated list, dropping blanks
func ParseNameList(s string) NameList {
	var out NameList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RenameMap maps old names to new names. It is written either as a YAML map
// or as a "From:To,From2:To2" string.
type RenameMap map[string]string

// UnmarshalYAML accepts "From:To,From2:To2" as well as {From: To}
func (r *RenameMap) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		m, err := ParseRenameMap(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*r = m
		return nil
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return err
		}
		*r = m
		return nil
	default:
		return fmt.Errorf("line %d: expected a rename map", node.Line)
	}
}

// Keys returns the names to rename in sorted order
func (r RenameMap) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseRenameMap parses "From:To,From2:To2"
func ParseRenameMap(s string) (RenameMap, error) {
	out := RenameMap{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, ":")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid rename %q, expected From:To", pair)
		}
		out[from] = to
	}
	return out, nil
}
