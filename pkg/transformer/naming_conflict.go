package transformer

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
	"github.com/blimu-dev/fluentnamer/pkg/utils"
)

const (
	managementClientSuffix     = "ManagementClient"
	mainManagementClientSuffix = "MainManagementClient"
	enumConflictSuffix         = "Value"
)

// NamingConflictResolver keeps operation group, client, object and enum names
// distinct under case folding.
type NamingConflictResolver struct {
	suffix string
	log    zerolog.Logger
}

// NewNamingConflictResolver creates the pass. suffix disambiguates colliding operation groups.
func NewNamingConflictResolver(suffix string, log zerolog.Logger) *NamingConflictResolver {
	return &NamingConflictResolver{suffix: suffix, log: log.With().Str("pass", "naming-conflict-resolver").Logger()}
}

// Name implements Pass
func (r *NamingConflictResolver) Name() string { return "naming-conflict-resolver" }

// Process implements Pass
func (r *NamingConflictResolver) Process(m *codemodel.CodeModel) {
	objectNames := map[string]bool{}
	for _, s := range m.ObjectSchemas() {
		objectNames[utils.Fold(s.Name)] = true
	}

	groupNames := map[string]bool{}
	taken := func(name string) bool {
		key := groupKey(name)
		return objectNames[key] || groupNames[key]
	}
	for _, og := range m.OperationGroups {
		if taken(og.Name) {
			base := utils.Plural(og.Name) + r.suffix
			newName := base
			for i := 1; taken(newName) && i < 100; i++ {
				newName = base + strconv.Itoa(i)
			}
			r.log.Info().Str("from", og.Name).Str("to", newName).Msg("Rename operation group to avoid conflict")
			og.Name = newName
		}
		groupNames[groupKey(og.Name)] = true
	}

	client := utils.Fold(m.Name)
	if objectNames[client] || groupNames[client] || groupNames[groupKey(m.Name)] {
		newName := m.Name + managementClientSuffix
		if strings.HasSuffix(m.Name, managementClientSuffix) {
			newName = strings.TrimSuffix(m.Name, managementClientSuffix) + mainManagementClientSuffix
		}
		r.log.Info().Str("from", m.Name).Str("to", newName).Msg("Rename client to avoid conflict")
		m.Name = newName
	}

	enumNames := map[string]bool{}
	for _, s := range m.EnumSchemas() {
		enumNames[utils.Fold(s.Name)] = true
	}
	schemaTaken := func(name string) bool {
		key := utils.Fold(name)
		return objectNames[key] || enumNames[key]
	}
	for _, s := range m.EnumSchemas() {
		if !objectNames[utils.Fold(s.Name)] {
			continue
		}
		base := s.Name + enumConflictSuffix
		newName := base
		for i := 1; schemaTaken(newName) && i < 100; i++ {
			newName = base + strconv.Itoa(i)
		}
		r.log.Info().Str("from", s.Name).Str("to", newName).Msg("Rename enum to avoid conflict")
		s.Name = newName
		enumNames[utils.Fold(newName)] = true
	}
}

// groupKey is the case-folded plural form operation group names are compared by
func groupKey(name string) string {
	return utils.Fold(utils.Plural(name))
}
