package transformer

import (
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blimu-dev/fluentnamer/pkg/codemodel"
)

// Well-known operation names
const (
	MethodNameList                = "list"
	MethodNameListByResourceGroup = "listByResourceGroup"
	MethodNameGetByResourceGroup  = "getByResourceGroup"
	MethodNameDelete              = "delete"
)

const (
	segmentSubscriptions  = "subscriptions"
	segmentResourceGroups = "resourceGroups"
	segmentProviders      = "providers"
)

// nameRule is one row of the well-known name decision table. A rule matches
// when the method and segment count match, every literal is present (case-insensitive)
// at its position and no excluded literal is.
type nameRule struct {
	method   string
	segments int
	literals map[int]string
	excluded map[int]string
	// paged requires the pageable marker and a "value" array in a response
	paged bool
	// reorder swaps the trailing path parameters into resource group first order
	reorder bool
	name    string
}

var resourceGroupProviderLiterals = map[int]string{0: segmentSubscriptions, 2: segmentResourceGroups, 4: segmentProviders}

var wellKnownNameRules = []nameRule{
	{method: http.MethodGet, segments: 8, literals: resourceGroupProviderLiterals, reorder: true, name: MethodNameGetByResourceGroup},
	{method: http.MethodGet, segments: 7, literals: map[int]string{0: segmentSubscriptions, 2: segmentResourceGroups}, paged: true, name: MethodNameListByResourceGroup},
	{method: http.MethodGet, segments: 5, literals: map[int]string{0: segmentSubscriptions}, excluded: map[int]string{2: segmentProviders}, paged: true, name: MethodNameListByResourceGroup},
	{method: http.MethodGet, segments: 5, literals: map[int]string{0: segmentSubscriptions, 2: segmentProviders}, paged: true, name: MethodNameList},
	{method: http.MethodDelete, segments: 8, literals: resourceGroupProviderLiterals, reorder: true, name: MethodNameDelete},
}

func (r nameRule) matchesShape(method string, segments []string) bool {
	if !strings.EqualFold(r.method, method) || len(segments) != r.segments {
		return false
	}
	for i, lit := range r.literals {
		if !strings.EqualFold(segments[i], lit) {
			return false
		}
	}
	for i, lit := range r.excluded {
		if strings.EqualFold(segments[i], lit) {
			return false
		}
	}
	return true
}

// OperationNameNormalization renames operations to the well-known names their URL shape implies
type OperationNameNormalization struct {
	log zerolog.Logger
}

// NewOperationNameNormalization creates the pass
func NewOperationNameNormalization(log zerolog.Logger) *OperationNameNormalization {
	return &OperationNameNormalization{log: log.With().Str("pass", "operation-name-normalization").Logger()}
}

// Name implements Pass
func (n *OperationNameNormalization) Name() string { return "operation-name-normalization" }

// Process implements Pass
func (n *OperationNameNormalization) Process(m *codemodel.CodeModel) {
	for _, og := range m.OperationGroups {
		plan := n.renamePlan(m, og)
		n.dropConflicts(og, plan)
		for _, op := range og.Operations {
			if to, ok := plan[op.Name]; ok {
				n.log.Info().Str("group", og.Name).Str("from", op.Name).Str("to", to).Msg("Rename operation")
				op.Name = to
			}
		}
	}
}

func (n *OperationNameNormalization) renamePlan(m *codemodel.CodeModel, og *codemodel.OperationGroup) map[string]string {
	plan := map[string]string{}
	used := map[string]bool{}
	for _, op := range og.Operations {
		if len(op.Requests) == 0 {
			continue
		}
		req := op.Requests[0]
		segments := strings.Split(strings.Trim(req.Path, "/"), "/")

		for _, rule := range wellKnownNameRules {
			if !rule.matchesShape(req.Method, segments) {
				continue
			}
			// the first rule of a matching shape decides, even when its name is taken
			if used[rule.name] || (rule.paged && !isPossiblePagedList(m, op)) {
				break
			}
			used[rule.name] = true
			if rule.reorder {
				n.normalizePathParameterOrder(op, segments)
			}
			if op.Name != rule.name {
				plan[op.Name] = rule.name
			}
			break
		}
	}
	return plan
}

// dropConflicts removes renames that would leave two operations of the group with the same name
func (n *OperationNameNormalization) dropConflicts(og *codemodel.OperationGroup, plan map[string]string) {
	if len(plan) == 0 {
		return
	}
	count := map[string]int{}
	for _, op := range og.Operations {
		name := op.Name
		if to, ok := plan[name]; ok {
			name = to
		}
		count[name]++
	}
	var conflicts []string
	for name, c := range count {
		if c > 1 {
			conflicts = append(conflicts, name)
		}
	}
	if len(conflicts) == 0 {
		return
	}
	sort.Strings(conflicts)
	n.log.Warn().Str("group", og.Name).Strs("names", conflicts).Msg("Conflict operation name found after normalization, abort renaming")
	for from, to := range plan {
		for _, c := range conflicts {
			if to == c {
				delete(plan, from)
			}
		}
	}
}

// isPossiblePagedList checks the pageable marker and an array "value" property in a response
func isPossiblePagedList(m *codemodel.CodeModel, op *codemodel.Operation) bool {
	if op.Pageable == nil {
		return false
	}
	for _, r := range op.Responses {
		s := m.Schema(r.Schema)
		if s == nil || s.Type != codemodel.TypeObject {
			continue
		}
		for _, p := range declaredProperties(m, s) {
			if p.SerializedName != "value" {
				continue
			}
			if ps := m.Schema(p.Schema); ps != nil && ps.Type == codemodel.TypeArray {
				return true
			}
		}
	}
	return false
}

// normalizePathParameterOrder makes the resource group parameter precede the
// resource name parameter on 8-segment provider paths.
func (n *OperationNameNormalization) normalizePathParameterOrder(op *codemodel.Operation, segments []string) {
	resourceGroupParam := trimBraces(segments[3])
	resourceNameParam := trimBraces(segments[7])
	for _, req := range op.Requests {
		var pathParams []int
		for i, p := range req.Parameters {
			if p.Location == codemodel.LocationPath && p.Implementation == codemodel.ImplementationMethod {
				pathParams = append(pathParams, i)
			}
		}
		if len(pathParams) != 2 {
			continue
		}
		first, second := req.Parameters[pathParams[0]], req.Parameters[pathParams[1]]
		if second.SerializedName != resourceGroupParam || first.SerializedName != resourceNameParam {
			continue
		}
		n.log.Info().Str("operation", op.Name).Str("first", second.SerializedName).Str("second", first.SerializedName).
			Msg("Reorder path parameters")
		req.Parameters[pathParams[0]], req.Parameters[pathParams[1]] = second, first
		swapParameters(op.SignatureParameters, first, second)
		swapParameters(req.SignatureParameters, first, second)
	}
}

func swapParameters(params []*codemodel.Parameter, a, b *codemodel.Parameter) {
	i, j := -1, -1
	for k, p := range params {
		switch p {
		case a:
			i = k
		case b:
			j = k
		}
	}
	if i >= 0 && j >= 0 {
		params[i], params[j] = params[j], params[i]
	}
}

func trimBraces(segment string) string {
	return strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
}
