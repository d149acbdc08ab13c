package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blimu-dev/fluentnamer/pkg/config"
)

// addTransformFlags binds the transform setting overrides
func addTransformFlags(cmd *cobra.Command, t *config.Transform) {
	f := cmd.Flags()
	f.Var(&nameListValue{&t.PreserveModel}, "preserve-model", "Models kept by the cleanup (comma separated)")
	f.Var(&nameListValue{&t.RemoveOperationGroup}, "remove-operation-group", "Operation groups to drop (comma separated)")
	f.Var(&renameMapValue{&t.RenameModel}, "rename-model", `Model renames, "From:To,From2:To2"`)
	f.Var(&renameMapValue{&t.RenameOperationGroup}, "rename-operation-group", `Operation group renames, "From:To"`)
	f.StringToStringVar(&t.NamingOverride, "naming-override", nil, "Word renames applied to every name (from=to)")
	f.StringVar(&t.NameForUngroupedOperations, "name-for-ungrouped-operations", "", "Name of the operation group without a name")
	f.BoolVar(&t.ResourcePropertyAsSubResource, "resource-property-as-subresource", false, "Treat nested resource properties of request payloads as SubResource")
	f.StringVar(&t.OperationGroupSuffix, "operation-group-suffix", "", "Suffix for operation groups that collide with other names")
	f.BoolVar(&t.DeduplicateAnonymousEnums, "deduplicate-anonymous-enums", false, "Make renamed anonymous enums unique")
	f.IntVar(&t.CleanupMaxPasses, "cleanup-max-passes", 0, "Bound of the schema cleanup iteration")
	f.VarPF(&optionalBoolValue{&t.LanguageNaming}, "language-naming", "", "Apply language naming conventions between the stages").NoOptDefVal = "true"
}

type nameListValue struct{ l *config.NameList }

func (v *nameListValue) String() string {
	if v.l == nil {
		return ""
	}
	return strings.Join(*v.l, ",")
}

func (v *nameListValue) Set(s string) error {
	*v.l = append(*v.l, config.ParseNameList(s)...)
	return nil
}

func (v *nameListValue) Type() string { return "names" }

type renameMapValue struct{ m *config.RenameMap }

func (v *renameMapValue) String() string {
	if v.m == nil || len(*v.m) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(*v.m))
	for _, k := range v.m.Keys() {
		pairs = append(pairs, k+":"+(*v.m)[k])
	}
	return strings.Join(pairs, ",")
}

func (v *renameMapValue) Set(s string) error {
	m, err := config.ParseRenameMap(s)
	if err != nil {
		return err
	}
	if *v.m == nil {
		*v.m = config.RenameMap{}
	}
	for k, to := range m {
		(*v.m)[k] = to
	}
	return nil
}

func (v *renameMapValue) Type() string { return "renames" }

// optionalBoolValue leaves the setting nil until the flag is given
type optionalBoolValue struct{ b **bool }

func (v *optionalBoolValue) String() string {
	if v.b == nil || *v.b == nil {
		return ""
	}
	return strconv.FormatBool(**v.b)
}

func (v *optionalBoolValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*v.b = &b
	return nil
}

func (v *optionalBoolValue) Type() string { return "bool" }

var (
	_ pflag.Value = (*nameListValue)(nil)
	_ pflag.Value = (*renameMapValue)(nil)
	_ pflag.Value = (*optionalBoolValue)(nil)
)
