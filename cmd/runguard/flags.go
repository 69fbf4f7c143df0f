package main

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/reglet-dev/runguard/domain/entities"
)

// errEmptyGrant rejects a flag value with nothing in it, such as an unset
// shell variable in --allow-read=$DIR.
var errEmptyGrant = errors.New(`empty value, use the bare flag or "*" to allow everything`)

// grantValue is a pflag.Value that fills one Selection of a GrantConfig.
// A bare flag or "*" grants everything; otherwise values are comma
// separated and repeated flags accumulate. An empty value is an error.
type grantValue struct {
	sel *entities.Selection
}

var _ pflag.Value = (*grantValue)(nil)

func (v *grantValue) String() string {
	if v.sel == nil {
		return ""
	}
	if v.sel.All {
		return "*"
	}
	return strings.Join(v.sel.Values, ",")
}

func (v *grantValue) Set(s string) error {
	if strings.Trim(s, ", \t") == "" {
		return errEmptyGrant
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "*":
			v.sel.All = true
		default:
			v.sel.Values = append(v.sel.Values, part)
		}
	}
	return nil
}

func (v *grantValue) Type() string {
	return "list"
}

var grantUsage = map[entities.ResourceClass]string{
	entities.ResourceEnv:   "allow environment access (names, comma separated)",
	entities.ResourceNet:   "allow network access (host[:port], comma separated)",
	entities.ResourceRead:  "allow file reads (path prefixes, comma separated)",
	entities.ResourceWrite: "allow file writes (path prefixes, comma separated)",
	entities.ResourceRun:   "allow running subprocesses (executables, comma separated)",
}

// addGrantFlags registers --allow-<class> for every class and -A/--allow-all.
func addGrantFlags(fs *pflag.FlagSet, grants *entities.GrantConfig) {
	for _, class := range entities.ResourceClasses() {
		name := strings.TrimPrefix(class.Flag(), "--")
		fs.Var(&grantValue{sel: grants.Selection(class)}, name, grantUsage[class])
		fs.Lookup(name).NoOptDefVal = "*"
	}
	fs.BoolVarP(&grants.AllowAll, "allow-all", "A", false, "allow all capabilities")
}
