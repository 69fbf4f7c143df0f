package entities

// Selection is the initial grant for one resource class: nothing (zero
// value), everything (All) or an explicit allow-list of values.
type Selection struct {
	All    bool     `json:"all,omitempty" yaml:"all,omitempty" jsonschema:"description=Grant every value of this class"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty" validate:"dive,required" jsonschema:"description=Explicit allow-list"`
}

// IsEmpty returns true if the selection grants nothing.
func (s Selection) IsEmpty() bool {
	return !s.All && len(s.Values) == 0
}

// GrantConfig is the structured set of grants supplied before the monitored
// program starts, from flags or a grants file.
type GrantConfig struct {
	AllowAll bool      `json:"allow_all,omitempty" yaml:"allow_all,omitempty" jsonschema:"description=Grant every class"`
	Env      Selection `json:"env,omitempty" yaml:"env,omitempty"`
	Net      Selection `json:"net,omitempty" yaml:"net,omitempty"`
	Read     Selection `json:"read,omitempty" yaml:"read,omitempty"`
	Write    Selection `json:"write,omitempty" yaml:"write,omitempty"`
	Run      Selection `json:"run,omitempty" yaml:"run,omitempty"`
}

// Selection returns a pointer to the selection for class, or nil for an
// invalid class.
func (g *GrantConfig) Selection(class ResourceClass) *Selection {
	switch class {
	case ResourceEnv:
		return &g.Env
	case ResourceNet:
		return &g.Net
	case ResourceRead:
		return &g.Read
	case ResourceWrite:
		return &g.Write
	case ResourceRun:
		return &g.Run
	default:
		return nil
	}
}

// IsEmpty returns true if no capabilities are present.
func (g *GrantConfig) IsEmpty() bool {
	if g == nil {
		return true
	}
	if g.AllowAll {
		return false
	}
	for _, c := range resourceClasses {
		if !g.Selection(c).IsEmpty() {
			return false
		}
	}
	return true
}

// Merge unions other into g. All dominates an allow-list; duplicate values
// are dropped.
func (g *GrantConfig) Merge(other *GrantConfig) {
	if other == nil {
		return
	}
	g.AllowAll = g.AllowAll || other.AllowAll
	for _, c := range resourceClasses {
		dst, src := g.Selection(c), other.Selection(c)
		dst.All = dst.All || src.All
		dst.Values = appendUnique(dst.Values, src.Values...)
	}
}

// Clone returns a deep copy of the GrantConfig.
func (g *GrantConfig) Clone() *GrantConfig {
	if g == nil {
		return nil
	}
	clone := &GrantConfig{AllowAll: g.AllowAll}
	for _, c := range resourceClasses {
		src := g.Selection(c)
		dst := clone.Selection(c)
		dst.All = src.All
		if src.Values != nil {
			dst.Values = append([]string(nil), src.Values...)
		}
	}
	return clone
}

// Rules expands the config into the GrantRules it stands for.
func (g *GrantConfig) Rules() []GrantRule {
	if g == nil {
		return nil
	}
	var rules []GrantRule
	for _, c := range resourceClasses {
		sel := g.Selection(c)
		if g.AllowAll || sel.All {
			rules = append(rules, GrantRule{Class: c, Value: All})
			continue
		}
		for _, v := range sel.Values {
			rules = append(rules, GrantRule{Class: c, Value: ValueOf(v)})
		}
	}
	return rules
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
