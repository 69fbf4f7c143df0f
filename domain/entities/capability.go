package entities

import "strconv"

// CapabilityValue is either a concrete token or the All sentinel.
// The meaning of the token depends on the resource class: a variable name,
// a "host[:port]" string, an absolute path or an executable path.
//
// All is represented by a flag rather than a reserved string, so it can
// never collide with a legitimate concrete value.
type CapabilityValue struct {
	value string
	all   bool
}

// All is the value that covers every request of a resource class.
var All = CapabilityValue{all: true}

// ValueOf wraps a concrete token.
func ValueOf(token string) CapabilityValue {
	return CapabilityValue{value: token}
}

// IsAll reports whether v is the All sentinel.
func (v CapabilityValue) IsAll() bool {
	return v.all
}

// Token returns the concrete token. It is empty for All.
func (v CapabilityValue) Token() string {
	return v.value
}

// String renders the value for messages. All renders as "*".
func (v CapabilityValue) String() string {
	if v.all {
		return "*"
	}
	return strconv.Quote(v.value)
}

// GrantRule is a single capability grant. It is comparable, so a set of
// rules can be kept as a map key and duplicates collapse.
type GrantRule struct {
	Class ResourceClass
	Value CapabilityValue
}

// NewGrantRule creates a GrantRule.
func NewGrantRule(class ResourceClass, value CapabilityValue) GrantRule {
	return GrantRule{Class: class, Value: value}
}

// String returns the rule in "class:value" format.
func (r GrantRule) String() string {
	return r.Class.String() + ":" + r.Value.String()
}

// CapabilityRequest is produced for every security-relevant event. It is
// never persisted; an interactively approved request becomes a GrantRule.
type CapabilityRequest struct {
	Class ResourceClass
	Value string
}

// NewCapabilityRequest creates a CapabilityRequest.
func NewCapabilityRequest(class ResourceClass, value string) CapabilityRequest {
	return CapabilityRequest{Class: class, Value: value}
}

// Rule converts the request into the GrantRule that would satisfy it exactly.
func (r CapabilityRequest) Rule() GrantRule {
	return GrantRule{Class: r.Class, Value: ValueOf(r.Value)}
}

// String returns the request in "class:value" format.
func (r CapabilityRequest) String() string {
	return r.Class.String() + ":" + strconv.Quote(r.Value)
}
