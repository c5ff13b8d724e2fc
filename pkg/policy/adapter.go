package policy

import "mercator-hq/sieve/pkg/callsite"

// Adapter reads rules from a policy and substitutes defaults for every rule
// the policy does not answer. It never fails: a nil policy, an unimplemented
// interface, an unset rule and a panicking accessor all resolve to the
// default.
//
// Defaults:
//   - every switch is on
//   - every allow and deny list is empty
type Adapter struct {
	policy Policy
}

// NewAdapter wraps p. p may be nil.
func NewAdapter(p Policy) Adapter {
	return Adapter{policy: p}
}

// MasterOn reports whether output is enabled at all.
func (a Adapter) MasterOn() bool {
	if r, ok := a.policy.(MasterSwitch); ok {
		return readSwitch(r.MasterOn)
	}
	return true
}

// PrintCallKind reports whether calls of the given kind are enabled.
func (a Adapter) PrintCallKind(kind callsite.CallKind) bool {
	if r, ok := a.policy.(CallKindSwitch); ok {
		return readSwitch(func() (bool, bool) { return r.PrintCallKind(kind) })
	}
	return true
}

// PrintMethodNames reports whether method entry traces are enabled.
func (a Adapter) PrintMethodNames() bool {
	if r, ok := a.policy.(MethodNameSwitch); ok {
		return readSwitch(r.PrintMethodNames)
	}
	return true
}

// PrintSeverity reports whether the severity is enabled.
func (a Adapter) PrintSeverity(severity callsite.Severity) bool {
	if r, ok := a.policy.(SeveritySwitch); ok {
		return readSwitch(func() (bool, bool) { return r.PrintSeverity(severity) })
	}
	return true
}

// PrintRole reports whether the role is enabled.
func (a Adapter) PrintRole(role callsite.Role) bool {
	if r, ok := a.policy.(RoleSwitch); ok {
		return readSwitch(func() (bool, bool) { return r.PrintRole(role) })
	}
	return true
}

// PrintCategories reports whether requests naming a category are enabled.
func (a Adapter) PrintCategories() bool {
	if r, ok := a.policy.(CategorySwitch); ok {
		return readSwitch(r.PrintCategories)
	}
	return true
}

// ClassGroup returns the group of class, by GroupOf unless the policy places
// it explicitly.
func (a Adapter) ClassGroup(class string) (group ClassGroup) {
	group = GroupOf(class)
	r, ok := a.policy.(ClassGroupRules)
	if !ok {
		return group
	}
	defer func() {
		if recover() != nil {
			group = GroupOf(class)
		}
	}()
	if g, set := r.ClassGroupOf(class); set && g >= GroupControllers && g <= GroupOther {
		return g
	}
	return group
}

// PrintClassGroup reports whether a class group is enabled.
func (a Adapter) PrintClassGroup(group ClassGroup) bool {
	if r, ok := a.policy.(ClassGroupRules); ok {
		return readSwitch(func() (bool, bool) { return r.PrintClassGroup(group) })
	}
	return true
}

// ClassGroupSkips returns the classes skipped within a group, empty when
// absent.
func (a Adapter) ClassGroupSkips(group ClassGroup) (set NameSet) {
	r, ok := a.policy.(ClassGroupRules)
	if !ok {
		return nil
	}
	defer func() {
		if recover() != nil {
			set = nil
		}
	}()
	classes, isSet := r.ClassGroupSkips(group)
	if !isSet {
		return nil
	}
	return NewNameSet(classes)
}

// Allow returns the allow list of a dimension, empty when absent.
func (a Adapter) Allow(dimension Dimension) NameSet {
	return a.names(dimension, Allow)
}

// Deny returns the deny list of a dimension, empty when absent.
func (a Adapter) Deny(dimension Dimension) NameSet {
	return a.names(dimension, Deny)
}

func (a Adapter) names(dimension Dimension, list List) (set NameSet) {
	r, ok := a.policy.(ListRules)
	if !ok {
		return nil
	}
	defer func() {
		if recover() != nil {
			set = nil
		}
	}()
	names, isSet := r.Names(dimension, list)
	if !isSet {
		return nil
	}
	return NewNameSet(names)
}

// readSwitch calls a switch accessor, defaulting to on.
func readSwitch(fn func() (bool, bool)) (on bool) {
	defer func() {
		if recover() != nil {
			on = true
		}
	}()
	value, set := fn()
	if !set {
		return true
	}
	return value
}
