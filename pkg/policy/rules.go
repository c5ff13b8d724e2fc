package policy

import (
	"fmt"
	"strings"

	"mercator-hq/sieve/pkg/callsite"
)

// Policy is a rule set supplied by the host project. It may be nil and may
// implement any subset of the rule interfaces below.
type Policy interface{}

// MasterSwitch turns all output on or off.
type MasterSwitch interface {
	MasterOn() (on, set bool)
}

// CallKindSwitch enables class-level or instance-level calls.
type CallKindSwitch interface {
	PrintCallKind(kind callsite.CallKind) (on, set bool)
}

// MethodNameSwitch enables method entry traces.
type MethodNameSwitch interface {
	PrintMethodNames() (on, set bool)
}

// SeveritySwitch enables a severity. It is never consulted for MethodName.
type SeveritySwitch interface {
	PrintSeverity(severity callsite.Severity) (on, set bool)
}

// RoleSwitch enables a call-site role.
type RoleSwitch interface {
	PrintRole(role callsite.Role) (on, set bool)
}

// ListRules supplies allow and deny lists per dimension.
type ListRules interface {
	Names(dimension Dimension, list List) (names []string, set bool)
}

// ClassGroupRules switches whole groups of classes and skips individual
// classes within a group. It is consulted after the class lists.
type ClassGroupRules interface {
	// ClassGroupOf places a class in a group. Unset falls back to GroupOf.
	ClassGroupOf(class string) (group ClassGroup, set bool)
	PrintClassGroup(group ClassGroup) (on, set bool)
	ClassGroupSkips(group ClassGroup) (classes []string, set bool)
}

// CategorySwitch enables requests that name a category. Uncategorized
// requests are never affected.
type CategorySwitch interface {
	PrintCategories() (on, set bool)
}

// ClassGroup partitions classes for ClassGroupRules.
type ClassGroup int

const (
	GroupControllers ClassGroup = iota
	GroupViews
	GroupOther
)

// String returns the group name used in policy files.
func (g ClassGroup) String() string {
	switch g {
	case GroupControllers:
		return "controllers"
	case GroupViews:
		return "views"
	case GroupOther:
		return "other"
	default:
		return fmt.Sprintf("ClassGroup(%d)", int(g))
	}
}

// GroupOf groups a class by name: a "Controller" suffix makes a controller,
// a "View" suffix a view, and anything else, including the empty owner of a
// package-level function, is other.
func GroupOf(class string) ClassGroup {
	switch {
	case strings.HasSuffix(class, "Controller"):
		return GroupControllers
	case strings.HasSuffix(class, "View"):
		return GroupViews
	default:
		return GroupOther
	}
}

// Dimension is a request attribute that list rules match against.
type Dimension int

const (
	DimensionClass Dimension = iota
	DimensionCategory
	DimensionTag
	DimensionMethod
)

// String returns the dimension name used in policy files.
func (d Dimension) String() string {
	switch d {
	case DimensionClass:
		return "classes"
	case DimensionCategory:
		return "categories"
	case DimensionTag:
		return "tags"
	case DimensionMethod:
		return "methods"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// List selects the allow or deny list of a dimension.
type List int

const (
	Allow List = iota
	Deny
)

// String returns "allow" or "deny".
func (l List) String() string {
	if l == Deny {
		return "deny"
	}
	return "allow"
}

// NameSet is an ordered set of names. A nil or empty set imposes no
// restriction.
type NameSet []string

// NewNameSet builds a set from names, dropping duplicates while keeping the
// first occurrence order.
func NewNameSet(names []string) NameSet {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	set := make(NameSet, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}
	return set
}

// Contains reports whether name is a member.
func (s NameSet) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// Intersects reports whether any of names is a member.
func (s NameSet) Intersects(names []string) bool {
	for _, name := range names {
		if s.Contains(name) {
			return true
		}
	}
	return false
}
