package policy

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"mercator-hq/sieve/pkg/callsite"
)

// Rules is a declarative policy. Every field is optional; a nil pointer, a
// missing map key or an empty list means the rule is absent. Rules
// implements every rule interface and is safe to use through a nil pointer.
//
// Severity and role switches may be keyed by any accepted alias. When
// several keys name the same value the lower-case canonical label
// ("warning", "setter") wins, otherwise the first alias in sorted order.
// Validate reports such duplicates.
type Rules struct {
	// Master disables all output when false.
	Master *bool `yaml:"master,omitempty" json:"master,omitempty"`

	// ClassMethods enables class-level calls.
	ClassMethods *bool `yaml:"class_methods,omitempty" json:"class_methods,omitempty"`

	// InstanceMethods enables instance-level calls.
	InstanceMethods *bool `yaml:"instance_methods,omitempty" json:"instance_methods,omitempty"`

	// MethodNames enables method entry traces.
	MethodNames *bool `yaml:"method_names,omitempty" json:"method_names,omitempty"`

	// Severities maps a severity label ("warning", "debug", ...) to a switch.
	Severities map[string]bool `yaml:"severities,omitempty" json:"severities,omitempty"`

	// Roles maps a role label ("setters", "getters", ...) to a switch.
	Roles map[string]bool `yaml:"roles,omitempty" json:"roles,omitempty"`

	// ClassGroups switches controllers, views and other classes as groups.
	ClassGroups ClassGroups `yaml:"class_groups,omitempty" json:"class_groups,omitempty"`

	// PrintCategories disables every request that names a category when
	// false.
	PrintCategories *bool `yaml:"print_categories,omitempty" json:"print_categories,omitempty"`

	Classes    NameRules `yaml:"classes,omitempty" json:"classes,omitempty"`
	Categories NameRules `yaml:"categories,omitempty" json:"categories,omitempty"`
	Tags       NameRules `yaml:"tags,omitempty" json:"tags,omitempty"`
	Methods    NameRules `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// ClassGroups holds the rules of each class group. Classes listed under
// controllers or views members join that group whatever their name; the
// rest are grouped by suffix (see GroupOf).
type ClassGroups struct {
	Controllers GroupRules `yaml:"controllers,omitempty" json:"controllers,omitempty"`
	Views       GroupRules `yaml:"views,omitempty" json:"views,omitempty"`
	Other       GroupRules `yaml:"other,omitempty" json:"other,omitempty"`
}

// GroupRules switches one class group and names classes to skip within it.
type GroupRules struct {
	Print   *bool    `yaml:"print,omitempty" json:"print,omitempty"`
	Skip    []string `yaml:"skip,omitempty" json:"skip,omitempty"`
	Members []string `yaml:"members,omitempty" json:"members,omitempty"`
}

// NameRules is the allow and deny list pair of one dimension.
type NameRules struct {
	Allow []string `yaml:"allow,omitempty" json:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty" json:"deny,omitempty"`
}

// Bool returns a pointer to b, for building Rules in code.
func Bool(b bool) *bool {
	return &b
}

// MasterOn implements MasterSwitch.
func (r *Rules) MasterOn() (bool, bool) {
	if r == nil || r.Master == nil {
		return false, false
	}
	return *r.Master, true
}

// PrintCallKind implements CallKindSwitch.
func (r *Rules) PrintCallKind(kind callsite.CallKind) (bool, bool) {
	if r == nil {
		return false, false
	}
	sw := r.InstanceMethods
	if kind == callsite.ClassLevel {
		sw = r.ClassMethods
	}
	if sw == nil {
		return false, false
	}
	return *sw, true
}

// PrintMethodNames implements MethodNameSwitch. A "method" entry under
// severities is honored when MethodNames is unset.
func (r *Rules) PrintMethodNames() (bool, bool) {
	if r == nil {
		return false, false
	}
	if r.MethodNames != nil {
		return *r.MethodNames, true
	}
	return r.lookupSeverity(callsite.MethodName)
}

// PrintSeverity implements SeveritySwitch.
func (r *Rules) PrintSeverity(severity callsite.Severity) (bool, bool) {
	if r == nil {
		return false, false
	}
	return r.lookupSeverity(severity)
}

func (r *Rules) lookupSeverity(severity callsite.Severity) (bool, bool) {
	return lookupLabel(r.Severities, strings.ToLower(severity.String()), func(label string) bool {
		s, err := callsite.ParseSeverity(label)
		return err == nil && s == severity
	})
}

// PrintRole implements RoleSwitch.
func (r *Rules) PrintRole(role callsite.Role) (bool, bool) {
	if r == nil {
		return false, false
	}
	return lookupLabel(r.Roles, strings.ToLower(role.String()), func(label string) bool {
		rl, err := callsite.ParseRole(label)
		return err == nil && rl == role
	})
}

// lookupLabel finds the switch for one value: the canonical key first, then
// the first matching key in sorted order.
func lookupLabel(switches map[string]bool, canonical string, matches func(label string) bool) (bool, bool) {
	if len(switches) == 0 {
		return false, false
	}
	if on, ok := switches[canonical]; ok {
		return on, true
	}
	for _, label := range slices.Sorted(maps.Keys(switches)) {
		if matches(label) {
			return switches[label], true
		}
	}
	return false, false
}

// ClassGroupOf implements ClassGroupRules. Only explicit members are
// answered; other classes fall back to GroupOf.
func (r *Rules) ClassGroupOf(class string) (ClassGroup, bool) {
	if r == nil {
		return GroupOther, false
	}
	switch {
	case slices.Contains(r.ClassGroups.Controllers.Members, class):
		return GroupControllers, true
	case slices.Contains(r.ClassGroups.Views.Members, class):
		return GroupViews, true
	}
	return GroupOther, false
}

// PrintClassGroup implements ClassGroupRules.
func (r *Rules) PrintClassGroup(group ClassGroup) (bool, bool) {
	g := r.group(group)
	if g == nil || g.Print == nil {
		return false, false
	}
	return *g.Print, true
}

// ClassGroupSkips implements ClassGroupRules.
func (r *Rules) ClassGroupSkips(group ClassGroup) ([]string, bool) {
	g := r.group(group)
	if g == nil {
		return nil, false
	}
	return g.Skip, len(g.Skip) > 0
}

func (r *Rules) group(group ClassGroup) *GroupRules {
	if r == nil {
		return nil
	}
	switch group {
	case GroupControllers:
		return &r.ClassGroups.Controllers
	case GroupViews:
		return &r.ClassGroups.Views
	case GroupOther:
		return &r.ClassGroups.Other
	default:
		return nil
	}
}

// PrintCategories implements CategorySwitch.
func (r *Rules) PrintCategories() (bool, bool) {
	if r == nil || r.PrintCategories == nil {
		return false, false
	}
	return *r.PrintCategories, true
}

// Names implements ListRules.
func (r *Rules) Names(dimension Dimension, list List) ([]string, bool) {
	if r == nil {
		return nil, false
	}
	var nr NameRules
	switch dimension {
	case DimensionClass:
		nr = r.Classes
	case DimensionCategory:
		nr = r.Categories
	case DimensionTag:
		nr = r.Tags
	case DimensionMethod:
		nr = r.Methods
	default:
		return nil, false
	}
	names := nr.Allow
	if list == Deny {
		names = nr.Deny
	}
	return names, len(names) > 0
}

// Validate checks that every severity and role key is known. The filter
// itself tolerates unknown keys by ignoring them; Validate exists so that
// policy files fail loudly at load time.
func (r *Rules) Validate() error {
	if r == nil {
		return nil
	}
	var errs []FieldError

	seenSeverity := make(map[callsite.Severity]string)
	for _, label := range slices.Sorted(maps.Keys(r.Severities)) {
		s, err := callsite.ParseSeverity(label)
		if err != nil {
			errs = append(errs, FieldError{Field: "severities." + label, Message: "unknown severity"})
			continue
		}
		if prev, dup := seenSeverity[s]; dup {
			errs = append(errs, FieldError{
				Field:   "severities." + label,
				Message: fmt.Sprintf("duplicates %q", prev),
			})
		}
		seenSeverity[s] = label
	}

	seenRole := make(map[callsite.Role]string)
	for _, label := range slices.Sorted(maps.Keys(r.Roles)) {
		rl, err := callsite.ParseRole(label)
		if err != nil {
			errs = append(errs, FieldError{Field: "roles." + label, Message: "unknown role"})
			continue
		}
		if prev, dup := seenRole[rl]; dup {
			errs = append(errs, FieldError{
				Field:   "roles." + label,
				Message: fmt.Sprintf("duplicates %q", prev),
			})
		}
		seenRole[rl] = label
	}

	for _, d := range []struct {
		name  string
		rules NameRules
	}{
		{"classes", r.Classes},
		{"categories", r.Categories},
		{"tags", r.Tags},
		{"methods", r.Methods},
	} {
		for i, name := range d.rules.Allow {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, FieldError{Field: fmt.Sprintf("%s.allow[%d]", d.name, i), Message: "empty name"})
			}
		}
		for i, name := range d.rules.Deny {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, FieldError{Field: fmt.Sprintf("%s.deny[%d]", d.name, i), Message: "empty name"})
			}
		}
	}

	errs = append(errs, r.ClassGroups.validate()...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (c ClassGroups) validate() []FieldError {
	var errs []FieldError
	for _, g := range []struct {
		name  string
		rules GroupRules
	}{
		{"controllers", c.Controllers},
		{"views", c.Views},
		{"other", c.Other},
	} {
		for i, name := range g.rules.Skip {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, FieldError{Field: fmt.Sprintf("class_groups.%s.skip[%d]", g.name, i), Message: "empty name"})
			}
		}
		for i, name := range g.rules.Members {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, FieldError{Field: fmt.Sprintf("class_groups.%s.members[%d]", g.name, i), Message: "empty name"})
			}
		}
	}
	if len(c.Other.Members) > 0 {
		errs = append(errs, FieldError{Field: "class_groups.other.members", Message: "other classes are the ones no group claims"})
	}
	for _, name := range c.Views.Members {
		if slices.Contains(c.Controllers.Members, name) {
			errs = append(errs, FieldError{Field: "class_groups.views.members", Message: fmt.Sprintf("%q is already a controller", name)})
		}
	}
	return errs
}
