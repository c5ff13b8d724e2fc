package filter

import (
	"mercator-hq/sieve/pkg/callsite"
	"mercator-hq/sieve/pkg/policy"
)

// Engine evaluates log requests against a policy. The zero value is ready
// to use and safe for concurrent use.
type Engine struct {
	// Formatter renders emitted lines. Nil uses DefaultFormatter.
	Formatter Formatter
}

// Evaluate returns the verdict for req under p. p may be nil, in which case
// every rule takes its default and the request is emitted.
func (e Engine) Evaluate(req callsite.Request, p policy.Policy) callsite.Verdict {
	reason := Decide(req, policy.NewAdapter(p))
	if reason != callsite.ReasonEmitted {
		return callsite.Suppressed(reason)
	}

	format := e.Formatter
	if format == nil {
		format = DefaultFormatter
	}
	return callsite.Verdict{
		Emit:   true,
		Line:   format(req),
		Reason: callsite.ReasonEmitted,
	}
}

// Decide runs the decision procedure and returns the rule that suppressed
// the request, or ReasonEmitted.
func Decide(req callsite.Request, rules policy.Adapter) callsite.Reason {
	if !rules.MasterOn() {
		return callsite.ReasonMaster
	}

	if !rules.PrintCallKind(req.Kind) {
		return callsite.ReasonCallKind
	}

	if req.Severity == callsite.MethodName {
		// Entry traces are their own log kind: severity and role switches
		// do not apply to them.
		if !rules.PrintMethodNames() {
			return callsite.ReasonMethodName
		}
	} else {
		if !rules.PrintSeverity(req.Severity) {
			return callsite.ReasonSeverity
		}
		if !rules.PrintRole(req.Role) {
			return callsite.ReasonRole
		}
	}

	owner := req.OwnerClass()
	if !admits(rules, policy.DimensionClass, owner) {
		return callsite.ReasonClass
	}
	if group := rules.ClassGroup(owner); !rules.PrintClassGroup(group) || rules.ClassGroupSkips(group).Contains(owner) {
		return callsite.ReasonClassGroup
	}

	if req.Category != "" {
		if !rules.PrintCategories() || !admits(rules, policy.DimensionCategory, req.Category) {
			return callsite.ReasonCategory
		}
	}

	if !admitsAny(rules, policy.DimensionTag, req.Tags) {
		return callsite.ReasonTag
	}

	if !admits(rules, policy.DimensionMethod, req.Signature) {
		return callsite.ReasonMethod
	}

	return callsite.ReasonEmitted
}

// admits applies the allow-then-deny check of one dimension to a single value.
func admits(rules policy.Adapter, dimension policy.Dimension, value string) bool {
	if allow := rules.Allow(dimension); len(allow) > 0 && !allow.Contains(value) {
		return false
	}
	if deny := rules.Deny(dimension); deny.Contains(value) {
		return false
	}
	return true
}

// admitsAny applies the allow-then-deny check to a set of values: one
// allowed value is enough to pass the allow list, one denied value is
// enough to suppress.
func admitsAny(rules policy.Adapter, dimension policy.Dimension, values []string) bool {
	if allow := rules.Allow(dimension); len(allow) > 0 && !allow.Intersects(values) {
		return false
	}
	if deny := rules.Deny(dimension); deny.Intersects(values) {
		return false
	}
	return true
}
