// Package policy provides the rule set that decides which call-site log lines
// are emitted, and the adapter that reads it safely.
//
// # Policies
//
// A policy is any Go value. Each family of rules is a small optional
// interface (MasterSwitch, CallKindSwitch, SeveritySwitch, ...) and every
// accessor reports whether it holds a value. A policy that does not
// implement an interface, that reports a rule as unset, or that is nil
// altogether, falls back to the defaults documented on Adapter: every switch
// on, every list empty. A host project can therefore implement only the
// rules it cares about:
//
//	type quietNetworking struct{}
//
//	func (quietNetworking) Names(d policy.Dimension, l policy.List) ([]string, bool) {
//	    if d == policy.DimensionTag && l == policy.Deny {
//	        return []string{"network"}, true
//	    }
//	    return nil, false
//	}
//
// # Declared Rules
//
// Rules is the declarative form of a policy, loaded from YAML:
//
//	master: true
//	method_names: false
//	severities:
//	  debug: false
//	roles:
//	  getters: false
//	tags:
//	  allow: [network, storage]
//	methods:
//	  deny: ["Cache.Get"]
//	class_groups:
//	  controllers:
//	    print: false
//	  views:
//	    skip: [ListView]
//	print_categories: true
//
// Class groups split owner classes into controllers ("Controller" suffix),
// views ("View" suffix) and other classes. Each group has its own switch
// and skip list and is checked right after the class lists.
//
// # Hot Reload
//
// Holder keeps the current snapshot behind an atomic pointer so readers
// never block. FileSource reloads it when the policy file changes (fsnotify
// with debouncing) and GitSource reloads it when new commits land on a
// policy repository. A failed reload keeps the last good policy.
package policy
