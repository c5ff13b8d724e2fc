// Package callsite defines the values an instrumented call site hands to the
// filter: the request itself, its call kind, severity and role, and the
// verdict produced for it.
//
// Severities and roles are named variants. Their numeric values carry no
// meaning outside this process and must never be persisted; use String and
// the Parse functions to move them across boundaries.
//
// # Usage
//
//	req := callsite.Request{
//	    Signature: "Store.Put",
//	    Kind:      callsite.InstanceLevel,
//	    Severity:  callsite.Error,
//	    Role:      callsite.Setter,
//	    Tags:      []string{"storage"},
//	    Message:   "write failed",
//	}
package callsite
