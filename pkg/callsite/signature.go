package callsite

import "strings"

// OwnerOf derives the owning class of a call-site signature.
//
// Recognized forms:
//
//	"Type.Method"                       -> "Type"
//	"Type::Method"                      -> "Type"
//	"example.com/pkg.(*Type).Method"    -> "Type"
//	"example.com/pkg.Type.Method"       -> "Type"
//	"example.com/pkg.NewType"           -> ""
//	"function"                          -> ""
//
// Function literals ("pkg.(*T).M.func1") resolve to the enclosing type. A
// package-level function reported with its import path has no owner, so
// class rules treat it like a bare function; set Request.Class to attribute
// a constructor to its type. Without a path ("main.run")
// the form cannot be told apart from "Type.Method" and the first part wins.
func OwnerOf(signature string) string {
	s := signature
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return s[:i]
	}

	// Receiver in parentheses: pkg.(*T).M or pkg.(T).M
	if open := strings.Index(s, ".("); open >= 0 {
		rest := s[open+2:]
		if end := strings.Index(rest, ")"); end >= 0 {
			return strings.TrimPrefix(rest[:end], "*")
		}
	}

	parts := strings.Split(s, ".")
	qualified := signature != s
	switch {
	case len(parts) < 2:
		return ""
	case qualified && (len(parts) == 2 || isClosure(parts[2])):
		// "pkg.Func" or "pkg.Func.func1"
		return ""
	case len(parts) == 2 || !qualified:
		// "Type.Method" written by hand, without a package path
		return parts[0]
	default:
		// "pkg.Type.Method" as reported by the runtime
		return parts[1]
	}
}

// isClosure reports whether part is a compiler-generated closure name such
// as "func1".
func isClosure(part string) bool {
	rest, ok := strings.CutPrefix(part, "func")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
