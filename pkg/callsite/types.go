package callsite

import (
	"fmt"
	"strings"
)

// CallKind distinguishes type-level calls from instance-level calls.
type CallKind int

const (
	// InstanceLevel is a call on a value (a method with a receiver).
	InstanceLevel CallKind = iota
	// ClassLevel is a call on the type itself (a constructor or package function
	// acting on behalf of a type).
	ClassLevel
)

// String returns the label used in formatted lines and metrics.
func (k CallKind) String() string {
	switch k {
	case ClassLevel:
		return "class"
	case InstanceLevel:
		return "instance"
	default:
		return "unknown"
	}
}

// ParseCallKind parses "class" or "instance" (case-insensitive).
func ParseCallKind(s string) (CallKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "type":
		return ClassLevel, nil
	case "instance", "":
		return InstanceLevel, nil
	default:
		return InstanceLevel, fmt.Errorf("unknown call kind: %q", s)
	}
}

// Severity is the log level of a request. MethodName is a pseudo-level that
// traces method entry and is not part of the severity ordering.
type Severity int

const (
	MethodName Severity = iota
	Info
	Debug
	Notice
	Alert
	Warning
	Error
	Critical
	Emergency
)

var severityLabels = map[Severity]string{
	MethodName: "Method",
	Info:       "Info",
	Debug:      "Debug",
	Notice:     "Notice",
	Alert:      "Alert",
	Warning:    "Warning",
	Error:      "Error",
	Critical:   "Critical",
	Emergency:  "Emergency",
}

// Severities lists every severity, MethodName first.
func Severities() []Severity {
	return []Severity{MethodName, Info, Debug, Notice, Alert, Warning, Error, Critical, Emergency}
}

// String returns the human-readable label of the severity.
func (s Severity) String() string {
	if label, ok := severityLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := severityLabels[s]
	return ok
}

// ParseSeverity parses a severity label (case-insensitive). Common aliases
// such as "warn", "err" and "crit" are accepted.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "method", "methodname", "method_name", "trace":
		return MethodName, nil
	case "info", "information":
		return Info, nil
	case "debug":
		return Debug, nil
	case "notice":
		return Notice, nil
	case "alert":
		return Alert, nil
	case "warning", "warn":
		return Warning, nil
	case "error", "err", "failure":
		return Error, nil
	case "critical", "crit":
		return Critical, nil
	case "emergency", "emerg":
		return Emergency, nil
	default:
		return Info, fmt.Errorf("unknown severity: %q", s)
	}
}

// Role is the semantic purpose of a call site.
type Role int

const (
	Unspecified Role = iota
	Setup
	Setter
	Getter
	Creator
	Deletor
	Validator
	Action
)

var roleLabels = map[Role]string{
	Unspecified: "Unspecified",
	Setup:       "Setup",
	Setter:      "Setter",
	Getter:      "Getter",
	Creator:     "Creator",
	Deletor:     "Deletor",
	Validator:   "Validator",
	Action:      "Action",
}

// Roles lists every role.
func Roles() []Role {
	return []Role{Unspecified, Setup, Setter, Getter, Creator, Deletor, Validator, Action}
}

// String returns the human-readable label of the role.
func (r Role) String() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// ParseRole parses a role label (case-insensitive). Plural forms used in
// policy files ("setters", "getters") are accepted.
func ParseRole(s string) (Role, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "setup":
		return Setup, nil
	case "setter":
		return Setter, nil
	case "getter":
		return Getter, nil
	case "creator":
		return Creator, nil
	case "deletor", "deleter":
		return Deletor, nil
	case "validator":
		return Validator, nil
	case "action":
		return Action, nil
	case "unspecified", "":
		return Unspecified, nil
	default:
		return Unspecified, fmt.Errorf("unknown role: %q", s)
	}
}

// Request is a single log request built at a call site. It is treated as
// immutable once handed to the filter.
type Request struct {
	// Signature identifies the call site, conventionally "Type.Method".
	Signature string

	// Kind is whether the call is class-level or instance-level.
	Kind CallKind

	// Severity is the log level, or MethodName for an entry trace.
	Severity Severity

	// Role is the semantic purpose of the call site.
	Role Role

	// Tags are free-form labels. Order is irrelevant and duplicates are tolerated.
	Tags []string

	// Category is an optional grouping label distinct from tags.
	Category string

	// Class overrides the owning class derived from Signature.
	Class string

	// Message is appended to the formatted line when non-empty.
	Message string
}

// OwnerClass returns the explicit Class if set, otherwise the class derived
// from the signature.
func (r Request) OwnerClass() string {
	if r.Class != "" {
		return r.Class
	}
	return OwnerOf(r.Signature)
}

// Reason names the rule that decided a verdict.
type Reason string

const (
	ReasonEmitted    Reason = "emitted"
	ReasonMaster     Reason = "master"
	ReasonCallKind   Reason = "call_kind"
	ReasonMethodName Reason = "method_name"
	ReasonSeverity   Reason = "severity"
	ReasonRole       Reason = "role"
	ReasonClass      Reason = "class"
	ReasonClassGroup Reason = "class_group"
	ReasonCategory   Reason = "category"
	ReasonTag        Reason = "tag"
	ReasonMethod     Reason = "method"
	ReasonThreshold  Reason = "threshold"
)

// Verdict is the outcome of filtering one request. Line is set only when
// Emit is true.
type Verdict struct {
	Emit   bool
	Line   string
	Reason Reason
}

// Suppressed builds a negative verdict for the given reason.
func Suppressed(reason Reason) Verdict {
	return Verdict{Reason: reason}
}
