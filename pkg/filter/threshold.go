package filter

import (
	"fmt"

	"mercator-hq/sieve/pkg/callsite"
)

// syslogRank orders severities from most severe (0) to least severe (7),
// following syslog. MethodName ranks below Debug.
var syslogRank = map[callsite.Severity]int{
	callsite.Emergency:  0,
	callsite.Alert:      1,
	callsite.Critical:   2,
	callsite.Error:      3,
	callsite.Warning:    4,
	callsite.Notice:     5,
	callsite.Info:       6,
	callsite.Debug:      7,
	callsite.MethodName: 8,
}

// Threshold drops requests less severe than a minimum before the engine
// runs. The zero value passes everything.
type Threshold struct {
	min     callsite.Severity
	enabled bool
}

// NewThreshold returns a threshold passing min and everything more severe.
// Method traces pass only a Debug threshold.
func NewThreshold(min callsite.Severity) (Threshold, error) {
	if min == callsite.MethodName || !min.Valid() {
		return Threshold{}, fmt.Errorf("invalid threshold severity: %v", min)
	}
	return Threshold{min: min, enabled: true}, nil
}

// ParseThreshold parses a severity label; an empty string disables the
// threshold.
func ParseThreshold(s string) (Threshold, error) {
	if s == "" {
		return Threshold{}, nil
	}
	sev, err := callsite.ParseSeverity(s)
	if err != nil {
		return Threshold{}, err
	}
	return NewThreshold(sev)
}

// Passes reports whether a request of the given severity gets past the
// threshold.
func (t Threshold) Passes(severity callsite.Severity) bool {
	if !t.enabled {
		return true
	}
	if severity == callsite.MethodName {
		return t.min == callsite.Debug
	}
	rank, ok := syslogRank[severity]
	if !ok {
		return true
	}
	return rank <= syslogRank[t.min]
}

// Enabled reports whether the threshold filters anything.
func (t Threshold) Enabled() bool {
	return t.enabled
}

// Min returns the minimum severity, meaningful only when Enabled.
func (t Threshold) Min() callsite.Severity {
	return t.min
}
