package policy

import (
	"sync/atomic"
	"time"
)

// Snapshot is one stored policy together with its provenance.
type Snapshot struct {
	Policy   Policy
	Version  string
	Source   string
	LoadedAt time.Time
}

// Holder is a hot-swappable policy. Readers get the latest stored policy
// without locking; each read sees one complete snapshot.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder creates a holder with an initial policy, which may be nil.
func NewHolder(initial Policy) *Holder {
	h := &Holder{}
	h.current.Store(&Snapshot{Policy: initial, LoadedAt: time.Now()})
	return h
}

// Current returns the policy in effect. It returns nil if no policy has been
// stored, which the adapter treats as "every rule absent".
func (h *Holder) Current() Policy {
	if h == nil {
		return nil
	}
	if s := h.current.Load(); s != nil {
		return s.Policy
	}
	return nil
}

// Snapshot returns the stored snapshot, never nil.
func (h *Holder) Snapshot() Snapshot {
	if h == nil {
		return Snapshot{}
	}
	if s := h.current.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Store replaces the current policy.
func (h *Holder) Store(p Policy, version, source string) {
	h.current.Store(&Snapshot{
		Policy:   p,
		Version:  version,
		Source:   source,
		LoadedAt: time.Now(),
	})
}

// Static is a provider that always returns the same policy.
type Static struct {
	Policy Policy
}

// Current returns the wrapped policy.
func (s Static) Current() Policy {
	return s.Policy
}
