// Package filter decides whether a call-site log request is emitted.
//
// # Decision Procedure
//
// Engine.Evaluate consults the policy through a policy.Adapter in a fixed
// order. The first rule that suppresses wins:
//
//  1. master switch
//  2. call-kind switch (class-level or instance-level)
//  3. method-name trace switch, for MethodName requests only
//  4. severity switch, for every other severity
//  5. role switch, for every request except MethodName traces
//  6. class allow/deny, then category allow/deny when a category is given
//  7. tag allow/deny
//  8. method allow/deny
//
// For each list dimension a non-empty allow list must contain the request's
// value (for tags, at least one tag), and a deny list suppresses on a
// match. Empty and absent lists impose nothing.
//
// Evaluation is a pure function of the request and the policy: the engine
// holds no state between calls and never caches verdicts, so a policy may
// be replaced at any time.
//
// # Threshold
//
// Threshold is an optional minimum severity checked before the engine
// runs, for callers that want to drop low-severity requests cheaply.
package filter
