// Sieve filters call-site log lines through a hot-reloadable policy.
//
// Each request names its call site, severity, role and tags. A layered
// policy (master switch, call kind, severity, role, class, category, tag and
// method rules) decides whether the line is emitted, and emitted lines go to
// stdout, stderr or a SQLite store.
//
// Usage:
//
//	# Filter newline-delimited JSON requests from stdin
//	sieve run --config sieve.yaml < requests.ndjson
//
//	# Check how a policy treats one call site
//	sieve eval --policy sieve-policy.yaml --signature Store.Put --severity warning --role setter
//
//	# Validate policy files
//	sieve lint sieve-policy.yaml
//
//	# Apply retention to the SQLite store
//	sieve prune --config sieve.yaml
package main

func main() {
	Execute()
}
