// Package sieve is the call-site logging entry point.
//
// A Debugger combines a policy provider, the filter engine and a sink:
//
//	holder := policy.NewHolder(rules)
//	d := sieve.New(holder, sink.Multi{stderrSink, sqliteSink},
//	    sieve.WithThreshold(threshold),
//	    sieve.WithRecorder(collector),
//	)
//
//	func (s *Store) Put(key string) error {
//	    d.Method("Store.Put", callsite.InstanceLevel, callsite.Setter)
//	    ...
//	    d.Log("Store.Put", callsite.InstanceLevel, callsite.Error, callsite.Setter,
//	        []string{"storage"}, "write failed: "+err.Error())
//	}
//
// The policy is read from the provider on every call, so swapping the
// holder's snapshot changes behavior for the next request. A missing policy
// emits everything; a missing sink discards. Nothing a policy, formatter or
// sink does can make a Debugger call panic.
package sieve
