// Package asana models the subset of the Asana API that the triage engine
// reads and writes, and provides the HTTP client used to do so.
//
// Model values are immutable snapshots: they are constructed fresh from
// every fetch and never mutated in place. All mutations go through the
// Client, whose calls are synchronous and immediately externally visible;
// nothing is cached client-side.
package asana
