// Package predicate implements the boolean conditions tasks are tested
// against.
//
// A predicate is a pure function of a task snapshot and the API client,
// stateless aside from construction-time parameters. Predicates compose
// into trees with And, Or, and Not; And and Or short-circuit, so the second
// operand is only evaluated when the first leaves the outcome open.
//
// Leaves that need history query the client for the task's stories on every
// evaluation; nothing is cached across predicates.
package predicate
