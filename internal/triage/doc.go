// Package triage wires the engine together: it drains a task source and
// runs each task through the registered ignore predicates, rules, and
// workflows on a bounded worker pool, and reconciles section order with the
// registered sorters.
//
// One misbehaving task never stops a pass. Panics and errors are captured
// at the per-task boundary, logged with a correlation id, and the pool
// moves on.
package triage
