// Package action defines the side effects the engine can apply to a task.
// Actions are small, idempotent writes against the remote API; rules and
// workflow stages compose them.
package action
