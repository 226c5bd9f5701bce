// Package sorter orders tasks within sections and reconciles the remote
// order with the desired one using the fewest relocation calls.
//
// A Sorter maps each task to a numeric key slice compared element-wise;
// sorters compose with Then for multi-level sorts. PlanMoves turns a
// current/target order pair into before/after relocation instructions.
package sorter
