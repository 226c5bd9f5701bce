package sorter

import (
	"slices"
	"sort"

	"triage/internal/asana"
)

// Move relocates a task to sit immediately before or after a reference
// task, matching the remote reorder primitive.
type Move struct {
	Task      *asana.Task
	Direction asana.MoveDirection
	Reference *asana.Task
}

type rankedTask struct {
	rank int
	task *asana.Task
}

// PlanMoves returns the fewest relocations that transform the current
// physical order into the target order. Tasks already forming the longest
// run in target order stay put; every other task gets exactly one move.
// Moves must be applied in the order returned, since later moves assume
// earlier ones took effect.
func PlanMoves(current, target []*asana.Task) []Move {
	if len(current) < 2 {
		return nil
	}

	ranked := make([]rankedTask, len(current))
	for i, task := range current {
		ranked[i] = rankedTask{rank: slices.Index(target, task), task: task}
	}

	var moves []Move
	// The backbone holds the tasks placed so far, kept sorted by target
	// rank. A task whose rank slots in at a position the original order
	// already satisfies needs no move.
	backbone := []rankedTask{ranked[0]}
	for _, elem := range ranked[1:] {
		index := sort.Search(len(backbone), func(i int) bool {
			return backbone[i].rank >= elem.rank
		})
		if ranked[index].rank != elem.rank {
			if index == 0 {
				moves = append(moves, Move{Task: elem.task, Direction: asana.MoveBefore, Reference: backbone[0].task})
			} else {
				moves = append(moves, Move{Task: elem.task, Direction: asana.MoveAfter, Reference: backbone[index-1].task})
			}
		}
		backbone = slices.Insert(backbone, index, elem)
	}
	return moves
}
