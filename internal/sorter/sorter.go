package sorter

import (
	"fmt"
	"slices"
	"sort"

	"triage/internal/asana"
)

// Sorter assigns each task a sort key. Keys are compared element-wise with
// the first element most significant, so sorters of any depth compose.
type Sorter interface {
	Key(task *asana.Task) []float64
	fmt.Stringer
}

// Then merges two sorters: tasks sort first by the first sorter, ties
// broken by the second.
func Then(first, second Sorter) Sorter {
	return merged{first: first, second: second}
}

type merged struct {
	first  Sorter
	second Sorter
}

func (m merged) Key(task *asana.Task) []float64 {
	return append(m.first.Key(task), m.second.Key(task)...)
}

func (m merged) String() string {
	return fmt.Sprintf("(%s and then %s)", m.first, m.second)
}

// Sort returns a new slice with the tasks in the order the sorter defines.
// Tasks with equal keys keep their input order.
func Sort(tasks []*asana.Task, by Sorter) []*asana.Task {
	sorted := slices.Clone(tasks)
	keys := make(map[*asana.Task][]float64, len(sorted))
	for _, task := range sorted {
		keys[task] = by.Key(task)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return slices.Compare(keys[sorted[i]], keys[sorted[j]]) < 0
	})
	return sorted
}
