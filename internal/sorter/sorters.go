package sorter

import (
	"fmt"
	"math"

	"triage/internal/asana"
	"triage/internal/textutil"
)

// ByLikes sorts tasks by like count. Pass ascending=false for most-liked
// first.
func ByLikes(ascending bool) Sorter {
	return byLikes{order: direction(ascending)}
}

type byLikes struct {
	order float64
}

func (s byLikes) Key(task *asana.Task) []float64 {
	return []float64{s.order * float64(task.NumLikes)}
}

func (byLikes) String() string { return "ByLikes" }

// ByDueDate sorts tasks by due date. Tasks without one go to the start or
// the end of the section depending on missingFirst, whatever the direction.
func ByDueDate(ascending, missingFirst bool) Sorter {
	return byDate{
		name:    "ByDueDate",
		order:   direction(ascending),
		missing: missingValue(missingFirst),
		date:    func(task *asana.Task) *asana.Date { return task.DueOn },
	}
}

// ByStartDate sorts tasks by start date, with the same missing-value
// placement as ByDueDate.
func ByStartDate(ascending, missingFirst bool) Sorter {
	return byDate{
		name:    "ByStartDate",
		order:   direction(ascending),
		missing: missingValue(missingFirst),
		date:    func(task *asana.Task) *asana.Date { return task.StartOn },
	}
}

type byDate struct {
	name    string
	order   float64
	missing float64
	date    func(*asana.Task) *asana.Date
}

func (s byDate) Key(task *asana.Task) []float64 {
	if date := s.date(task); date != nil {
		return []float64{s.order * float64(date.Days())}
	}
	return []float64{s.missing}
}

func (s byDate) String() string { return s.name }

// ByAssignee sorts tasks by assignee name according to an explicit order.
// An empty string in the list marks where unassigned tasks go; assignees
// not in the list sort after everything listed.
func ByAssignee(orderedNames []string) Sorter {
	return listSorter{
		name:    "ByAssignee",
		ordered: orderedNames,
		attr: func(task *asana.Task) string {
			if task.Assignee == nil {
				return ""
			}
			return task.Assignee.Name
		},
	}
}

// ByEnumField sorts tasks by an enum custom field according to an explicit
// option order. An empty string in the list marks where tasks without a
// value (or without the field) go; options not in the list sort after
// everything listed.
func ByEnumField(fieldName string, orderedOptions []string) Sorter {
	return listSorter{
		name:    fmt.Sprintf("ByEnumField(%s)", fieldName),
		ordered: orderedOptions,
		attr: func(task *asana.Task) string {
			field := asana.FindCustomField(task.CustomFields, fieldName)
			if field == nil || field.EnumValue == nil {
				return ""
			}
			return field.EnumValue.Name
		},
	}
}

type listSorter struct {
	name    string
	ordered []string
	attr    func(*asana.Task) string
}

func (s listSorter) Key(task *asana.Task) []float64 {
	attr := s.attr(task)
	for i, item := range s.ordered {
		if item == attr || (item != "" && textutil.EqualNames(item, attr)) {
			return []float64{float64(i)}
		}
	}
	// One past the end, after every listed value.
	return []float64{float64(len(s.ordered))}
}

func (s listSorter) String() string { return s.name }

// ByNumberField sorts tasks by a number custom field. Tasks without a value
// always sort last, whatever the direction.
func ByNumberField(fieldName string, ascending bool) Sorter {
	return byNumberField{name: fieldName, order: direction(ascending)}
}

type byNumberField struct {
	name  string
	order float64
}

func (s byNumberField) Key(task *asana.Task) []float64 {
	field := asana.FindCustomField(task.CustomFields, s.name)
	if field == nil || field.NumberValue == nil {
		return []float64{math.Inf(1)}
	}
	return []float64{s.order * *field.NumberValue}
}

func (s byNumberField) String() string {
	return fmt.Sprintf("ByNumberField(%s)", s.name)
}

func direction(ascending bool) float64 {
	if ascending {
		return 1
	}
	return -1
}

func missingValue(missingFirst bool) float64 {
	if missingFirst {
		return math.Inf(-1)
	}
	return math.Inf(1)
}
