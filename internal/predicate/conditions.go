package predicate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"triage/internal/asana"
	"triage/internal/textutil"
)

// Assigned matches tasks with an assignee. A non-empty name narrows the
// match to that assignee; an empty name matches any assignee.
func Assigned(to string) Predicate {
	return assigned{name: to}
}

type assigned struct {
	name string
}

func (p assigned) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	if task.Assignee == nil {
		return false, nil
	}
	return p.name == "" || textutil.EqualNames(task.Assignee.Name, p.name), nil
}

func (p assigned) String() string {
	if p.name != "" {
		return fmt.Sprintf("Assigned to '%s'", p.name)
	}
	return "Assigned"
}

// Unassigned matches tasks with no assignee.
func Unassigned() Predicate {
	return unassigned{}
}

type unassigned struct{}

func (unassigned) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	return task.Assignee == nil, nil
}

func (unassigned) String() string { return "Unassigned" }

// IsComplete matches completed tasks.
func IsComplete() Predicate {
	return isComplete{}
}

type isComplete struct{}

func (isComplete) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	return task.Completed, nil
}

func (isComplete) String() string { return "IsComplete" }

// IsIncomplete matches incomplete tasks.
func IsIncomplete() Predicate {
	return isIncomplete{}
}

type isIncomplete struct{}

func (isIncomplete) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	return !task.Completed, nil
}

func (isIncomplete) String() string { return "IsIncomplete" }

// Overdue matches tasks whose due date or datetime has passed. A task due
// today (date only) is not overdue; a task with no due date never is.
func Overdue() Predicate {
	return overdue{}
}

type overdue struct{}

func (overdue) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	switch {
	case task.DueAt != nil:
		return task.DueAt.Before(now()), nil
	case task.DueOn != nil:
		return task.DueOn.Days() < today(), nil
	}
	return false, nil
}

func (overdue) String() string { return "Overdue" }

// HasNoDueDate matches tasks without a due date or datetime.
func HasNoDueDate() Predicate {
	return hasNoDueDate{}
}

type hasNoDueDate struct{}

func (hasNoDueDate) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	return task.DueAt == nil && task.DueOn == nil, nil
}

func (hasNoDueDate) String() string { return "HasNoDueDate" }

// DueWithin matches tasks that would become overdue once the window
// elapses. Tasks already overdue do not match.
func DueWithin(window time.Duration) Predicate {
	return dueWithin{window: window}
}

type dueWithin struct {
	window time.Duration
}

func (p dueWithin) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	if task.DueAt != nil {
		n := now()
		return n.Before(*task.DueAt) && !task.DueAt.After(n.Add(p.window)), nil
	}
	if task.DueOn != nil {
		due := task.DueOn.Days()
		windowDays := int64(p.window / (24 * time.Hour))
		return today() < due && due <= today()+windowDays, nil
	}
	return false, nil
}

func (p dueWithin) String() string {
	return fmt.Sprintf("DueWithin %s", p.window)
}

func today() int64 {
	return now().Unix() / 86400
}

// HasDescription matches tasks whose description satisfies the matcher. A
// nil matcher checks for a non-empty description.
func HasDescription(matcher func(string) bool) Predicate {
	return hasDescription{matcher: matcher}
}

type hasDescription struct {
	matcher func(string) bool
}

func (p hasDescription) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	if p.matcher == nil {
		return task.Notes != "", nil
	}
	return p.matcher(task.Notes), nil
}

func (hasDescription) String() string { return "HasDescription" }

// HasComment matches tasks with a comment satisfying the matcher. A nil
// matcher accepts any comment.
func HasComment(matcher func(string) bool) Predicate {
	return hasComment{matcher: matcher}
}

// HasCommentContaining matches tasks with a comment containing the given
// text literally.
func HasCommentContaining(text string) Predicate {
	return hasComment{matcher: func(comment string) bool {
		return strings.Contains(comment, text)
	}}
}

type hasComment struct {
	matcher func(string) bool
}

func (p hasComment) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	comments, err := asana.CommentsByTask(ctx, task, client)
	if err != nil {
		return false, err
	}
	for _, comment := range comments {
		if p.matcher == nil || p.matcher(comment.Text) {
			return true, nil
		}
	}
	return false, nil
}

func (hasComment) String() string { return "HasComment" }

// HasExternal matches tasks carrying external data that satisfies the
// matcher. A nil matcher accepts any external object.
func HasExternal(matcher func(*asana.External) bool) Predicate {
	return hasExternal{matcher: matcher}
}

type hasExternal struct {
	matcher func(*asana.External) bool
}

func (p hasExternal) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	if task.External == nil {
		return false, nil
	}
	if p.matcher == nil {
		return true, nil
	}
	return p.matcher(task.External), nil
}

func (hasExternal) String() string { return "HasExternal" }
