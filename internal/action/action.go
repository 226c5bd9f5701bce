package action

import (
	"context"
	"fmt"
	"log/slog"

	"triage/internal/asana"
	"triage/internal/logging"
)

// Action is a single write applied to a task. Apply returns an error only
// for remote failures; a precondition that does not hold (a referenced
// custom field the task lacks, say) is logged as a warning and skipped so
// one misconfigured action cannot wedge a rule.
type Action interface {
	Apply(ctx context.Context, task *asana.Task, client asana.Client, logger *slog.Logger) error
	fmt.Stringer
}

// AddComment posts a comment on the task.
func AddComment(text string) Action {
	return addComment{text: text}
}

type addComment struct {
	text string
}

func (a addComment) Apply(ctx context.Context, task *asana.Task, client asana.Client, _ *slog.Logger) error {
	if err := client.AddComment(ctx, task, a.text); err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

func (a addComment) String() string {
	return fmt.Sprintf("AddComment(%q)", a.text)
}

// AddFollower adds a follower to the task. The follower may be a user GID
// or an email address, as the API accepts either.
func AddFollower(follower string) Action {
	return addFollower{follower: follower}
}

type addFollower struct {
	follower string
}

func (a addFollower) Apply(ctx context.Context, task *asana.Task, client asana.Client, _ *slog.Logger) error {
	if err := client.AddFollower(ctx, task, a.follower); err != nil {
		return fmt.Errorf("add follower: %w", err)
	}
	return nil
}

func (a addFollower) String() string {
	return fmt.Sprintf("AddFollower(%s)", a.follower)
}

// AssignTo sets the task's assignee. A nil assignee clears it.
func AssignTo(assignee *string) Action {
	return assignTo{assignee: assignee}
}

type assignTo struct {
	assignee *string
}

func (a assignTo) Apply(ctx context.Context, task *asana.Task, client asana.Client, _ *slog.Logger) error {
	if err := client.SetAssignee(ctx, task, a.assignee); err != nil {
		return fmt.Errorf("set assignee: %w", err)
	}
	return nil
}

func (a assignTo) String() string {
	if a.assignee == nil {
		return "AssignTo(nobody)"
	}
	return fmt.Sprintf("AssignTo(%s)", *a.assignee)
}

// SetEnumField sets the named enum custom field to the named option. Tasks
// missing the field, or fields missing the option, are skipped with a
// warning. Setting a field to its current value is a no-op.
func SetEnumField(fieldName, optionName string) Action {
	return setEnumField{fieldName: fieldName, optionName: optionName}
}

type setEnumField struct {
	fieldName  string
	optionName string
}

func (a setEnumField) Apply(ctx context.Context, task *asana.Task, client asana.Client, logger *slog.Logger) error {
	field := asana.FindCustomField(task.CustomFields, a.fieldName)
	if field == nil {
		logger.Warn("task has no such custom field, skipping",
			logging.String(logging.FieldTaskGID, task.GID),
			logging.String(logging.FieldAction, a.String()))
		return nil
	}
	option := asana.FindEnumOption(field.EnumOptions, a.optionName)
	if option == nil {
		logger.Warn("custom field has no such option, skipping",
			logging.String(logging.FieldTaskGID, task.GID),
			logging.String(logging.FieldAction, a.String()))
		return nil
	}
	if field.EnumValue != nil && field.EnumValue.GID == option.GID {
		return nil
	}
	if err := client.SetEnumField(ctx, task, field, option); err != nil {
		return fmt.Errorf("set enum field: %w", err)
	}
	return nil
}

func (a setEnumField) String() string {
	return fmt.Sprintf("SetEnumField(%s=%s)", a.fieldName, a.optionName)
}

// SetExternal merges the given keys into the task's external data,
// preserving keys it does not name.
func SetExternal(data map[string]any) Action {
	return setExternal{data: data}
}

type setExternal struct {
	data map[string]any
}

func (a setExternal) Apply(ctx context.Context, task *asana.Task, client asana.Client, _ *slog.Logger) error {
	external := &asana.External{Data: map[string]any{}}
	if task.External != nil {
		external.GID = task.External.GID
		for key, value := range task.External.Data {
			external.Data[key] = value
		}
	}
	for key, value := range a.data {
		external.Data[key] = value
	}
	if err := client.SetExternal(ctx, task, external); err != nil {
		return fmt.Errorf("set external: %w", err)
	}
	return nil
}

func (a setExternal) String() string {
	return fmt.Sprintf("SetExternal(%v)", a.data)
}
