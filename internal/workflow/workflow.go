package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"triage/internal/action"
	"triage/internal/asana"
	"triage/internal/logging"
	"triage/internal/predicate"
)

// Stage is one step of a workflow. A task enters the stage when its Enter
// predicate holds, and the OnEnter actions run as it does.
type Stage struct {
	Name    string
	Enter   predicate.Predicate
	OnEnter []action.Action
}

// StageManager reads and writes a task's current stage. The opaque context
// values carry whatever the manager learned in one call into the next, so
// resolution work is not repeated.
//
// CurrentStage returns a nil stage for a task that has not started the
// workflow. An error from CurrentStage or CanSetStage means the task cannot
// be linked to the workflow at all; Workflow logs it as a warning and skips
// the task rather than failing the pass.
type StageManager interface {
	CurrentStage(task *asana.Task) (*Stage, any, error)
	CanSetStage(ctx context.Context, stage *Stage, client asana.Client, getContext any) (any, error)
	SetStage(ctx context.Context, task *asana.Task, client asana.Client, setContext any) error
}

// Workflow is a named sequence of stages plus the manager that persists
// progress through them.
type Workflow struct {
	name    string
	stages  []*Stage
	manager StageManager
	logger  *slog.Logger
}

// New builds a workflow over the given stages. A nil logger disables
// logging.
func New(name string, stages []*Stage, manager StageManager, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Workflow{
		name:    name,
		stages:  stages,
		manager: manager,
		logger:  logger.With(logging.String(logging.FieldWorkflow, name)),
	}
}

func (w *Workflow) String() string {
	return fmt.Sprintf("Workflow(%s)", w.name)
}

// Apply advances the task as far as its entry conditions allow, in one
// pass. A task can cross several stages at once, collecting every crossed
// stage's actions; the actions run only after the manager confirms the
// final stage can be persisted, so a persistence refusal leaks nothing.
func (w *Workflow) Apply(ctx context.Context, task *asana.Task, client asana.Client) error {
	current, getContext, err := w.manager.CurrentStage(task)
	if err != nil {
		w.logger.Warn("cannot resolve stage",
			logging.String(logging.FieldTaskGID, task.GID),
			logging.Error(err))
		return nil
	}
	original := current

	next := w.nextStage(current)
	var actions []action.Action
	for next != nil {
		ok, err := next.Enter.Matches(ctx, task, client)
		if err != nil {
			return fmt.Errorf("evaluate entry to %q: %w", next.Name, err)
		}
		if !ok {
			break
		}
		actions = append(actions, next.OnEnter...)
		current, next = next, w.nextStage(next)
	}
	if current == nil || current == original {
		return nil
	}

	setContext, err := w.manager.CanSetStage(ctx, current, client, getContext)
	if err != nil {
		w.logger.Warn("cannot persist stage",
			logging.String(logging.FieldTaskGID, task.GID),
			logging.String(logging.FieldStage, current.Name),
			logging.Error(err))
		return nil
	}
	for _, act := range actions {
		if err := act.Apply(ctx, task, client, w.logger); err != nil {
			return fmt.Errorf("apply %s entering %q: %w", act, current.Name, err)
		}
	}
	if err := w.manager.SetStage(ctx, task, client, setContext); err != nil {
		return fmt.Errorf("persist stage %q: %w", current.Name, err)
	}
	w.logger.Info("advanced stage",
		logging.String(logging.FieldTaskGID, task.GID),
		logging.String(logging.FieldStage, current.Name))
	return nil
}

// nextStage returns the stage after the given one, the first stage for a
// task with none, and nil past the end.
func (w *Workflow) nextStage(stage *Stage) *Stage {
	if stage == nil {
		if len(w.stages) == 0 {
			return nil
		}
		return w.stages[0]
	}
	for i, candidate := range w.stages {
		if candidate == stage && i+1 < len(w.stages) {
			return w.stages[i+1]
		}
	}
	return nil
}

func findStage(stages []*Stage, name string) *Stage {
	for _, stage := range stages {
		if stage.Name == name {
			return stage
		}
	}
	return nil
}
