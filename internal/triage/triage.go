package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"triage/internal/action"
	"triage/internal/asana"
	"triage/internal/logging"
	"triage/internal/predicate"
	"triage/internal/sorter"
	"triage/internal/source"
	"triage/internal/workflow"
)

// Options tune a Triager.
type Options struct {
	// Workers bounds the task pool. Zero means twice GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Rule maps a matched task to the actions it should receive. The function
// runs per task, so actions can depend on the task itself.
type Rule func(task *asana.Task) []action.Action

// Triager runs registered predicates, rules, workflows, and sorters
// against every task a source provides.
type Triager struct {
	client  asana.Client
	source  source.Source
	project *asana.Project
	logger  *slog.Logger
	workers int

	ignored   []predicate.Predicate
	rules     []ruleEntry
	workflows []*workflow.Workflow
	sorters   []sectionSorter
}

type ruleEntry struct {
	when predicate.Predicate
	rule Rule
}

type sectionSorter struct {
	section *asana.Section
	by      sorter.Sorter
}

// New builds a Triager, fetching the source's project up front so
// registrations can resolve sections against it.
func New(ctx context.Context, client asana.Client, src source.Source, opts Options) (*Triager, error) {
	project, err := client.ProjectByGID(ctx, src.ProjectGID())
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", src.ProjectGID(), err)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 2 * runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Triager{
		client:  client,
		source:  src,
		project: project,
		workers: workers,
		logger:  logger.With(logging.String(logging.FieldProject, project.Name)),
	}, nil
}

// Project returns the project the triager operates on.
func (t *Triager) Project() *asana.Project {
	return t.project
}

// Ignore registers a predicate whose matches are never triaged. Matching
// short-circuits at the first registered predicate that holds, so
// registering the same predicate twice is harmless.
func (t *Triager) Ignore(p predicate.Predicate) {
	t.ignored = append(t.ignored, p)
}

// When registers a rule: tasks matching the predicate receive the actions
// the rule returns.
func (t *Triager) When(p predicate.Predicate, rule Rule) {
	t.rules = append(t.rules, ruleEntry{when: p, rule: rule})
}

// Apply registers a workflow to advance tasks through.
func (t *Triager) Apply(w *workflow.Workflow) {
	t.workflows = append(t.workflows, w)
}

// Order registers a sorter for the named section. Unknown and already
// registered sections are logged and skipped, not errors, so a renamed
// section cannot take the whole pass down.
func (t *Triager) Order(ctx context.Context, sectionName string, by sorter.Sorter) error {
	sections, err := t.client.SectionsByProject(ctx, t.project)
	if err != nil {
		return fmt.Errorf("list sections: %w", err)
	}
	section := asana.FindSection(sections, sectionName)
	if section == nil {
		t.logger.Warn("project has no such section",
			logging.String(logging.FieldSection, sectionName))
		return nil
	}
	for _, registered := range t.sorters {
		if registered.section.GID == section.GID {
			t.logger.Warn("sorter already registered for section",
				logging.String(logging.FieldSection, sectionName))
			return nil
		}
	}
	t.sorters = append(t.sorters, sectionSorter{section: section, by: by})
	return nil
}

// Run drains the source, triaging each task on the worker pool. It returns
// after every submitted task finished. Per-task failures are logged and
// contained; only source and shutdown errors propagate.
func (t *Triager) Run(ctx context.Context) error {
	t.logger.Info("triaging project")
	pool, ctx := errgroup.WithContext(ctx)
	pool.SetLimit(t.workers)

	iterator := t.source.Tasks(t.client)
	for {
		task, err := iterator.Next(ctx)
		if errors.Is(err, source.ErrDone) {
			break
		}
		if err != nil {
			_ = pool.Wait()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("draw task: %w", err)
		}
		pool.Go(func() error {
			t.triageTask(ctx, task)
			return nil
		})
	}
	return pool.Wait()
}

// triageTask runs one task through ignores, rules, and workflows. All
// failure modes stop this task only.
func (t *Triager) triageTask(ctx context.Context, task *asana.Task) {
	logger := t.logger.With(
		logging.String(logging.FieldTaskGID, task.GID),
		logging.String(logging.FieldCorrelationID, uuid.NewString()))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while triaging task", logging.Any("panic", r))
		}
	}()

	for _, ignore := range t.ignored {
		ok, err := ignore.Matches(ctx, task, t.client)
		if err != nil {
			logger.Error("evaluate ignore predicate",
				logging.String(logging.FieldPredicate, ignore.String()),
				logging.Error(err))
			return
		}
		if ok {
			logger.Debug("task matched ignore predicate, skipping",
				logging.String(logging.FieldPredicate, ignore.String()))
			return
		}
	}

	var actions []action.Action
	for _, entry := range t.rules {
		ok, err := entry.when.Matches(ctx, task, t.client)
		if err != nil {
			logger.Error("evaluate rule predicate",
				logging.String(logging.FieldPredicate, entry.when.String()),
				logging.Error(err))
			return
		}
		if ok {
			actions = append(actions, entry.rule(task)...)
		}
	}
	for _, act := range actions {
		if err := act.Apply(ctx, task, t.client, logger); err != nil {
			logger.Error("apply action",
				logging.String(logging.FieldAction, act.String()),
				logging.Error(err))
			return
		}
	}

	for _, flow := range t.workflows {
		if err := flow.Apply(ctx, task, t.client); err != nil {
			logger.Error("apply workflow",
				logging.String(logging.FieldWorkflow, flow.String()),
				logging.Error(err))
			return
		}
	}
}

// Sort reconciles each registered section's order with its sorter.
// Sections run as independent pool units; a failing section is logged and
// does not stop the others.
func (t *Triager) Sort(ctx context.Context) error {
	t.logger.Info("sorting project")
	pool, ctx := errgroup.WithContext(ctx)
	pool.SetLimit(t.workers)
	for _, registered := range t.sorters {
		pool.Go(func() error {
			t.sortSection(ctx, registered.section, registered.by)
			return nil
		})
	}
	return pool.Wait()
}

// SectionPlan describes the moves a sort pass would make in one section.
type SectionPlan struct {
	Section string
	Moves   []sorter.Move
}

// Plan computes the moves Sort would apply without applying them.
func (t *Triager) Plan(ctx context.Context) ([]SectionPlan, error) {
	var plans []SectionPlan
	for _, registered := range t.sorters {
		tasks, err := t.client.TasksBySection(ctx, registered.section, false)
		if err != nil {
			return nil, fmt.Errorf("fetch tasks in %q: %w", registered.section.Name, err)
		}
		plans = append(plans, SectionPlan{
			Section: registered.section.Name,
			Moves:   sorter.PlanMoves(tasks, sorter.Sort(tasks, registered.by)),
		})
	}
	return plans, nil
}

func (t *Triager) sortSection(ctx context.Context, section *asana.Section, by sorter.Sorter) {
	logger := t.logger.With(logging.String(logging.FieldSection, section.Name))
	logger.Info("sorting section")

	tasks, err := t.client.TasksBySection(ctx, section, false)
	if err != nil {
		logger.Error("fetch section tasks", logging.Error(err))
		return
	}
	moves := sorter.PlanMoves(tasks, sorter.Sort(tasks, by))
	for _, move := range moves {
		err := t.client.ReorderInProject(ctx, move.Task, t.project, move.Reference, move.Direction)
		if err != nil {
			// Later moves assume this one landed, so the section is
			// abandoned for this pass.
			logger.Error("reorder task",
				logging.String(logging.FieldTaskGID, move.Task.GID),
				logging.Error(err))
			return
		}
	}
	logger.Info("finished sorting section", logging.Int("moves", len(moves)))
}
