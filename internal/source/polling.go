package source

import (
	"context"
	"fmt"
	"time"

	"triage/internal/asana"
)

// PollingOptions tune a polling source.
type PollingOptions struct {
	// RepeatAfter makes the source infinite: after draining the project
	// it waits this long and pulls again. Zero means one pass.
	RepeatAfter time.Duration
	// OnlyIncomplete restricts pulls to incomplete tasks. Large projects
	// are slow to drain without it.
	OnlyIncomplete bool
}

// NewPolling returns a source that fetches every task in the project,
// optionally forever on an interval.
func NewPolling(projectGID string, opts PollingOptions) Source {
	return &pollingSource{projectGID: projectGID, opts: opts}
}

type pollingSource struct {
	projectGID string
	opts       PollingOptions
}

func (s *pollingSource) ProjectGID() string { return s.projectGID }

func (s *pollingSource) Tasks(client asana.Client) Iterator {
	return &pollingIterator{source: s, client: client}
}

type pollingIterator struct {
	source  *pollingSource
	client  asana.Client
	project *asana.Project
	batch   []*asana.Task
	index   int
	pulled  bool
}

func (it *pollingIterator) Next(ctx context.Context) (*asana.Task, error) {
	for {
		if it.index < len(it.batch) {
			task := it.batch[it.index]
			it.index++
			return task, nil
		}
		if it.pulled {
			if it.source.opts.RepeatAfter == 0 {
				return nil, ErrDone
			}
			if err := wait(ctx, it.source.opts.RepeatAfter); err != nil {
				return nil, err
			}
		}
		if err := it.pull(ctx); err != nil {
			return nil, err
		}
	}
}

func (it *pollingIterator) pull(ctx context.Context) error {
	if it.project == nil {
		project, err := it.client.ProjectByGID(ctx, it.source.projectGID)
		if err != nil {
			return fmt.Errorf("fetch project: %w", err)
		}
		it.project = project
	}
	filter := asana.TaskFilter{OnlyIncomplete: it.source.opts.OnlyIncomplete}
	tasks, err := it.client.TasksByProject(ctx, it.project, filter)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	it.batch, it.index, it.pulled = tasks, 0, true
	return nil
}
