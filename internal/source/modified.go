package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"triage/internal/asana"
)

const defaultModifiedDelay = 60 * time.Second

// Watermark persists when a modified-since source last pulled, so a
// restarted engine resumes without missing changes. A zero time from Get
// means no watermark exists yet.
type Watermark interface {
	Get(ctx context.Context) (time.Time, error)
	Set(ctx context.Context, t time.Time) error
}

// ModifiedSinceOptions tune a modified-since source.
type ModifiedSinceOptions struct {
	// Delay between pulls. Defaults to one minute.
	Delay time.Duration
	// Watermark storage. Defaults to in-memory, so change tracking
	// starts when the source is created.
	Watermark Watermark
}

// NewModifiedSince returns an infinite source that pulls only tasks
// modified since the previous pull. Tasks that see no activity never
// appear, and a task under constant edits appears in every pull.
func NewModifiedSince(projectGID string, opts ModifiedSinceOptions) Source {
	if opts.Delay == 0 {
		opts.Delay = defaultModifiedDelay
	}
	if opts.Watermark == nil {
		opts.Watermark = &memoryWatermark{}
	}
	return &modifiedSource{projectGID: projectGID, opts: opts}
}

type modifiedSource struct {
	projectGID string
	opts       ModifiedSinceOptions
}

func (s *modifiedSource) ProjectGID() string { return s.projectGID }

func (s *modifiedSource) Tasks(client asana.Client) Iterator {
	return &modifiedIterator{source: s, client: client}
}

type modifiedIterator struct {
	source  *modifiedSource
	client  asana.Client
	project *asana.Project
	batch   []*asana.Task
	index   int
	pulled  bool
}

func (it *modifiedIterator) Next(ctx context.Context) (*asana.Task, error) {
	for {
		if it.index < len(it.batch) {
			task := it.batch[it.index]
			it.index++
			return task, nil
		}
		if it.pulled {
			if err := wait(ctx, it.source.opts.Delay); err != nil {
				return nil, err
			}
		}
		if err := it.pull(ctx); err != nil {
			return nil, err
		}
	}
}

func (it *modifiedIterator) pull(ctx context.Context) error {
	if it.project == nil {
		project, err := it.client.ProjectByGID(ctx, it.source.projectGID)
		if err != nil {
			return fmt.Errorf("fetch project: %w", err)
		}
		it.project = project
	}
	since, err := it.source.opts.Watermark.Get(ctx)
	if err != nil {
		return fmt.Errorf("read watermark: %w", err)
	}
	pullStart := now()
	filter := asana.TaskFilter{}
	if !since.IsZero() {
		filter.ModifiedSince = &since
	}
	tasks, err := it.client.TasksByProject(ctx, it.project, filter)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}
	// Advance the watermark only after a successful pull; a failed pull
	// repeats the same window.
	if err := it.source.opts.Watermark.Set(ctx, pullStart); err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	it.batch, it.index, it.pulled = tasks, 0, true
	return nil
}

type memoryWatermark struct {
	mu   sync.Mutex
	last time.Time
}

func (w *memoryWatermark) Get(context.Context) (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last.IsZero() {
		w.last = now()
	}
	return w.last, nil
}

func (w *memoryWatermark) Set(_ context.Context, t time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = t
	return nil
}

var _ Watermark = (*memoryWatermark)(nil)
