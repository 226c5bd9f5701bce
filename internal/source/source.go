package source

import (
	"context"
	"errors"
	"time"

	"triage/internal/asana"
)

// ErrDone signals that a finite source has yielded its last task.
var ErrDone = errors.New("task source drained")

// Source provides tasks from one project.
type Source interface {
	ProjectGID() string
	// Tasks begins a fresh pull. The returned iterator is not safe for
	// concurrent use.
	Tasks(client asana.Client) Iterator
}

// Iterator hands out tasks one at a time. Next returns ErrDone when a
// finite source is exhausted and the context's error when the caller is
// shutting down; infinite sources block between pulls instead of
// returning ErrDone.
type Iterator interface {
	Next(ctx context.Context) (*asana.Task, error)
}

// now is the clock for watermarks and tests.
var now = func() time.Time { return time.Now().UTC() }

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
