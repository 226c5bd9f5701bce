package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"triage/internal/asana"
)

type fakeClient struct {
	asana.Client

	project *asana.Project
	batches [][]*asana.Task
	filters []asana.TaskFilter
	pulls   int
}

func (f *fakeClient) ProjectByGID(_ context.Context, gid string) (*asana.Project, error) {
	if f.project == nil {
		return &asana.Project{GID: gid, Name: "Bugs"}, nil
	}
	return f.project, nil
}

func (f *fakeClient) TasksByProject(_ context.Context, _ *asana.Project, filter asana.TaskFilter) ([]*asana.Task, error) {
	f.filters = append(f.filters, filter)
	var batch []*asana.Task
	if f.pulls < len(f.batches) {
		batch = f.batches[f.pulls]
	}
	f.pulls++
	return batch, nil
}

func drain(t *testing.T, it Iterator) []*asana.Task {
	t.Helper()
	var tasks []*asana.Task
	for {
		task, err := it.Next(context.Background())
		if errors.Is(err, ErrDone) {
			return tasks
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		tasks = append(tasks, task)
	}
}

func TestPollingSinglePass(t *testing.T) {
	client := &fakeClient{batches: [][]*asana.Task{
		{{GID: "1"}, {GID: "2"}},
	}}
	src := NewPolling("100", PollingOptions{OnlyIncomplete: true})

	tasks := drain(t, src.Tasks(client))
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if client.pulls != 1 {
		t.Fatalf("pulled %d times, want 1", client.pulls)
	}
	if !client.filters[0].OnlyIncomplete {
		t.Fatal("filter did not request incomplete tasks")
	}
}

func TestPollingRepeats(t *testing.T) {
	client := &fakeClient{batches: [][]*asana.Task{
		{{GID: "1"}},
		{{GID: "2"}},
	}}
	src := NewPolling("100", PollingOptions{RepeatAfter: time.Millisecond})
	it := src.Tasks(client)

	for _, want := range []string{"1", "2"} {
		task, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if task.GID != want {
			t.Fatalf("got task %s, want %s", task.GID, want)
		}
	}
	if client.pulls != 2 {
		t.Fatalf("pulled %d times, want 2", client.pulls)
	}
}

func TestPollingStopsOnCancel(t *testing.T) {
	client := &fakeClient{}
	src := NewPolling("100", PollingOptions{RepeatAfter: time.Hour})
	it := src.Tasks(client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := it.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestModifiedSinceAdvancesWatermark(t *testing.T) {
	clock := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	previous := now
	now = func() time.Time { return clock }
	defer func() { now = previous }()

	client := &fakeClient{batches: [][]*asana.Task{
		{{GID: "1"}},
		{{GID: "2"}},
	}}
	mark := &memoryWatermark{last: clock.Add(-time.Hour)}
	src := NewModifiedSince("100", ModifiedSinceOptions{
		Delay:     time.Millisecond,
		Watermark: mark,
	})
	it := src.Tasks(client)

	task, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if task.GID != "1" {
		t.Fatalf("got task %s, want 1", task.GID)
	}
	if got := client.filters[0].ModifiedSince; got == nil || !got.Equal(clock.Add(-time.Hour)) {
		t.Fatalf("first pull used modified-since %v", got)
	}

	clock = clock.Add(time.Minute)
	if _, err := it.Next(context.Background()); err != nil {
		t.Fatalf("next: %v", err)
	}
	// The second pull's window starts where the first pull started.
	if got := client.filters[1].ModifiedSince; got == nil || !got.Equal(clock.Add(-time.Minute)) {
		t.Fatalf("second pull used modified-since %v", got)
	}
}

func TestMemoryWatermarkStartsAtCreationTime(t *testing.T) {
	clock := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	previous := now
	now = func() time.Time { return clock }
	defer func() { now = previous }()

	mark := &memoryWatermark{}
	got, err := mark.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Equal(clock) {
		t.Fatalf("got %v, want %v", got, clock)
	}
}
