package triage

import (
	"context"
	"sync"
	"testing"

	"triage/internal/action"
	"triage/internal/asana"
	"triage/internal/predicate"
	"triage/internal/sorter"
	"triage/internal/source"
)

type fakeClient struct {
	asana.Client

	mu       sync.Mutex
	project  *asana.Project
	sections []*asana.Section
	tasks    []*asana.Task
	byGID    map[string][]*asana.Task

	comments map[string][]string
	moves    []string
}

func newFakeClient(tasks ...*asana.Task) *fakeClient {
	return &fakeClient{
		project:  &asana.Project{GID: "100", Name: "Bugs"},
		tasks:    tasks,
		comments: map[string][]string{},
	}
}

func (f *fakeClient) ProjectByGID(_ context.Context, gid string) (*asana.Project, error) {
	return f.project, nil
}

func (f *fakeClient) TasksByProject(context.Context, *asana.Project, asana.TaskFilter) ([]*asana.Task, error) {
	return f.tasks, nil
}

func (f *fakeClient) SectionsByProject(context.Context, *asana.Project) ([]*asana.Section, error) {
	return f.sections, nil
}

func (f *fakeClient) TasksBySection(_ context.Context, section *asana.Section, _ bool) ([]*asana.Task, error) {
	return f.byGID[section.GID], nil
}

func (f *fakeClient) AddComment(_ context.Context, task *asana.Task, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[task.GID] = append(f.comments[task.GID], text)
	return nil
}

func (f *fakeClient) ReorderInProject(_ context.Context, task *asana.Task, _ *asana.Project, reference *asana.Task, direction asana.MoveDirection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, task.GID+" "+string(direction)+" "+reference.GID)
	return nil
}

func newTriager(t *testing.T, client *fakeClient) *Triager {
	t.Helper()
	src := source.NewPolling("100", source.PollingOptions{})
	triager, err := New(context.Background(), client, src, Options{Workers: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return triager
}

func TestRunAppliesRuleActions(t *testing.T) {
	client := newFakeClient(&asana.Task{GID: "1"}, &asana.Task{GID: "2", Completed: true})
	triager := newTriager(t, client)
	triager.When(predicate.IsIncomplete(), func(*asana.Task) []action.Action {
		return []action.Action{action.AddComment("still open")}
	})

	if err := triager.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := client.comments["1"]; len(got) != 1 || got[0] != "still open" {
		t.Fatalf("task 1 comments = %v", got)
	}
	if got := client.comments["2"]; len(got) != 0 {
		t.Fatalf("completed task commented on: %v", got)
	}
}

func TestRunIgnoreShortCircuits(t *testing.T) {
	client := newFakeClient(&asana.Task{GID: "1", Completed: true})
	triager := newTriager(t, client)
	triager.Ignore(predicate.IsComplete())

	ruleRan := false
	triager.When(&spyPredicate{result: true, seen: &ruleRan}, func(*asana.Task) []action.Action {
		t.Error("rule produced actions for an ignored task")
		return nil
	})

	if err := triager.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ruleRan {
		t.Fatal("rule predicate evaluated for an ignored task")
	}
}

func TestRunContainsPanics(t *testing.T) {
	client := newFakeClient(&asana.Task{GID: "1"}, &asana.Task{GID: "2"})
	triager := newTriager(t, client)
	triager.When(predicate.AlwaysTrue(), func(task *asana.Task) []action.Action {
		if task.GID == "1" {
			panic("bad rule")
		}
		return []action.Action{action.AddComment("survived")}
	})

	if err := triager.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := client.comments["2"]; len(got) != 1 {
		t.Fatalf("panic in one task starved another: %v", got)
	}
}

func TestRunContainsPredicateErrors(t *testing.T) {
	client := newFakeClient(&asana.Task{GID: "1"}, &asana.Task{GID: "2"})
	triager := newTriager(t, client)
	triager.When(&erroringPredicate{failGID: "1"}, func(*asana.Task) []action.Action {
		return []action.Action{action.AddComment("checked")}
	})

	if err := triager.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := client.comments["1"]; len(got) != 0 {
		t.Fatalf("failing task still got actions: %v", got)
	}
	if got := client.comments["2"]; len(got) != 1 {
		t.Fatalf("healthy task lost its actions: %v", got)
	}
}

func TestOrderSkipsUnknownAndDuplicateSections(t *testing.T) {
	client := newFakeClient()
	client.sections = []*asana.Section{{GID: "10", Name: "Inbox"}}
	triager := newTriager(t, client)
	ctx := context.Background()

	if err := triager.Order(ctx, "Nope", sorter.ByLikes(false)); err != nil {
		t.Fatalf("order: %v", err)
	}
	if err := triager.Order(ctx, "Inbox", sorter.ByLikes(false)); err != nil {
		t.Fatalf("order: %v", err)
	}
	if err := triager.Order(ctx, "Inbox", sorter.ByLikes(true)); err != nil {
		t.Fatalf("order: %v", err)
	}
	if len(triager.sorters) != 1 {
		t.Fatalf("registered %d sorters, want 1", len(triager.sorters))
	}
}

func TestSortAppliesPlannedMoves(t *testing.T) {
	tasks := []*asana.Task{
		{GID: "b", NumLikes: 1},
		{GID: "a", NumLikes: 5},
		{GID: "c", NumLikes: 0},
	}
	client := newFakeClient()
	client.sections = []*asana.Section{{GID: "10", Name: "Inbox"}}
	client.byGID = map[string][]*asana.Task{"10": tasks}
	triager := newTriager(t, client)

	if err := triager.Order(context.Background(), "Inbox", sorter.ByLikes(false)); err != nil {
		t.Fatalf("order: %v", err)
	}
	if err := triager.Sort(context.Background()); err != nil {
		t.Fatalf("sort: %v", err)
	}
	// Target order a, b, c needs a single relocation of a before b.
	if len(client.moves) != 1 || client.moves[0] != "a before b" {
		t.Fatalf("moves = %v", client.moves)
	}
}

type spyPredicate struct {
	result bool
	seen   *bool
}

func (p *spyPredicate) Matches(context.Context, *asana.Task, asana.Client) (bool, error) {
	*p.seen = true
	return p.result, nil
}

func (*spyPredicate) String() string { return "spy" }

type erroringPredicate struct {
	failGID string
}

func (p *erroringPredicate) Matches(_ context.Context, task *asana.Task, _ asana.Client) (bool, error) {
	if task.GID == p.failGID {
		return false, context.DeadlineExceeded
	}
	return true, nil
}

func (*erroringPredicate) String() string { return "erroring" }
