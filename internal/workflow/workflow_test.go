package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"triage/internal/action"
	"triage/internal/asana"
	"triage/internal/predicate"
)

type fakeClient struct {
	asana.Client

	sections []*asana.Section
	comments []string
	section  *asana.Section
	field    *asana.CustomField
	option   *asana.EnumOption
	external *asana.External
}

func (f *fakeClient) SectionsByProject(context.Context, *asana.Project) ([]*asana.Section, error) {
	return f.sections, nil
}

func (f *fakeClient) AddComment(_ context.Context, _ *asana.Task, text string) error {
	f.comments = append(f.comments, text)
	return nil
}

func (f *fakeClient) AddToSection(_ context.Context, _ *asana.Task, section *asana.Section) error {
	f.section = section
	return nil
}

func (f *fakeClient) SetEnumField(_ context.Context, _ *asana.Task, field *asana.CustomField, option *asana.EnumOption) error {
	f.field = field
	f.option = option
	return nil
}

func (f *fakeClient) SetExternal(_ context.Context, _ *asana.Task, external *asana.External) error {
	f.external = external
	return nil
}

func stagePair() []*Stage {
	return []*Stage{
		{Name: "Inbox", Enter: predicate.AlwaysTrue(), OnEnter: []action.Action{action.AddComment("welcome")}},
		{Name: "Accepted", Enter: predicate.AlwaysTrue(), OnEnter: []action.Action{action.AddComment("accepted")}},
	}
}

func taskInSection(project asana.Project, section string) *asana.Task {
	return &asana.Task{GID: "1", Memberships: []asana.Membership{
		{Project: project, Section: &asana.Section{Name: section}},
	}}
}

func TestSectionWorkflowAdvancesThroughMultipleStages(t *testing.T) {
	project := asana.Project{GID: "100", Name: "Bugs"}
	client := &fakeClient{sections: []*asana.Section{
		{GID: "10", Name: "Inbox"},
		{GID: "11", Name: "Accepted"},
	}}
	flow := NewSectionWorkflow("Bugs", stagePair(), nil)

	task := taskInSection(project, "Untracked")
	if err := flow.Apply(context.Background(), task, client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.section == nil || client.section.Name != "Accepted" {
		t.Fatalf("task ended in %+v, want Accepted", client.section)
	}
	if !reflect.DeepEqual(client.comments, []string{"welcome", "accepted"}) {
		t.Fatalf("comments = %v", client.comments)
	}
}

func TestSectionWorkflowStopsAtFailedPredicate(t *testing.T) {
	project := asana.Project{GID: "100", Name: "Bugs"}
	stages := stagePair()
	stages[1].Enter = predicate.Not(predicate.AlwaysTrue())
	client := &fakeClient{sections: []*asana.Section{{GID: "10", Name: "Inbox"}}}
	flow := NewSectionWorkflow("Bugs", stages, nil)

	if err := flow.Apply(context.Background(), taskInSection(project, "Untracked"), client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.section == nil || client.section.Name != "Inbox" {
		t.Fatalf("task ended in %+v, want Inbox", client.section)
	}
	if !reflect.DeepEqual(client.comments, []string{"welcome"}) {
		t.Fatalf("comments = %v", client.comments)
	}
}

func TestSectionWorkflowAlreadyInFinalStage(t *testing.T) {
	project := asana.Project{GID: "100", Name: "Bugs"}
	client := &fakeClient{sections: []*asana.Section{{GID: "11", Name: "Accepted"}}}
	flow := NewSectionWorkflow("Bugs", stagePair(), nil)

	if err := flow.Apply(context.Background(), taskInSection(project, "Accepted"), client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.section != nil {
		t.Fatal("task moved despite already being in the final stage")
	}
	if len(client.comments) != 0 {
		t.Fatalf("actions ran without advancement: %v", client.comments)
	}
}

func TestSectionWorkflowPersistenceFailureDiscardsActions(t *testing.T) {
	project := asana.Project{GID: "100", Name: "Bugs"}
	// The target section does not exist remotely, so the stage cannot be
	// persisted and no action may run.
	client := &fakeClient{sections: []*asana.Section{{GID: "10", Name: "Inbox"}}}
	flow := NewSectionWorkflow("Bugs", stagePair(), nil)

	if err := flow.Apply(context.Background(), taskInSection(project, "Untracked"), client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.section != nil {
		t.Fatalf("stage persisted to %+v", client.section)
	}
	if len(client.comments) != 0 {
		t.Fatalf("actions leaked: %v", client.comments)
	}
}

func TestSectionWorkflowSkipsUnresolvableTask(t *testing.T) {
	client := &fakeClient{}
	flow := NewSectionWorkflow("Bugs", stagePair(), nil)

	err := flow.Apply(context.Background(), &asana.Task{GID: "1"}, client)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(client.comments) != 0 || client.section != nil {
		t.Fatal("unresolvable task was acted on")
	}
}

func TestEnumFieldWorkflow(t *testing.T) {
	options := []asana.EnumOption{
		{GID: "20", Name: "Inbox"},
		{GID: "21", Name: "Accepted"},
	}
	task := &asana.Task{GID: "1", CustomFields: []asana.CustomField{{
		Name:        "Stage",
		EnumValue:   &options[0],
		EnumOptions: options,
	}}}
	stages := stagePair()
	client := &fakeClient{}
	flow := NewEnumFieldWorkflow("Stage", stages, nil)

	if err := flow.Apply(context.Background(), task, client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.option == nil || client.option.Name != "Accepted" {
		t.Fatalf("field set to %+v, want Accepted", client.option)
	}
	if !reflect.DeepEqual(client.comments, []string{"accepted"}) {
		t.Fatalf("comments = %v", client.comments)
	}
}

func TestEnumFieldWorkflowMissingField(t *testing.T) {
	client := &fakeClient{}
	flow := NewEnumFieldWorkflow("Stage", stagePair(), nil)

	if err := flow.Apply(context.Background(), &asana.Task{GID: "1"}, client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.option != nil || len(client.comments) != 0 {
		t.Fatal("task without the field was acted on")
	}
}

func TestExternalWorkflowPreservesSiblingData(t *testing.T) {
	task := &asana.Task{GID: "1", External: &asana.External{
		GID: "ext",
		Data: map[string]any{
			"owner":     "infra",
			"workflows": map[string]any{"other": "Done", "review": "Inbox"},
		},
	}}
	client := &fakeClient{}
	flow := NewExternalWorkflow("review", stagePair(), nil)

	if err := flow.Apply(context.Background(), task, client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if client.external == nil {
		t.Fatal("external never written")
	}
	want := map[string]any{
		"owner":     "infra",
		"workflows": map[string]any{"other": "Done", "review": "Accepted"},
	}
	if !reflect.DeepEqual(client.external.Data, want) {
		t.Fatalf("external data = %v, want %v", client.external.Data, want)
	}
	if !reflect.DeepEqual(client.comments, []string{"accepted"}) {
		t.Fatalf("comments = %v", client.comments)
	}
}

func TestExternalWorkflowStartsFresh(t *testing.T) {
	client := &fakeClient{}
	flow := NewExternalWorkflow("review", stagePair(), nil)

	if err := flow.Apply(context.Background(), &asana.Task{GID: "1"}, client); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]any{"workflows": map[string]any{"review": "Accepted"}}
	if !reflect.DeepEqual(client.external.Data, want) {
		t.Fatalf("external data = %v, want %v", client.external.Data, want)
	}
}

func TestApplyPropagatesPredicateError(t *testing.T) {
	boom := errors.New("boom")
	stages := []*Stage{{Name: "Inbox", Enter: failingPredicate{err: boom}}}
	flow := NewExternalWorkflow("review", stages, nil)

	err := flow.Apply(context.Background(), &asana.Task{GID: "1"}, &fakeClient{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

type failingPredicate struct {
	err error
}

func (p failingPredicate) Matches(context.Context, *asana.Task, asana.Client) (bool, error) {
	return false, p.err
}

func (failingPredicate) String() string { return "failing" }
