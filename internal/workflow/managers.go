package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"triage/internal/asana"
	"triage/internal/textutil"
)

// NewSectionWorkflow builds a workflow whose stage is the section the task
// sits in within the named project. Stage names must match section names;
// advancing moves the task to the matching section.
func NewSectionWorkflow(projectName string, stages []*Stage, logger *slog.Logger) *Workflow {
	manager := &sectionManager{projectName: projectName, stages: stages}
	return New(projectName, stages, manager, logger)
}

type sectionManager struct {
	projectName string
	stages      []*Stage
}

func (m *sectionManager) CurrentStage(task *asana.Task) (*Stage, any, error) {
	for _, membership := range task.Memberships {
		if !textutil.EqualNames(membership.Project.Name, m.projectName) {
			continue
		}
		var stage *Stage
		if membership.Section != nil {
			stage = findStage(m.stages, membership.Section.Name)
		}
		return stage, &membership.Project, nil
	}
	return nil, nil, fmt.Errorf("no membership in project %q", m.projectName)
}

func (m *sectionManager) CanSetStage(ctx context.Context, stage *Stage, client asana.Client, getContext any) (any, error) {
	project := getContext.(*asana.Project)
	sections, err := client.SectionsByProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	section := asana.FindSection(sections, stage.Name)
	if section == nil {
		return nil, fmt.Errorf("no section %q in project %q", stage.Name, m.projectName)
	}
	return section, nil
}

func (m *sectionManager) SetStage(ctx context.Context, task *asana.Task, client asana.Client, setContext any) error {
	return client.AddToSection(ctx, task, setContext.(*asana.Section))
}

// NewEnumFieldWorkflow builds a workflow whose stage lives in the named
// enum custom field. Stage names must match the field's option names.
func NewEnumFieldWorkflow(fieldName string, stages []*Stage, logger *slog.Logger) *Workflow {
	manager := &enumFieldManager{fieldName: fieldName, stages: stages}
	return New(fieldName, stages, manager, logger)
}

type enumFieldManager struct {
	fieldName string
	stages    []*Stage
}

func (m *enumFieldManager) CurrentStage(task *asana.Task) (*Stage, any, error) {
	field := asana.FindCustomField(task.CustomFields, m.fieldName)
	if field == nil || field.EnumOptions == nil {
		return nil, nil, fmt.Errorf("no enum custom field %q", m.fieldName)
	}
	if field.EnumValue == nil {
		return nil, field, nil
	}
	stage := findStage(m.stages, field.EnumValue.Name)
	if stage == nil {
		return nil, nil, fmt.Errorf("field %q holds %q, which is not a stage", m.fieldName, field.EnumValue.Name)
	}
	return stage, field, nil
}

func (m *enumFieldManager) CanSetStage(_ context.Context, stage *Stage, _ asana.Client, getContext any) (any, error) {
	field := getContext.(*asana.CustomField)
	option := asana.FindEnumOption(field.EnumOptions, stage.Name)
	if option == nil {
		return nil, fmt.Errorf("field %q has no option %q", m.fieldName, stage.Name)
	}
	return &enumFieldSet{field: field, option: option}, nil
}

func (m *enumFieldManager) SetStage(ctx context.Context, task *asana.Task, client asana.Client, setContext any) error {
	set := setContext.(*enumFieldSet)
	return client.SetEnumField(ctx, task, set.field, set.option)
}

type enumFieldSet struct {
	field  *asana.CustomField
	option *asana.EnumOption
}

// NewExternalWorkflow builds a workflow whose stage lives in the task's
// external data blob, under the reserved "workflows" key mapping workflow
// names to stage names. Sibling keys in the blob are preserved on write.
func NewExternalWorkflow(name string, stages []*Stage, logger *slog.Logger) *Workflow {
	manager := &externalManager{name: name, stages: stages}
	return New(name, stages, manager, logger)
}

type externalManager struct {
	name   string
	stages []*Stage
}

type externalState struct {
	external  *asana.External
	workflows map[string]any
	stageName string
}

func (m *externalManager) CurrentStage(task *asana.Task) (*Stage, any, error) {
	external := task.External
	if external == nil {
		external = &asana.External{Data: map[string]any{}}
	}
	workflows, _ := external.Data["workflows"].(map[string]any)
	state := &externalState{external: external, workflows: workflows}
	stageName, _ := workflows[m.name].(string)
	return findStage(m.stages, stageName), state, nil
}

func (m *externalManager) CanSetStage(_ context.Context, stage *Stage, _ asana.Client, getContext any) (any, error) {
	state := getContext.(*externalState)
	return &externalState{external: state.external, workflows: state.workflows, stageName: stage.Name}, nil
}

func (m *externalManager) SetStage(ctx context.Context, task *asana.Task, client asana.Client, setContext any) error {
	state := setContext.(*externalState)
	data := map[string]any{}
	for key, value := range state.external.Data {
		data[key] = value
	}
	workflows := map[string]any{}
	for key, value := range state.workflows {
		workflows[key] = value
	}
	workflows[m.name] = state.stageName
	data["workflows"] = workflows
	return client.SetExternal(ctx, task, &asana.External{GID: state.external.GID, Data: data})
}
