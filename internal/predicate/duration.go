package predicate

import (
	"context"
	"fmt"
	"time"

	"triage/internal/asana"
	"triage/internal/textutil"
)

// heldForAtLeast reports whether a condition has held strictly longer than
// the given duration. The most recent story accepted by the matcher marks
// when the condition became true; with no such story the task is assumed to
// have been created in that state.
func heldForAtLeast(task *asana.Task, stories []*asana.Story, matcher func(*asana.Story) bool, duration time.Duration) bool {
	for i := len(stories) - 1; i >= 0; i-- {
		if matcher(stories[i]) {
			return now().Sub(stories[i].CreatedAt) > duration
		}
	}
	return now().Sub(task.CreatedAt) > duration
}

// HasFieldValue matches tasks whose named enum custom field has a value.
//
// A non-empty option narrows the match to that option. With an empty
// option and a non-zero duration, the elapsed time measures how long since
// the field last changed at all, since no single option pins down which
// change made the condition true.
func HasFieldValue(fieldName, optionName string, forAtLeast time.Duration) Predicate {
	return hasFieldValue{fieldName: fieldName, optionName: optionName, duration: forAtLeast}
}

type hasFieldValue struct {
	fieldName  string
	optionName string
	duration   time.Duration
}

func (p hasFieldValue) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	field := asana.FindCustomField(task.CustomFields, p.fieldName)
	if field == nil || field.EnumValue == nil {
		return false, nil
	}
	if p.optionName != "" && !textutil.EqualNames(field.EnumValue.Name, p.optionName) {
		return false, nil
	}
	if p.duration == 0 {
		return true, nil
	}
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return false, err
	}
	return heldForAtLeast(task, stories, p.storyMatcher, p.duration), nil
}

func (p hasFieldValue) storyMatcher(story *asana.Story) bool {
	return story.ResourceSubtype == asana.StoryEnumFieldChanged &&
		story.CustomField != nil &&
		textutil.EqualNames(story.CustomField.Name, p.fieldName)
}

func (p hasFieldValue) String() string {
	return fmt.Sprintf("Has '%s' set to '%s'%s", p.fieldName, p.optionName, durationSuffix(p.duration))
}

// HasUnsetField matches tasks whose named enum custom field is present but
// has no value.
func HasUnsetField(fieldName string, forAtLeast time.Duration) Predicate {
	return hasUnsetField{fieldName: fieldName, duration: forAtLeast}
}

type hasUnsetField struct {
	fieldName string
	duration  time.Duration
}

func (p hasUnsetField) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	field := asana.FindCustomField(task.CustomFields, p.fieldName)
	if field == nil || field.EnumValue != nil {
		return false, nil
	}
	if p.duration == 0 {
		return true, nil
	}
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return false, err
	}
	matcher := func(story *asana.Story) bool {
		return story.ResourceSubtype == asana.StoryEnumFieldChanged &&
			story.CustomField != nil &&
			textutil.EqualNames(story.CustomField.Name, p.fieldName)
	}
	return heldForAtLeast(task, stories, matcher, p.duration), nil
}

func (p hasUnsetField) String() string {
	return fmt.Sprintf("Has '%s' unset%s", p.fieldName, durationSuffix(p.duration))
}

// IsInProject matches tasks that belong to the named project, optionally
// for at least the given duration.
func IsInProject(projectName string, forAtLeast time.Duration) Predicate {
	return isInProject{projectName: projectName, duration: forAtLeast}
}

type isInProject struct {
	projectName string
	duration    time.Duration
}

func (p isInProject) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	inProject := false
	for _, m := range task.Memberships {
		if textutil.EqualNames(m.Project.Name, p.projectName) {
			inProject = true
			break
		}
	}
	if !inProject {
		return false, nil
	}
	if p.duration == 0 {
		return true, nil
	}
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return false, err
	}
	matcher := func(story *asana.Story) bool {
		return story.ResourceSubtype == asana.StoryAddedToProject &&
			story.Project != nil &&
			textutil.EqualNames(story.Project.Name, p.projectName)
	}
	return heldForAtLeast(task, stories, matcher, p.duration), nil
}

func (p isInProject) String() string {
	return fmt.Sprintf("In '%s' project%s", p.projectName, durationSuffix(p.duration))
}

// IsInProjectSection matches tasks sitting in the named section of the
// named project, optionally for at least the given duration.
func IsInProjectSection(projectName, sectionName string, forAtLeast time.Duration) Predicate {
	return isInProjectSection{projectName: projectName, sectionName: sectionName, duration: forAtLeast}
}

type isInProjectSection struct {
	projectName string
	sectionName string
	duration    time.Duration
}

func (p isInProjectSection) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	inSection := false
	for _, m := range task.Memberships {
		if textutil.EqualNames(m.Project.Name, p.projectName) &&
			m.Section != nil &&
			textutil.EqualNames(m.Section.Name, p.sectionName) {
			inSection = true
			break
		}
	}
	if !inSection {
		return false, nil
	}
	if p.duration == 0 {
		return true, nil
	}
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return false, err
	}
	return heldForAtLeast(task, stories, p.storyMatcher, p.duration), nil
}

func (p isInProjectSection) storyMatcher(story *asana.Story) bool {
	if story.ResourceSubtype == asana.StorySectionChanged && story.NewSection != nil {
		return textutil.EqualNames(story.NewSection.Name, p.sectionName) &&
			story.NewSection.Project != nil &&
			textutil.EqualNames(story.NewSection.Project.Name, p.projectName)
	}
	// With no section-changed story the task was added directly into the
	// section it currently occupies, which the membership check already
	// proved is the right one.
	if story.ResourceSubtype == asana.StoryAddedToProject && story.Project != nil {
		return textutil.EqualNames(story.Project.Name, p.projectName)
	}
	return false
}

func (p isInProjectSection) String() string {
	return fmt.Sprintf("In '%s' project and '%s' section%s", p.projectName, p.sectionName, durationSuffix(p.duration))
}

// Untriaged matches tasks the engine itself has not acted on within the
// given window, judged by stories created by the API credential's own user.
// Pass timespan.Forever to require that the engine has never acted on the
// task at all.
func Untriaged(forAtLeast time.Duration) Predicate {
	return untriaged{duration: forAtLeast}
}

type untriaged struct {
	duration time.Duration
}

func (p untriaged) Matches(ctx context.Context, task *asana.Task, client asana.Client) (bool, error) {
	me, err := client.Me(ctx)
	if err != nil {
		return false, err
	}
	stories, err := client.StoriesByTask(ctx, task)
	if err != nil {
		return false, err
	}
	for i := len(stories) - 1; i >= 0; i-- {
		story := stories[i]
		if story.CreatedBy != nil && story.CreatedBy.GID == me.GID {
			return now().Sub(story.CreatedAt) > p.duration, nil
		}
	}
	return true, nil
}

func (p untriaged) String() string {
	return "Untriaged" + durationSuffix(p.duration)
}
