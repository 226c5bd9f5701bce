package asana

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date without a time component, serialized as
// "2006-01-02" on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from a year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Days returns the date as a day ordinal, suitable for use in sort keys.
func (d Date) Days() int64 {
	return d.Unix() / 86400
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// Workspace is the largest scope of data in Asana.
type Workspace struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// User is an Asana user account.
type User struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Project is a collection of tasks organized into sections.
type Project struct {
	GID       string     `json:"gid"`
	Name      string     `json:"name"`
	Workspace *Workspace `json:"workspace,omitempty"`
}

// Section is a named partition of a project.
type Section struct {
	GID     string   `json:"gid"`
	Name    string   `json:"name"`
	Project *Project `json:"project,omitempty"`
}

// EnumOption is one choice in an enumerated custom field.
type EnumOption struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CustomField is a named attribute on a task beyond its built-in properties.
// Fields are matched by name, not GID, throughout the engine.
type CustomField struct {
	GID             string       `json:"gid"`
	ResourceSubtype string       `json:"resource_subtype"`
	Name            string       `json:"name"`
	EnumValue       *EnumOption  `json:"enum_value,omitempty"`
	EnumOptions     []EnumOption `json:"enum_options,omitempty"`
	TextValue       *string      `json:"text_value,omitempty"`
	NumberValue     *float64     `json:"number_value,omitempty"`
}

// Membership records a task's placement in one project-section pair.
type Membership struct {
	Project Project  `json:"project"`
	Section *Section `json:"section,omitempty"`
}

// External is the opaque key/value blob the API lets an app store on a task
// for its own bookkeeping. On the wire the data travels as a JSON-encoded
// string nested in the external object.
type External struct {
	GID  string
	Data map[string]any
}

type externalWire struct {
	GID  string  `json:"gid,omitempty"`
	Data *string `json:"data"`
}

func (e External) MarshalJSON() ([]byte, error) {
	wire := externalWire{GID: e.GID}
	if e.Data != nil {
		encoded, err := json.Marshal(e.Data)
		if err != nil {
			return nil, fmt.Errorf("encode external data: %w", err)
		}
		s := string(encoded)
		wire.Data = &s
	}
	return json.Marshal(wire)
}

func (e *External) UnmarshalJSON(data []byte) error {
	var wire externalWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	e.GID = wire.GID
	e.Data = map[string]any{}
	if wire.Data != nil && *wire.Data != "" {
		if err := json.Unmarshal([]byte(*wire.Data), &e.Data); err != nil {
			return fmt.Errorf("decode external data: %w", err)
		}
	}
	return nil
}

// Task is an immutable snapshot of a remote task.
type Task struct {
	GID          string        `json:"gid"`
	Name         string        `json:"name"`
	Notes        string        `json:"notes"`
	Completed    bool          `json:"completed"`
	CustomFields []CustomField `json:"custom_fields"`
	Memberships  []Membership  `json:"memberships"`
	NumLikes     int           `json:"num_likes"`
	CreatedAt    time.Time     `json:"created_at"`
	CreatedBy    *User         `json:"created_by,omitempty"`
	Assignee     *User         `json:"assignee,omitempty"`
	DueOn        *Date         `json:"due_on,omitempty"`
	DueAt        *time.Time    `json:"due_at,omitempty"`
	StartOn      *Date         `json:"start_on,omitempty"`
	External     *External     `json:"external,omitempty"`
}

func (t *Task) String() string {
	return fmt.Sprintf("Task(%s)", t.GID)
}

// Story resource subtypes the engine inspects.
const (
	StoryCommentAdded     = "comment_added"
	StoryAddedToProject   = "added_to_project"
	StorySectionChanged   = "section_changed"
	StoryEnumFieldChanged = "enum_custom_field_changed"
	StoryAssigneeChanged  = "assignee_changed"
)

// Story is an immutable timestamped record of something that happened to a
// task. Subtype-specific fields are nil when they do not apply.
type Story struct {
	GID             string       `json:"gid"`
	ResourceSubtype string       `json:"resource_subtype"`
	Text            string       `json:"text"`
	CreatedAt       time.Time    `json:"created_at"`
	CreatedBy       *User        `json:"created_by,omitempty"`
	Project         *Project     `json:"project,omitempty"`
	NewSection      *Section     `json:"new_section,omitempty"`
	CustomField     *CustomField `json:"custom_field,omitempty"`
	NewEnumValue    *EnumOption  `json:"new_enum_value,omitempty"`
	Assignee        *User        `json:"assignee,omitempty"`
}
