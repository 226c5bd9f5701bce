package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MoveDirection says where a task lands relative to a reference task.
type MoveDirection string

const (
	MoveBefore MoveDirection = "before"
	MoveAfter  MoveDirection = "after"
)

// TaskFilter narrows a project task fetch.
type TaskFilter struct {
	OnlyIncomplete bool
	ModifiedSince  *time.Time
}

// Client is the collaborator handle the engine uses for all remote reads
// and writes. Every call is synchronous and treated as atomic; failures are
// returned, never retried here.
type Client interface {
	Me(ctx context.Context) (*User, error)
	ProjectByGID(ctx context.Context, gid string) (*Project, error)
	TaskByGID(ctx context.Context, gid string) (*Task, error)
	TasksByProject(ctx context.Context, project *Project, filter TaskFilter) ([]*Task, error)
	SectionsByProject(ctx context.Context, project *Project) ([]*Section, error)
	TasksBySection(ctx context.Context, section *Section, onlyIncomplete bool) ([]*Task, error)
	StoriesByTask(ctx context.Context, task *Task) ([]*Story, error)

	AddComment(ctx context.Context, task *Task, text string) error
	AddFollower(ctx context.Context, task *Task, follower string) error
	SetAssignee(ctx context.Context, task *Task, assignee *string) error
	SetEnumField(ctx context.Context, task *Task, field *CustomField, option *EnumOption) error
	SetExternal(ctx context.Context, task *Task, external *External) error
	AddToProject(ctx context.Context, task *Task, project *Project) error
	AddToSection(ctx context.Context, task *Task, section *Section) error
	ReorderInProject(ctx context.Context, task *Task, project *Project, reference *Task, direction MoveDirection) error
}

// HTTPDoer describes the HTTP client used by the Asana client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fields requested for each model so fetched snapshots carry everything the
// engine inspects.
const (
	userOptFields    = "name,email"
	projectOptFields = "name,workspace.name"
	sectionOptFields = "name,project.name,project.workspace.name"
	taskOptFields    = "name,notes,completed,num_likes,created_at,due_on,due_at,start_on,external," +
		"created_by.name,created_by.email,assignee.name,assignee.email," +
		"custom_fields.name,custom_fields.resource_subtype,custom_fields.enum_value.name," +
		"custom_fields.enum_options.name,custom_fields.text_value,custom_fields.number_value," +
		"memberships.project.name,memberships.section.name,memberships.section.project.name"
	storyOptFields = "resource_subtype,text,created_at,created_by.name,created_by.email," +
		"project.name,new_section.name,new_section.project.name," +
		"custom_field.name,new_enum_value.name,assignee.name,assignee.email"
)

const defaultPageSize = 100

type httpClient struct {
	baseURL string
	token   string
	doer    HTTPDoer
}

// NewClient constructs an HTTP-backed Client. A nil doer falls back to
// http.DefaultClient.
func NewClient(baseURL, accessToken string, doer HTTPDoer) Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &httpClient{
		baseURL: baseURL,
		token:   accessToken,
		doer:    doer,
	}
}

type envelope struct {
	Data     json.RawMessage `json:"data"`
	NextPage *struct {
		Offset string `json:"offset"`
	} `json:"next_page"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(map[string]any{"data": body})
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s %s: %w", method, path, err)
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode response for %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		if len(env.Errors) > 0 {
			return nil, fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, env.Errors[0].Message)
		}
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	return &env, nil
}

func (c *httpClient) getOne(ctx context.Context, path string, optFields string, out any) error {
	query := url.Values{}
	query.Set("opt_fields", optFields)
	env, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// getMany follows next_page offsets until the collection is exhausted.
func (c *httpClient) getMany(ctx context.Context, path string, query url.Values, collect func(json.RawMessage) error) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(defaultPageSize))
	for {
		env, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return err
		}
		if err := collect(env.Data); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		if env.NextPage == nil || env.NextPage.Offset == "" {
			return nil
		}
		query.Set("offset", env.NextPage.Offset)
	}
}

func (c *httpClient) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getOne(ctx, "/users/me", userOptFields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *httpClient) ProjectByGID(ctx context.Context, gid string) (*Project, error) {
	var project Project
	if err := c.getOne(ctx, "/projects/"+gid, projectOptFields, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *httpClient) TaskByGID(ctx context.Context, gid string) (*Task, error) {
	var task Task
	if err := c.getOne(ctx, "/tasks/"+gid, taskOptFields, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *httpClient) TasksByProject(ctx context.Context, project *Project, filter TaskFilter) ([]*Task, error) {
	query := url.Values{}
	query.Set("opt_fields", taskOptFields)
	if filter.OnlyIncomplete {
		query.Set("completed_since", "now")
	}
	if filter.ModifiedSince != nil {
		query.Set("modified_since", filter.ModifiedSince.UTC().Format(time.RFC3339))
	}
	var tasks []*Task
	err := c.getMany(ctx, "/projects/"+project.GID+"/tasks", query, func(data json.RawMessage) error {
		var page []*Task
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		tasks = append(tasks, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *httpClient) SectionsByProject(ctx context.Context, project *Project) ([]*Section, error) {
	query := url.Values{}
	query.Set("opt_fields", sectionOptFields)
	var sections []*Section
	err := c.getMany(ctx, "/projects/"+project.GID+"/sections", query, func(data json.RawMessage) error {
		var page []*Section
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		sections = append(sections, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

func (c *httpClient) TasksBySection(ctx context.Context, section *Section, onlyIncomplete bool) ([]*Task, error) {
	// The API cannot filter section task lists, so the incomplete-only case
	// fetches incomplete project tasks and keeps those whose membership
	// places them in this section.
	if onlyIncomplete && section.Project != nil {
		tasks, err := c.TasksByProject(ctx, section.Project, TaskFilter{OnlyIncomplete: true})
		if err != nil {
			return nil, err
		}
		var matched []*Task
		for _, task := range tasks {
			for _, m := range task.Memberships {
				if m.Section != nil && m.Section.GID == section.GID {
					matched = append(matched, task)
					break
				}
			}
		}
		return matched, nil
	}

	query := url.Values{}
	query.Set("opt_fields", taskOptFields)
	var tasks []*Task
	err := c.getMany(ctx, "/sections/"+section.GID+"/tasks", query, func(data json.RawMessage) error {
		var page []*Task
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		tasks = append(tasks, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *httpClient) StoriesByTask(ctx context.Context, task *Task) ([]*Story, error) {
	query := url.Values{}
	query.Set("opt_fields", storyOptFields)
	var stories []*Story
	err := c.getMany(ctx, "/tasks/"+task.GID+"/stories", query, func(data json.RawMessage) error {
		var page []*Story
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		stories = append(stories, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (c *httpClient) AddComment(ctx context.Context, task *Task, text string) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+task.GID+"/stories", nil, map[string]any{"text": text})
	return err
}

func (c *httpClient) AddFollower(ctx context.Context, task *Task, follower string) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+task.GID+"/addFollowers", nil, map[string]any{
		"followers": []string{follower},
	})
	return err
}

func (c *httpClient) SetAssignee(ctx context.Context, task *Task, assignee *string) error {
	_, err := c.do(ctx, http.MethodPut, "/tasks/"+task.GID, nil, map[string]any{"assignee": assignee})
	return err
}

func (c *httpClient) SetEnumField(ctx context.Context, task *Task, field *CustomField, option *EnumOption) error {
	var optionGID *string
	if option != nil {
		optionGID = &option.GID
	}
	_, err := c.do(ctx, http.MethodPut, "/tasks/"+task.GID, nil, map[string]any{
		"custom_fields": map[string]*string{field.GID: optionGID},
	})
	return err
}

func (c *httpClient) SetExternal(ctx context.Context, task *Task, external *External) error {
	_, err := c.do(ctx, http.MethodPut, "/tasks/"+task.GID, nil, map[string]any{"external": external})
	return err
}

func (c *httpClient) AddToProject(ctx context.Context, task *Task, project *Project) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+task.GID+"/addProject", nil, map[string]any{
		"project": project.GID,
	})
	return err
}

func (c *httpClient) AddToSection(ctx context.Context, task *Task, section *Section) error {
	body := map[string]any{"section": section.GID}
	if section.Project != nil {
		body["project"] = section.Project.GID
	}
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+task.GID+"/addProject", nil, body)
	return err
}

func (c *httpClient) ReorderInProject(ctx context.Context, task *Task, project *Project, reference *Task, direction MoveDirection) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks/"+task.GID+"/addProject", nil, map[string]any{
		"project":                     project.GID,
		"insert_" + string(direction): reference.GID,
	})
	return err
}
