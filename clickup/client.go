// Package clickup provides a narrow client for the ClickUp REST API v2,
// covering the spaces, folders, lists, and tasks the project agent needs.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.clickup.com/api/v2"

// Sentinel errors.
var (
	ErrMissingCredentials = errors.New("clickup API credentials not configured")
	ErrNoSpaces           = errors.New("no spaces found in the clickup workspace")
)

// Client calls the ClickUp API for one workspace.
type Client struct {
	apiToken    string
	workspaceID string
	baseURL     string
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a ClickUp client. Both the API token and workspace ID are
// required.
func New(apiToken, workspaceID string, opts ...Option) (*Client, error) {
	if apiToken == "" || workspaceID == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{
		apiToken:    apiToken,
		workspaceID: workspaceID,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Space is a ClickUp space.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Folder is a ClickUp folder; the original system maps one folder per
// construction project.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a ClickUp task list.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is a ClickUp task.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      struct {
		Status string `json:"status"`
	} `json:"status"`
	DueDate string `json:"due_date,omitempty"`
}

// TaskRequest carries the writable task fields. DueDate is a Unix timestamp
// in milliseconds; Priority ranges 1 (urgent) to 4 (low). Zero values are
// omitted.
type TaskRequest struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	DueDate     int64    `json:"due_date,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Assignees   []string `json:"assignees,omitempty"`
}

// Spaces returns all spaces in the workspace.
func (c *Client) Spaces(ctx context.Context) ([]Space, error) {
	var out struct {
		Spaces []Space `json:"spaces"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/team/%s/space", c.workspaceID), nil, &out)
	return out.Spaces, err
}

// ConstructionSpace returns the space whose name contains "construction",
// falling back to the first space when none matches.
func (c *Client) ConstructionSpace(ctx context.Context) (Space, error) {
	spaces, err := c.Spaces(ctx)
	if err != nil {
		return Space{}, err
	}
	for _, s := range spaces {
		if strings.Contains(strings.ToLower(s.Name), "construction") {
			return s, nil
		}
	}
	if len(spaces) == 0 {
		return Space{}, ErrNoSpaces
	}
	return spaces[0], nil
}

// Folders returns all folders in a space.
func (c *Client) Folders(ctx context.Context, spaceID string) ([]Folder, error) {
	var out struct {
		Folders []Folder `json:"folders"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/space/%s/folder", spaceID), nil, &out)
	return out.Folders, err
}

// CreateFolder creates a folder in a space.
func (c *Client) CreateFolder(ctx context.Context, spaceID, name string) (Folder, error) {
	var out Folder
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/space/%s/folder", spaceID),
		map[string]string{"name": name}, &out)
	return out, err
}

// Lists returns all lists in a folder.
func (c *Client) Lists(ctx context.Context, folderID string) ([]List, error) {
	var out struct {
		Lists []List `json:"lists"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/folder/%s/list", folderID), nil, &out)
	return out.Lists, err
}

// CreateList creates a list in a folder.
func (c *Client) CreateList(ctx context.Context, folderID, name string) (List, error) {
	var out List
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/folder/%s/list", folderID),
		map[string]string{"name": name}, &out)
	return out, err
}

// Tasks returns all tasks in a list.
func (c *Client) Tasks(ctx context.Context, listID string) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/list/%s/task", listID), nil, &out)
	return out.Tasks, err
}

// CreateTask creates a task in a list.
func (c *Client) CreateTask(ctx context.Context, listID string, req TaskRequest) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/list/%s/task", listID), req, &out)
	return out, err
}

// UpdateTask updates an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, req TaskRequest) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/task/%s", taskID), req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode clickup request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build clickup request: %w", err)
	}
	req.Header.Set("Authorization", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clickup request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("clickup %s %s failed with status %d: %s", method, path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode clickup response: %w", err)
	}
	return nil
}
