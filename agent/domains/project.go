package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/clickup"
	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Project handles construction projects, tasks, and schedules. Tasks are
// mirrored to ClickUp when a client is configured; memory stays the source
// of record either way.
type Project struct {
	*baseAgent
}

// NewProject creates the project agent.
func NewProject(deps Deps) *Project {
	a := &Project{baseAgent: newBase(
		"project",
		"Construction projects, tasks, schedules, and timelines.",
		memory.CategoryProjects,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "create_project",
		Description: "Register a new construction project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"}},"required":["name"]}`),
	}, a.createProject)

	a.registry.MustRegister(ops.Spec{
		Name:        "create_task",
		Description: "Create a task, optionally against a ClickUp list.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"project":{"type":"string"},"list_id":{"type":"string"},"priority":{"type":"integer"}},"required":["name"]}`),
	}, a.createTask)

	a.registry.MustRegister(ops.Spec{
		Name:        "list_tasks",
		Description: "List recorded tasks, optionally for one project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"}}}`),
	}, a.listTasks)

	a.registry.MustRegister(ops.Spec{
		Name:        "update_task_status",
		Description: "Update the status of a task.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"task":{"type":"string"},"status":{"type":"string"},"task_id":{"type":"string"}},"required":["task","status"]}`),
	}, a.updateTaskStatus)

	return a
}

func (a *Project) createProject(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	name := stringArg(args, "name")
	if name == "" {
		return ops.Result{}, fmt.Errorf("create_project requires name")
	}
	description := stringArg(args, "description")

	content := fmt.Sprintf("Project %s registered.", name)
	if description != "" {
		content = fmt.Sprintf("Project %s registered: %s", name, description)
	}
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryProjects, content, map[string]string{
		"kind":    "project",
		"project": name,
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Project) createTask(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	name := stringArg(args, "name")
	if name == "" {
		return ops.Result{}, fmt.Errorf("create_task requires name")
	}
	project := stringArg(args, "project")

	meta := map[string]string{
		"kind":   "task",
		"status": "open",
	}
	if project != "" {
		meta["project"] = project
	}

	var clickupNote string
	if a.deps.ClickUp != nil {
		listID := stringArg(args, "list_id")
		if listID != "" {
			priority, _ := intArg(args, "priority")
			task, err := a.deps.ClickUp.CreateTask(ctx, listID, clickup.TaskRequest{
				Name:     name,
				Priority: priority,
			})
			if err != nil {
				return ops.Result{}, fmt.Errorf("create clickup task: %w", err)
			}
			meta["clickup_task_id"] = task.ID
			clickupNote = fmt.Sprintf(" (ClickUp task %s)", task.ID)
		}
	}

	content := fmt.Sprintf("Task created: %s%s", name, clickupNote)
	if project != "" {
		content = fmt.Sprintf("Task created for project %s: %s%s", project, name, clickupNote)
	}
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryTasks, content, meta)
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Project) listTasks(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	filter := memory.Filter{Metadata: map[string]string{"kind": "task"}, Limit: 20}
	if project := stringArg(args, "project"); project != "" {
		filter.Metadata["project"] = project
	}

	records, err := a.deps.Gateway.Query(ctx, memory.CategoryTasks, filter)
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: "No tasks recorded."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d tasks:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s [%s]\n", r.Content, r.Metadata["status"])
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"count": len(records)},
	}, nil
}

func (a *Project) updateTaskStatus(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	task := stringArg(args, "task")
	status := stringArg(args, "status")
	if task == "" || status == "" {
		return ops.Result{}, fmt.Errorf("update_task_status requires task and status")
	}

	if a.deps.ClickUp != nil {
		if taskID := stringArg(args, "task_id"); taskID != "" {
			if _, err := a.deps.ClickUp.UpdateTask(ctx, taskID, clickup.TaskRequest{Status: status}); err != nil {
				return ops.Result{}, fmt.Errorf("update clickup task: %w", err)
			}
		}
	}

	content := fmt.Sprintf("Task %q marked %s.", task, status)
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryTasks, content, map[string]string{
		"kind":   "task_update",
		"status": status,
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}
