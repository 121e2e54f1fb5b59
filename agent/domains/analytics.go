package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Analytics produces cross-domain summaries from the memory gateway.
type Analytics struct {
	*baseAgent
}

// NewAnalytics creates the analytics agent.
func NewAnalytics(deps Deps) *Analytics {
	a := &Analytics{baseAgent: newBase(
		"analytics",
		"Cross-domain reports, trends, and summaries.",
		memory.CategoryProjects,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "memory_overview",
		Description: "Summarize record counts across every memory category.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{}}`),
	}, a.memoryOverview)

	a.registry.MustRegister(ops.Spec{
		Name:        "project_overview",
		Description: "Summarize everything on record for one project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"}},"required":["project"]}`),
	}, a.projectOverview)

	return a
}

func (a *Analytics) memoryOverview(ctx context.Context, _ json.RawMessage) (ops.Result, error) {
	counts := make(map[string]any, len(memory.Categories()))
	var b strings.Builder
	b.WriteString("Memory overview:\n")
	for _, c := range memory.Categories() {
		records, err := a.deps.Gateway.Query(ctx, c, memory.Filter{})
		if err != nil {
			return ops.Result{}, err
		}
		counts[string(c)] = len(records)
		fmt.Fprintf(&b, "- %s: %d records\n", c, len(records))
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    counts,
	}, nil
}

func (a *Analytics) projectOverview(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	project := stringArg(args, "project")
	if project == "" {
		return ops.Result{}, fmt.Errorf("project_overview requires project")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overview for project %s:\n", project)
	total := 0
	for _, c := range memory.Categories() {
		records, err := a.deps.Gateway.Query(ctx, c, memory.Filter{
			Metadata: map[string]string{"project": project},
		})
		if err != nil {
			return ops.Result{}, err
		}
		if len(records) == 0 {
			continue
		}
		total += len(records)
		fmt.Fprintf(&b, "%s (%d):\n", c, len(records))
		for _, r := range records {
			fmt.Fprintf(&b, "- %s\n", r.Content)
		}
	}
	if total == 0 {
		return ops.Result{Content: fmt.Sprintf("Nothing on record for project %s.", project)}, nil
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"project": project, "records": total},
	}, nil
}
