package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Resource tracks materials, equipment, and labor.
type Resource struct {
	*baseAgent
}

// NewResource creates the resource agent.
func NewResource(deps Deps) *Resource {
	a := &Resource{baseAgent: newBase(
		"resource",
		"Materials, equipment, and labor availability.",
		memory.CategoryResources,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "add_resource",
		Description: "Record a material, equipment, or labor resource.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"type":{"type":"string"},"quantity":{"type":"number"},"project":{"type":"string"}},"required":["name"]}`),
	}, a.addResource)

	a.registry.MustRegister(ops.Spec{
		Name:        "list_resources",
		Description: "List recorded resources, optionally for one project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"},"type":{"type":"string"}}}`),
	}, a.listResources)

	return a
}

func (a *Resource) addResource(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	name := stringArg(args, "name")
	if name == "" {
		return ops.Result{}, fmt.Errorf("add_resource requires name")
	}

	meta := map[string]string{"kind": "resource", "resource": name}
	content := fmt.Sprintf("Resource recorded: %s", name)
	if rtype := stringArg(args, "type"); rtype != "" {
		meta["type"] = rtype
		content = fmt.Sprintf("Resource recorded: %s (%s)", name, rtype)
	}
	if qty, ok := floatArg(args, "quantity"); ok {
		content += fmt.Sprintf(", quantity %g", qty)
	}
	if project := stringArg(args, "project"); project != "" {
		meta["project"] = project
		content += fmt.Sprintf(", for project %s", project)
	}

	r, err := a.deps.Gateway.Write(ctx, memory.CategoryResources, content, meta)
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Resource) listResources(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	filter := memory.Filter{Metadata: map[string]string{"kind": "resource"}, Limit: 20}
	if project := stringArg(args, "project"); project != "" {
		filter.Metadata["project"] = project
	}
	if rtype := stringArg(args, "type"); rtype != "" {
		filter.Metadata["type"] = rtype
	}

	records, err := a.deps.Gateway.Query(ctx, memory.CategoryResources, filter)
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: "No resources recorded."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d resources:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s\n", r.Content)
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"count": len(records)},
	}, nil
}
