package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Compliance tracks permits, codes, regulations, and inspections.
type Compliance struct {
	*baseAgent
}

// NewCompliance creates the compliance agent.
func NewCompliance(deps Deps) *Compliance {
	a := &Compliance{baseAgent: newBase(
		"compliance",
		"Permits, building codes, regulations, and inspections.",
		memory.CategoryCompliance,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "add_requirement",
		Description: "Record a permit, code, or regulatory requirement.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"requirement":{"type":"string"},"project":{"type":"string"},"status":{"type":"string"}},"required":["requirement"]}`),
	}, a.addRequirement)

	a.registry.MustRegister(ops.Spec{
		Name:        "check_compliance",
		Description: "Find compliance requirements relevant to a question.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`),
	}, a.checkCompliance)

	return a
}

func (a *Compliance) addRequirement(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	requirement := stringArg(args, "requirement")
	if requirement == "" {
		return ops.Result{}, fmt.Errorf("add_requirement requires requirement")
	}

	meta := map[string]string{"kind": "requirement"}
	status := stringArg(args, "status")
	if status == "" {
		status = "open"
	}
	meta["status"] = status
	if project := stringArg(args, "project"); project != "" {
		meta["project"] = project
	}

	content := fmt.Sprintf("Compliance requirement (%s): %s", status, requirement)
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryCompliance, content, meta)
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{Content: content, Data: map[string]any{"record_id": r.ID}}, nil
}

func (a *Compliance) checkCompliance(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	query := stringArg(args, "query")
	if query == "" {
		return ops.Result{}, fmt.Errorf("check_compliance requires query")
	}

	records, err := a.deps.Gateway.SimilaritySearch(ctx, query, 5, memory.Filter{
		Categories: []memory.Category{memory.CategoryCompliance},
	})
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: "No compliance requirements on record match that question."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d relevant compliance requirements:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s\n", r.Content)
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"count": len(records)},
	}, nil
}
