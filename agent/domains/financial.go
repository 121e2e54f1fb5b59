package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Financial handles budgets, transactions, and financial reporting. Records
// live in the financial category with a kind marker distinguishing budgets
// from transactions.
type Financial struct {
	*baseAgent
}

// NewFinancial creates the financial agent.
func NewFinancial(deps Deps) *Financial {
	a := &Financial{baseAgent: newBase(
		"financial",
		"Budgets, expenses, invoices, transactions, and financial reports.",
		memory.CategoryFinancial,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "create_budget",
		Description: "Create a budget for a project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"},"amount":{"type":"number"}},"required":["project","amount"]}`),
	}, a.createBudget)

	a.registry.MustRegister(ops.Spec{
		Name:        "get_budget",
		Description: "Look up the current budget for a project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"}},"required":["project"]}`),
	}, a.getBudget)

	a.registry.MustRegister(ops.Spec{
		Name:        "record_transaction",
		Description: "Record an expense or payment against a project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"},"amount":{"type":"number"},"description":{"type":"string"}},"required":["project","amount"]}`),
	}, a.recordTransaction)

	a.registry.MustRegister(ops.Spec{
		Name:        "financial_report",
		Description: "Summarize budget and spending for a project.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"project":{"type":"string"}},"required":["project"]}`),
	}, a.financialReport)

	return a
}

func (a *Financial) createBudget(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	project := stringArg(args, "project")
	amount, ok := floatArg(args, "amount")
	if project == "" || !ok {
		return ops.Result{}, fmt.Errorf("create_budget requires project and amount")
	}

	content := fmt.Sprintf("Budget for project %s: $%.2f", project, amount)
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryFinancial, content, map[string]string{
		"kind":    "budget",
		"project": project,
		"amount":  strconv.FormatFloat(amount, 'f', 2, 64),
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{
		Content: content,
		Data:    map[string]any{"record_id": r.ID, "project": project, "amount": amount},
	}, nil
}

func (a *Financial) getBudget(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	project := stringArg(args, "project")
	if project == "" {
		return ops.Result{}, fmt.Errorf("get_budget requires project")
	}

	records, err := a.deps.Gateway.Query(ctx, memory.CategoryFinancial, memory.Filter{
		Metadata: map[string]string{"kind": "budget", "project": project},
		Limit:    1,
	})
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: fmt.Sprintf("No budget recorded for project %s.", project)}, nil
	}
	return ops.Result{
		Content: records[0].Content,
		Data:    map[string]any{"record_id": records[0].ID, "amount": records[0].Metadata["amount"]},
	}, nil
}

func (a *Financial) recordTransaction(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	project := stringArg(args, "project")
	amount, ok := floatArg(args, "amount")
	if project == "" || !ok {
		return ops.Result{}, fmt.Errorf("record_transaction requires project and amount")
	}
	description := stringArg(args, "description")
	if description == "" {
		description = "expense"
	}

	content := fmt.Sprintf("Transaction on project %s: $%.2f (%s)", project, amount, description)
	r, err := a.deps.Gateway.Write(ctx, memory.CategoryFinancial, content, map[string]string{
		"kind":    "transaction",
		"project": project,
		"amount":  strconv.FormatFloat(amount, 'f', 2, 64),
	})
	if err != nil {
		return ops.Result{}, err
	}
	return ops.Result{
		Content: content,
		Data:    map[string]any{"record_id": r.ID},
	}, nil
}

func (a *Financial) financialReport(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	project := stringArg(args, "project")
	if project == "" {
		return ops.Result{}, fmt.Errorf("financial_report requires project")
	}

	records, err := a.deps.Gateway.Query(ctx, memory.CategoryFinancial, memory.Filter{
		Metadata: map[string]string{"project": project},
	})
	if err != nil {
		return ops.Result{}, err
	}

	var budget, spent float64
	var transactions int
	for _, r := range records {
		amount, err := strconv.ParseFloat(r.Metadata["amount"], 64)
		if err != nil {
			continue
		}
		switch r.Metadata["kind"] {
		case "budget":
			// Budgets are newest-first; keep the most recent one.
			if budget == 0 {
				budget = amount
			}
		case "transaction":
			spent += amount
			transactions++
		}
	}

	content := fmt.Sprintf("Financial report for project %s: budget $%.2f, spent $%.2f across %d transactions, remaining $%.2f.",
		project, budget, spent, transactions, budget-spent)
	return ops.Result{
		Content: content,
		Data: map[string]any{
			"project":      project,
			"budget":       budget,
			"spent":        spent,
			"transactions": transactions,
			"remaining":    budget - spent,
		},
	}, nil
}
