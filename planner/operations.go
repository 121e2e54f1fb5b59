package planner

import (
	"regexp"
	"strconv"
	"strings"
)

// operationRule maps trigger phrases to a registered operation name. Rules
// are checked in order within each agent, so more specific phrases must come
// before broader ones.
type operationRule struct {
	operation string
	phrases   []string
}

// operationRules resolves operations when the keyword classifier routes a
// command. It is intentionally best-effort: a command with no matching rule
// still reaches the agent, which answers from memory instead.
var operationRules = map[string][]operationRule{
	"financial": {
		{"create_budget", []string{"create a budget", "set a budget", "set the budget", "new budget", "budget of"}},
		{"record_transaction", []string{"record a transaction", "record an expense", "record a payment", "log an expense", "spent"}},
		{"financial_report", []string{"financial report", "financial summary", "spending report", "spending summary"}},
		{"get_budget", []string{"what is the budget", "show the budget", "current budget", "budget for"}},
	},
	"project": {
		{"create_project", []string{"create a project", "new project", "start a project"}},
		{"create_task", []string{"create a task", "add a task", "new task"}},
		{"update_task_status", []string{"mark task", "task status to", "complete the task", "finish the task"}},
		{"list_tasks", []string{"list tasks", "list the tasks", "open tasks", "show tasks", "what tasks"}},
	},
	"document": {
		{"store_document", []string{"store this document", "store document", "save this document", "upload"}},
		{"search_documents", []string{"search document", "find document", "look for document"}},
	},
	"client": {
		{"add_client", []string{"add a client", "add client", "new client", "new customer"}},
		{"log_interaction", []string{"log a call", "log a meeting", "log an interaction", "spoke with", "met with"}},
		{"client_history", []string{"client history", "history with", "past interactions"}},
	},
	"resource": {
		{"add_resource", []string{"add material", "add equipment", "add resource", "order lumber", "order concrete"}},
		{"list_resources", []string{"list materials", "list equipment", "list resources", "available materials", "what equipment"}},
	},
	"compliance": {
		{"add_requirement", []string{"add a requirement", "add requirement", "new permit requirement", "track the permit"}},
		{"check_compliance", []string{"check compliance", "compliance status", "are we compliant", "outstanding permits"}},
	},
	"analytics": {
		{"project_overview", []string{"project overview", "overview of project", "how is project"}},
		{"memory_overview", []string{"memory overview", "overall summary", "everything we know"}},
	},
}

// resolveOperation returns the first operation whose trigger phrase appears
// in the input, checking agents strongest-first.
func resolveOperation(agents []string, input string) string {
	lower := strings.ToLower(input)
	for _, agentName := range agents {
		for _, rule := range operationRules[agentName] {
			for _, phrase := range rule.phrases {
				if strings.Contains(lower, phrase) {
					return rule.operation
				}
			}
		}
	}
	return ""
}

var (
	amountPattern  = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	projectPattern = regexp.MustCompile(`(?i)(?:project|job)\s+"?([A-Za-z0-9][\w-]*)`)
)

// extractParams pulls the common operation arguments out of free text:
// a dollar amount and a project name. Anything richer needs the model
// classifier, which returns params directly.
func extractParams(input string) map[string]any {
	params := make(map[string]any)

	if m := amountPattern.FindStringSubmatch(input); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil {
			params["amount"] = amount
		}
	}
	if m := projectPattern.FindStringSubmatch(input); m != nil {
		params["project"] = strings.ToLower(m[1])
	}

	if len(params) == 0 {
		return nil
	}
	return params
}
