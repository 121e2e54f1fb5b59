package planner

import (
	"sort"
	"strings"
)

// domainKeywords is the single source of truth for keyword classification.
// Used when no model provider is configured or the model call fails, so
// routing never depends on external service availability.
var domainKeywords = map[string][]string{
	"financial": {
		"budget", "cost", "expense", "invoice", "payment", "estimate",
		"price", "quote", "transaction", "profit", "margin", "bill",
	},
	"project": {
		"project", "task", "schedule", "timeline", "deadline", "milestone",
		"progress", "status", "phase", "crew", "assign",
	},
	"document": {
		"document", "plan", "blueprint", "drawing", "contract", "specification",
		"file", "upload", "search document", "permit application",
	},
	"client": {
		"client", "customer", "homeowner", "contact", "meeting", "call",
		"follow up", "preference",
	},
	"resource": {
		"material", "equipment", "lumber", "concrete", "supply", "supplier",
		"inventory", "labor", "crew availability", "rental", "delivery",
	},
	"compliance": {
		"permit", "inspection", "code", "regulation", "compliance", "osha",
		"safety", "violation", "zoning", "license",
	},
	"analytics": {
		"report", "summary", "trend", "analytics", "compare", "forecast",
		"metric", "performance", "overview",
	},
}

// KeywordClassifier routes input to agents by keyword match. It is the
// deterministic fallback behind the model classifier.
type KeywordClassifier struct {
	keywords map[string][]string
}

// NewKeywordClassifier creates a classifier with the default keyword tables.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{keywords: domainKeywords}
}

// Classify scores each domain by matched keywords and returns every domain
// with at least one hit, strongest first. Returns ErrNoIntent when nothing
// matches.
func (c *KeywordClassifier) Classify(input string) (Classification, error) {
	lower := strings.ToLower(input)

	type hit struct {
		agent string
		count int
	}
	var hits []hit
	for agentName, words := range c.keywords {
		count := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{agent: agentName, count: count})
		}
	}
	if len(hits) == 0 {
		return Classification{}, ErrNoIntent
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].agent < hits[j].agent
	})

	agents := make([]string, len(hits))
	for i, h := range hits {
		agents[i] = h.agent
	}

	// Keyword matching is coarse; confidence stays moderate so callers can
	// tell these results from model classifications.
	return Classification{
		Agents:     agents,
		Operation:  resolveOperation(agents, input),
		Params:     extractParams(input),
		Confidence: 0.5,
		Origin:     OriginKeyword,
	}, nil
}
