// Package memory implements the shared memory gateway: one read/write
// interface in front of two physically distinct stores, a categorized fact
// store and a vector similarity store. Agents and the orchestrator depend
// only on the Gateway interface and stay decoupled from storage technology.
package memory

import (
	"fmt"
	"time"
)

// Category tags a memory record with its domain. The set is closed; writes
// with any other value are rejected.
type Category string

const (
	CategoryProjects      Category = "projects"
	CategoryClients       Category = "clients"
	CategoryTasks         Category = "tasks"
	CategoryDocuments     Category = "documents"
	CategoryConversations Category = "conversations"
	CategoryCompliance    Category = "compliance"
	CategoryResources     Category = "resources"
	CategoryFinancial     Category = "financial"
)

var categories = map[Category]string{
	CategoryProjects:      "Construction projects: timelines, status, and general details.",
	CategoryClients:       "Client information: contacts, preferences, communication history.",
	CategoryTasks:         "Construction tasks, to-dos, and action items.",
	CategoryDocuments:     "Content and metadata from plans, permits, and contracts.",
	CategoryConversations: "History of conversations with clients and team members.",
	CategoryCompliance:    "Permits, codes, regulations, and compliance requirements.",
	CategoryResources:     "Materials, equipment, and labor resources.",
	CategoryFinancial:     "Budgets, expenses, invoices, and cost estimates.",
}

// Categories returns the fixed category set in stable order.
func Categories() []Category {
	return []Category{
		CategoryProjects,
		CategoryClients,
		CategoryTasks,
		CategoryDocuments,
		CategoryConversations,
		CategoryCompliance,
		CategoryResources,
		CategoryFinancial,
	}
}

// Describe returns the human-readable description for a category.
func Describe(c Category) string {
	return categories[c]
}

// ParseCategory validates a string against the fixed category set.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether the category belongs to the fixed set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Record is one stored memory item. Every record belongs to exactly one
// category. Score is populated only on similarity search results, where it
// holds the relevance used for ordering.
type Record struct {
	ID        string            `json:"id"`
	Category  Category          `json:"category"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Score     float64           `json:"score,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
