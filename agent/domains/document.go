package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/foreman/memory"
	"github.com/tailored-agentic-units/foreman/ops"
)

// Chunking geometry for stored documents.
const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Document stores and retrieves plans, permits, and contracts. Documents
// are split into overlapping chunks so similarity search can hit the
// relevant section of a long file.
type Document struct {
	*baseAgent
}

// NewDocument creates the document agent.
func NewDocument(deps Deps) *Document {
	a := &Document{baseAgent: newBase(
		"document",
		"Plans, permits, contracts: storage and retrieval.",
		memory.CategoryDocuments,
		deps,
	)}

	a.registry.MustRegister(ops.Spec{
		Name:        "store_document",
		Description: "Store a document's text for later search.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"content":{"type":"string"},"project":{"type":"string"}},"required":["name","content"]}`),
	}, a.storeDocument)

	a.registry.MustRegister(ops.Spec{
		Name:        "search_documents",
		Description: "Find document sections relevant to a query.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"},"k":{"type":"integer"}},"required":["query"]}`),
	}, a.searchDocuments)

	return a
}

func (a *Document) storeDocument(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	name := stringArg(args, "name")
	content := stringArg(args, "content")
	if name == "" || content == "" {
		return ops.Result{}, fmt.Errorf("store_document requires name and content")
	}

	chunks := splitChunks(content, chunkSize, chunkOverlap)
	for i, chunk := range chunks {
		meta := map[string]string{
			"kind":     "document_chunk",
			"document": name,
			"chunk":    strconv.Itoa(i),
		}
		if project := stringArg(args, "project"); project != "" {
			meta["project"] = project
		}
		if _, err := a.deps.Gateway.Write(ctx, memory.CategoryDocuments, chunk, meta); err != nil {
			return ops.Result{}, fmt.Errorf("store chunk %d of %s: %w", i, name, err)
		}
	}

	content = fmt.Sprintf("Stored document %q in %d sections.", name, len(chunks))
	return ops.Result{
		Content: content,
		Data:    map[string]any{"document": name, "chunks": len(chunks)},
	}, nil
}

func (a *Document) searchDocuments(ctx context.Context, args json.RawMessage) (ops.Result, error) {
	query := stringArg(args, "query")
	if query == "" {
		return ops.Result{}, fmt.Errorf("search_documents requires query")
	}
	k, ok := intArg(args, "k")
	if !ok || k <= 0 {
		k = 5
	}

	records, err := a.deps.Gateway.SimilaritySearch(ctx, query, k, memory.Filter{
		Categories: []memory.Category{memory.CategoryDocuments},
	})
	if err != nil {
		return ops.Result{}, err
	}
	if len(records) == 0 {
		return ops.Result{Content: "No document sections match that query."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d matching document sections:\n", len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "- [%s] %s\n", r.Metadata["document"], snippet(r.Content, 200))
	}
	return ops.Result{
		Content: strings.TrimRight(b.String(), "\n"),
		Data:    map[string]any{"count": len(records)},
	}, nil
}

// splitChunks cuts text into fixed-size chunks with the given overlap
// between consecutive chunks. Sizes are in runes so multi-byte text is
// never cut mid-character.
func splitChunks(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
