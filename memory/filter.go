package memory

import "strings"

// Filter narrows query and search results. Zero value matches everything.
type Filter struct {
	// Categories keeps only records in the listed categories. Empty means
	// all categories. Ignored by Query, which is already category-scoped.
	Categories []Category

	// Contains keeps only records whose content includes the substring,
	// case-insensitively.
	Contains string

	// Metadata keeps only records carrying every listed key/value pair.
	Metadata map[string]string

	// Limit caps the number of results. Zero means no cap beyond the
	// store defaults.
	Limit int
}

// Matches reports whether the record passes the filter. Limit is not
// evaluated here; callers apply it after ordering.
func (f Filter) Matches(r Record) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if r.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(r.Content), strings.ToLower(f.Contains)) {
		return false
	}
	for k, v := range f.Metadata {
		if r.Metadata[k] != v {
			return false
		}
	}
	return true
}
