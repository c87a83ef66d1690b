package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"medisearch-backend/lib/catalog"
)

// Task is one product URL to process, tagged with where it came from.
type Task struct {
	Source      catalog.SourceID
	Category    string
	Subcategory string
	URL         string
	LocalID     string
}

// taskEntry accepts both value shapes category lists use: a bare URL
// string or a {url, localId} object.
type taskEntry struct {
	URL     string `json:"url"`
	LocalID string `json:"localId"`
}

func (e *taskEntry) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		e.URL = url
		return nil
	}

	type plain taskEntry
	return json.Unmarshal(data, (*plain)(e))
}

// ParseCategoryLists decodes a source's category list: a JSON object
// whose keys are "category" or "category/subcategory" and whose values
// are arrays of product URLs or {url, localId} pairs. Entries without
// a url are rejected.
func ParseCategoryLists(source catalog.SourceID, data []byte) ([]Task, error) {
	var categories map[string][]taskEntry
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("decode category lists: %w", err)
	}

	var tasks []Task
	for key, entries := range categories {
		category, subcategory, _ := strings.Cut(key, "/")
		for _, entry := range entries {
			if entry.URL == "" {
				return nil, fmt.Errorf("category %q: entry without url", key)
			}
			tasks = append(tasks, Task{
				Source:      source,
				Category:    category,
				Subcategory: subcategory,
				URL:         entry.URL,
				LocalID:     entry.LocalID,
			})
		}
	}
	return tasks, nil
}
