// Package dictionary holds the curated term lists (laboratories,
// pharmaceutical forms, measurement units) used to map free-form vendor
// text onto canonical names.
package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"medisearch-backend/lib/textutil"
)

type Entry struct {
	Canonical string   `json:"name"`
	Synonyms  []string `json:"synonyms"`
}

// Dictionary is an ordered list of entries. Order matters: matching is
// greedy and the declaration order acts as the priority list, so
// reordering entries changes outputs.
type Dictionary struct {
	Entries []Entry
}

// Match returns the canonical name of the first entry whose canonical
// name or any synonym occurs as a substring of the normalized input.
// The second return is false when nothing matches.
func (d Dictionary) Match(text string) (string, bool) {
	normalized := textutil.Normalize(text)
	if normalized == "" {
		return "", false
	}
	for _, entry := range d.Entries {
		for _, term := range entry.Terms() {
			term = textutil.Normalize(term)
			if term == "" {
				continue
			}
			if strings.Contains(normalized, term) {
				return entry.Canonical, true
			}
		}
	}
	return "", false
}

// MatchExact returns the canonical name of the first entry whose
// canonical name or any synonym equals the whole normalized input.
// Token rewriting (unit spellings, mostly) needs equality; substring
// matching would turn "gotas" into "g".
func (d Dictionary) MatchExact(text string) (string, bool) {
	normalized := textutil.Normalize(text)
	if normalized == "" {
		return "", false
	}
	for _, entry := range d.Entries {
		for _, term := range entry.Terms() {
			if textutil.Normalize(term) == normalized {
				return entry.Canonical, true
			}
		}
	}
	return "", false
}

// Terms returns every term of an entry, canonical name first.
func (e Entry) Terms() []string {
	terms := make([]string, 0, len(e.Synonyms)+1)
	terms = append(terms, e.Canonical)
	terms = append(terms, e.Synonyms...)
	return terms
}

func Parse(data []byte) (Dictionary, error) {
	var entries []Entry
	err := json.Unmarshal(data, &entries)
	if err != nil {
		return Dictionary{}, err
	}
	return Dictionary{Entries: entries}, nil
}

func Load(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, err
	}
	dict, err := Parse(data)
	if err != nil {
		return Dictionary{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return dict, nil
}

// Set bundles the three reference dictionaries loaded once per run and
// shared read-only afterwards.
type Set struct {
	Laboratories Dictionary
	Forms        Dictionary
	Units        Dictionary
}

// LoadSet reads labs.json, forms.json and units.json from a directory.
func LoadSet(dir string) (Set, error) {
	labs, err := Load(filepath.Join(dir, "labs.json"))
	if err != nil {
		return Set{}, err
	}
	forms, err := Load(filepath.Join(dir, "forms.json"))
	if err != nil {
		return Set{}, err
	}
	units, err := Load(filepath.Join(dir, "units.json"))
	if err != nil {
		return Set{}, err
	}
	return Set{Laboratories: labs, Forms: forms, Units: units}, nil
}
