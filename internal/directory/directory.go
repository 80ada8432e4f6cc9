// Package directory holds the expertise directory: the static mapping from
// team members to the keywords used to match them to ticket content. Loaded
// once at startup and read-only afterwards.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one team member and their expertise keywords.
type Entry struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Directory is an ordered, immutable set of entries. Order matters: the
// matching heuristic breaks ties in favor of the first-listed entry.
type Directory struct {
	entries []Entry
}

// New builds a directory, lowercasing keywords and rejecting empty entries.
func New(entries []Entry) (*Directory, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("directory must have at least one entry")
	}
	out := make([]Entry, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("entry %d: name is required", i)
		}
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("entry %q: at least one keyword is required", e.Name)
		}
		kws := make([]string, len(e.Keywords))
		for j, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				return nil, fmt.Errorf("entry %q: keyword %d is empty", e.Name, j)
			}
			kws[j] = kw
		}
		out = append(out, Entry{Name: e.Name, Keywords: kws})
	}
	return &Directory{entries: out}, nil
}

// Load reads a directory from a JSON file: an array of {name, keywords}.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}
	return New(entries)
}

// Default returns the built-in seed directory used when no file is configured.
func Default() *Directory {
	d, err := New([]Entry{
		{Name: "Alice Chen", Keywords: []string{"authentication", "security", "login", "password", "2fa", "oauth"}},
		{Name: "Bob Martinez", Keywords: []string{"database", "performance", "slow", "query", "connection", "sql"}},
		{Name: "Carol Johnson", Keywords: []string{"ui", "interface", "design", "display", "layout", "css", "frontend"}},
		{Name: "David Kim", Keywords: []string{"api", "integration", "webhook", "rest", "graphql", "backend"}},
		{Name: "Emma Wilson", Keywords: []string{"billing", "payment", "invoice", "subscription", "charge", "pricing"}},
		{Name: "Frank Zhang", Keywords: []string{"email", "notification", "alert", "message", "sms", "communication"}},
	})
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return d
}

// Entries returns a copy of the entries in declaration order.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Contains reports whether the exact name is in the directory.
func (d *Directory) Contains(name string) bool {
	for _, e := range d.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Match runs the deterministic expertise heuristic against case-folded ticket
// text: count each entry's keywords appearing as substrings, pick the entry
// with the strictly highest nonzero count. Ties go to the first-listed entry;
// an all-zero result yields no match.
func (d *Directory) Match(text string) (Entry, int, bool) {
	text = strings.ToLower(text)

	best := -1
	bestCount := 0
	for i, e := range d.entries {
		n := 0
		for _, kw := range e.Keywords {
			if strings.Contains(text, kw) {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = i, n
		}
	}

	if best < 0 {
		return Entry{}, 0, false
	}
	return d.entries[best], bestCount, true
}
