// Package search keeps a substring index over the rendered certificate table.
package search

import (
	"sort"
	"strings"
	"sync"

	"certview/internal/view"
)

// Source supplies the tagged cells to index.
type Source interface {
	Tagged(classes ...string) []view.TaggedCell
}

// DefaultClasses are the cell classes searched by the console.
var DefaultClasses = []string{view.ClassKeyID, view.ClassPrincipals}

type entry struct {
	row  int
	text string
}

// Index implements view.Index. Matching is a case-insensitive substring test
// against every indexed cell of a row.
type Index struct {
	mu      sync.RWMutex
	source  Source
	classes []string
	entries []entry
	rows    int
}

func NewIndex(source Source, classes ...string) *Index {
	if len(classes) == 0 {
		classes = DefaultClasses
	}
	return &Index{source: source, classes: append([]string(nil), classes...)}
}

func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = nil
	i.rows = 0
}

// Reindex rebuilds the index from the source's published rows.
func (i *Index) Reindex() {
	cells := i.source.Tagged(i.classes...)
	entries := make([]entry, 0, len(cells))
	rows := 0
	for _, cell := range cells {
		entries = append(entries, entry{row: cell.Row, text: strings.ToLower(cell.Text)})
		if cell.Row+1 > rows {
			rows = cell.Row + 1
		}
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = entries
	i.rows = rows
}

// Search returns the positions of matching rows in ascending order. An empty
// query matches every indexed row.
func (i *Index) Search(query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	i.mu.RLock()
	defer i.mu.RUnlock()

	seen := make(map[int]struct{})
	for _, e := range i.entries {
		if query == "" || strings.Contains(e.text, query) {
			seen[e.row] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for row := range seen {
		out = append(out, row)
	}
	sort.Ints(out)
	return out
}

// Len returns the number of indexed rows.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.rows
}
