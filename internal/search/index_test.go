package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"certview/internal/certs"
	"certview/internal/search"
	"certview/internal/view"
)

func renderedIndex(t *testing.T, records []certs.Record) (*view.Table, *search.Index) {
	t.Helper()
	table := view.NewTable()
	index := search.NewIndex(table)
	view.NewRenderer(table, index).Render(records)
	return table, index
}

func TestSearchMatchesTaggedCells(t *testing.T) {
	_, index := renderedIndex(t, []certs.Record{
		{KeyID: "Alice-Laptop", Principals: "alice", Message: "zzz"},
		{KeyID: "bob-desktop", Principals: "bob,root"},
		{KeyID: "cirunner", Principals: "deploy", Message: "alice"},
	})

	assert.Equal(t, 3, index.Len())
	assert.Equal(t, []int{0, 1, 2}, index.Search(""))
	assert.Equal(t, []int{0}, index.Search("ALICE"), "message cells are not indexed")
	assert.Equal(t, []int{1}, index.Search("root"))
	assert.Equal(t, []int{0, 1}, index.Search("-"))
	assert.Empty(t, index.Search("zzz"))
}

func TestReindexFollowsLatestRender(t *testing.T) {
	table, index := renderedIndex(t, []certs.Record{{KeyID: "first", Principals: "a"}})
	renderer := view.NewRenderer(table, index)

	renderer.Render([]certs.Record{{KeyID: "second", Principals: "b"}, {KeyID: "third", Principals: "c"}})

	assert.Empty(t, index.Search("first"))
	assert.Equal(t, []int{1}, index.Search("third"))
	assert.Equal(t, 2, index.Len())
}

func TestClearEmptiesIndex(t *testing.T) {
	_, index := renderedIndex(t, []certs.Record{{KeyID: "abc", Principals: "a"}})

	index.Clear()

	assert.Equal(t, 0, index.Len())
	assert.Empty(t, index.Search(""))
}

func TestCustomClasses(t *testing.T) {
	table := view.NewTable()
	index := search.NewIndex(table, view.ClassKeyID)
	view.NewRenderer(table, index).Render([]certs.Record{{KeyID: "abc", Principals: "alice"}})

	assert.Empty(t, index.Search("alice"))
	assert.Equal(t, []int{0}, index.Search("ab"))
}
