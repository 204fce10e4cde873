package handlers

import (
	"certview/internal/backend"
	"certview/internal/search"
	"certview/internal/view"
)

// Console bundles the view components one server instance renders from.
type Console struct {
	Controller *view.Controller
	Fetcher    *view.Fetcher
	Renderer   *view.Renderer
	Table      *view.Table
	Index      *search.Index
	Notices    *view.Notices
	Label      *view.Label
	RevokeURL  string
}

// NewConsole wires a table, its search index and a toggle controller to client.
func NewConsole(client backend.Client, opts ...view.FetcherOption) *Console {
	table := view.NewTable()
	index := search.NewIndex(table)
	renderer := view.NewRenderer(table, index)
	notices := view.NewNotices()
	fetcher := view.NewFetcher(client, renderer, notices, opts...)
	label := view.NewLabel()
	return &Console{
		Controller: view.NewController(fetcher, label),
		Fetcher:    fetcher,
		Renderer:   renderer,
		Table:      table,
		Index:      index,
		Notices:    notices,
		Label:      label,
		RevokeURL:  client.RevokeURL(),
	}
}

// snapshot is one consistent read of the rendered table.
type snapshot struct {
	Marker view.Marker
	Rows   []view.Row
	Total  int
}

// snapshot returns the rendered rows matching query together with the marker
// of the render that produced them.
func (c *Console) snapshot(query string) snapshot {
	var snap snapshot
	c.Renderer.Read(func(marker view.Marker) {
		rows := c.Table.Rows()
		matches := c.Index.Search(query)
		snap.Marker = marker
		snap.Total = len(rows)
		snap.Rows = make([]view.Row, 0, len(matches))
		for _, pos := range matches {
			if pos < len(rows) {
				snap.Rows = append(snap.Rows, rows[pos])
			}
		}
	})
	return snap
}

func (c *Console) notice() *view.Notice {
	notice, ok := c.Notices.Current()
	if !ok {
		return nil
	}
	return &notice
}
