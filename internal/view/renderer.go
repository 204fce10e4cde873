package view

import (
	"sync"
	"sync/atomic"
	"time"

	"certview/internal/certs"
)

// Sequencer hands out monotonically increasing request numbers.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued sequence number.
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq == s.latest.Load()
}

// Response is a completed fetch waiting to be rendered.
type Response struct {
	Seq     uint64
	ShowAll bool
	Records []certs.Record
}

// Marker describes the last completed render. Seq and ShowAll come from the
// response that produced it; they stay zero for unsequenced renders.
type Marker struct {
	Seq     uint64
	ShowAll bool
	Rows    int
	Revoked int
	At      time.Time
}

// RenderStats counts renderer activity since start.
type RenderStats struct {
	Renders   uint64
	Discarded uint64
	Last      Marker
}

// Renderer rebuilds the target from a record list and keeps the index in
// step with it. Renders are serialized.
type Renderer struct {
	mu        sync.RWMutex
	target    Target
	index     Index
	seq       *Sequencer
	marker    Marker
	renders   uint64
	discarded uint64
	now       func() time.Time
}

func NewRenderer(target Target, index Index) *Renderer {
	return &Renderer{target: target, index: index, seq: &Sequencer{}, now: time.Now}
}

// Sequencer returns the sequencer whose latest number gates Accept.
func (r *Renderer) Sequencer() *Sequencer {
	return r.seq
}

// Render replaces the whole table with one row per record.
func (r *Renderer) Render(records []certs.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.render(records)
	r.marker.Seq = 0
	r.marker.ShowAll = false
}

// Accept renders resp only if it answers the latest issued request.
// Stale responses are dropped and counted.
func (r *Renderer) Accept(resp Response) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.seq.IsLatest(resp.Seq) {
		r.discarded++
		return false
	}
	r.render(resp.Records)
	r.marker.Seq = resp.Seq
	r.marker.ShowAll = resp.ShowAll
	return true
}

// Read runs fn while no render is in progress, so the target and index
// observed inside fn belong to the same render.
func (r *Renderer) Read(fn func(Marker)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.marker)
}

// Marker returns the last render's marker.
func (r *Renderer) Marker() Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.marker
}

func (r *Renderer) Stats() RenderStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RenderStats{Renders: r.renders, Discarded: r.discarded, Last: r.marker}
}

func (r *Renderer) render(records []certs.Record) {
	r.target.ClearRows()
	r.index.Clear()
	revoked := 0
	for _, record := range records {
		row := r.target.InsertRow(rowCells(record))
		r.target.AddClass(row, ColumnKeyID, ClassKeyID)
		r.target.AddClass(row, ColumnPrincipals, ClassPrincipals)
		if record.Revoked {
			revoked++
		}
	}
	if committer, ok := r.target.(Committer); ok {
		committer.Commit()
	}
	r.index.Reindex()
	r.renders++
	r.marker.Rows = len(records)
	r.marker.Revoked = revoked
	r.marker.At = r.now()
}

func rowCells(record certs.Record) []Cell {
	cells := make([]Cell, ColumnCount)
	cells[ColumnKeyID] = Cell{Text: record.KeyID}
	cells[ColumnCreatedAt] = Cell{Text: record.CreatedAt}
	cells[ColumnExpires] = Cell{Text: record.Expires}
	cells[ColumnPrincipals] = Cell{Text: record.Principals.String()}
	cells[ColumnMessage] = Cell{Text: record.Message}
	if !record.Revoked {
		cells[ColumnRevoke] = Cell{Control: &Checkbox{Name: RevokeFieldName, Value: record.KeyID}}
	}
	return cells
}
