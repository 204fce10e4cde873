package view

import "sync"

// Row is one rendered table row.
type Row struct {
	Cells []Cell
}

// Table is an in-memory Target. Rows inserted after ClearRows are staged and
// only become visible to readers on Commit, so a reader never sees a
// half-rendered table.
type Table struct {
	mu      sync.RWMutex
	rows    []Row
	staged  []Row
	staging bool
	commits uint64
}

func NewTable() *Table {
	return &Table{rows: []Row{}}
}

func (t *Table) ClearRows() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staged = []Row{}
	t.staging = true
}

func (t *Table) InsertRow(cells []Cell) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	row := Row{Cells: copyCells(cells)}
	if t.staging {
		t.staged = append(t.staged, row)
		return len(t.staged) - 1
	}
	t.rows = append(t.rows, row)
	return len(t.rows) - 1
}

func (t *Table) AddClass(row, col int, class string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rows := t.rows
	if t.staging {
		rows = t.staged
	}
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row].Cells) {
		return
	}
	cell := &rows[row].Cells[col]
	if cell.HasClass(class) {
		return
	}
	cell.Classes = append(cell.Classes, class)
}

// Commit publishes the staged rows.
func (t *Table) Commit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.staging {
		return
	}
	t.rows = t.staged
	t.staged = nil
	t.staging = false
	t.commits++
}

// Rows returns a copy of the published rows.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Row, len(t.rows))
	for i, row := range t.rows {
		out[i] = Row{Cells: copyCells(row.Cells)}
	}
	return out
}

// Len returns the number of published rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Commits returns how many renders have been published.
func (t *Table) Commits() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.commits
}

// Tagged returns the published cells carrying any of classes, in row order.
func (t *Table) Tagged(classes ...string) []TaggedCell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []TaggedCell
	for rowIndex, row := range t.rows {
		for colIndex, cell := range row.Cells {
			for _, class := range classes {
				if cell.HasClass(class) {
					out = append(out, TaggedCell{Row: rowIndex, Column: colIndex, Class: class, Text: cell.Text})
				}
			}
		}
	}
	return out
}

func copyCells(cells []Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, cell := range cells {
		out[i] = Cell{Text: cell.Text}
		if len(cell.Classes) > 0 {
			out[i].Classes = append([]string(nil), cell.Classes...)
		}
		if cell.Control != nil {
			control := *cell.Control
			out[i].Control = &control
		}
	}
	return out
}
