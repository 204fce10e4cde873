package view

// Column positions of a rendered row.
const (
	ColumnKeyID = iota
	ColumnCreatedAt
	ColumnExpires
	ColumnPrincipals
	ColumnMessage
	ColumnRevoke

	ColumnCount
)

const (
	ClassKeyID      = "keyid"
	ClassPrincipals = "principals"

	// RevokeFieldName groups the revocation checkboxes for batch submission.
	RevokeFieldName = "cert_id"
)

// Checkbox is the revocation control placed in the last cell of a row.
type Checkbox struct {
	Name  string
	Value string
}

// Cell is one table cell. Control is nil for plain text cells.
type Cell struct {
	Text    string
	Classes []string
	Control *Checkbox
}

// HasClass reports whether the cell carries class.
func (c Cell) HasClass(class string) bool {
	for _, existing := range c.Classes {
		if existing == class {
			return true
		}
	}
	return false
}

// Target is the surface the Renderer draws on.
type Target interface {
	ClearRows()
	// InsertRow appends a row and returns its position.
	InsertRow(cells []Cell) int
	// AddClass tags one cell without touching its other classes.
	AddClass(row, col int, class string)
}

// Committer is implemented by targets that stage rows and publish them when
// the render completes.
type Committer interface {
	Commit()
}

// Index is the search collaborator notified after each render.
type Index interface {
	Clear()
	Reindex()
}

// TaggedCell is a cell carrying an index class, located by row and column.
type TaggedCell struct {
	Row    int
	Column int
	Class  string
	Text   string
}
