package view_test

import (
	"context"
	"sync"

	"certview/internal/certs"
	"certview/internal/view"
)

// recorder logs every Target and Index call in order.
type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) add(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

type recordingTarget struct {
	*view.Table
	rec *recorder
}

func (t *recordingTarget) ClearRows() {
	t.rec.add("clear-rows")
	t.Table.ClearRows()
}

func (t *recordingTarget) InsertRow(cells []view.Cell) int {
	t.rec.add("insert-row")
	return t.Table.InsertRow(cells)
}

func (t *recordingTarget) Commit() {
	t.rec.add("commit")
	t.Table.Commit()
}

// countingIndex counts Clear and Reindex calls.
type countingIndex struct {
	rec      *recorder
	mu       sync.Mutex
	clears   int
	reindexs int
}

func (i *countingIndex) Clear() {
	i.mu.Lock()
	i.clears++
	i.mu.Unlock()
	if i.rec != nil {
		i.rec.add("index-clear")
	}
}

func (i *countingIndex) Reindex() {
	i.mu.Lock()
	i.reindexs++
	i.mu.Unlock()
	if i.rec != nil {
		i.rec.add("index-reindex")
	}
}

func (i *countingIndex) Counts() (int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.clears, i.reindexs
}

type listResult struct {
	records []certs.Record
	err     error
}

// pendingCall is a ListCertificates call held until the test replies.
type pendingCall struct {
	showAll bool
	reply   chan listResult
}

// blockingClient holds every list call until the test answers it.
type blockingClient struct {
	calls chan *pendingCall
}

func newBlockingClient() *blockingClient {
	return &blockingClient{calls: make(chan *pendingCall, 16)}
}

func (c *blockingClient) CheckConnection(context.Context) error { return nil }

func (c *blockingClient) ListCertificates(ctx context.Context, showAll bool) ([]certs.Record, error) {
	call := &pendingCall{showAll: showAll, reply: make(chan listResult, 1)}
	c.calls <- call
	select {
	case res := <-call.reply:
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *blockingClient) RevokeURL() string { return "http://ca.example/admin/revoke" }

func (c *blockingClient) Shutdown() {}

// nextCalls collects n pending calls keyed by showAll.
func (c *blockingClient) nextCalls(n int) map[bool]*pendingCall {
	out := make(map[bool]*pendingCall, n)
	for i := 0; i < n; i++ {
		call := <-c.calls
		out[call.showAll] = call
	}
	return out
}

func activeRecords() []certs.Record {
	return []certs.Record{
		{KeyID: "abc123", CreatedAt: "2017-01-01 00:00:00 +0000", Expires: "2099-01-01 00:00:00 +0000", Principals: "alice", Message: "laptop"},
		{KeyID: "def456", CreatedAt: "2017-01-02 00:00:00 +0000", Expires: "2099-01-02 00:00:00 +0000", Principals: "bob,root", Message: ""},
	}
}

func allRecords() []certs.Record {
	return append(activeRecords(),
		certs.Record{KeyID: "old789", CreatedAt: "2016-01-01 00:00:00 +0000", Expires: "2016-02-01 00:00:00 +0000", Principals: "carol", Revoked: true},
	)
}

func keyIDs(table *view.Table) []string {
	var ids []string
	for _, row := range table.Rows() {
		ids = append(ids, row.Cells[view.ColumnKeyID].Text)
	}
	return ids
}
