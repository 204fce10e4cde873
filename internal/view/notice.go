package view

import (
	"sync"
	"time"
)

// NoticeMessage is shown for every failed load. Network and schema failures
// look the same to the operator; the kind is kept for logs and metrics.
const NoticeMessage = "Unable to load certificates from the backend. The table shows the last successful load."

// Notice is a visible, non-blocking message about a failed load.
type Notice struct {
	Kind    string
	Message string
	Seq     uint64
	At      time.Time
}

// Notices holds the current notice, if any.
type Notices struct {
	mu      sync.RWMutex
	current *Notice
}

func NewNotices() *Notices {
	return &Notices{}
}

func (n *Notices) Post(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.Seq > notice.Seq {
		return
	}
	n.current = &notice
}

// Current returns the notice on display.
func (n *Notices) Current() (Notice, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// ClearThrough removes the notice if it was posted for seq or an earlier request.
func (n *Notices) ClearThrough(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.Seq <= seq {
		n.current = nil
	}
}
