package view

import (
	"context"
	"sync"
)

// Button is the control whose text names the next toggle action.
type Button interface {
	SetLabel(text string)
}

// Label is an in-memory Button.
type Label struct {
	mu   sync.RWMutex
	text string
}

func NewLabel() *Label {
	return &Label{}
}

func (l *Label) SetLabel(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.text = text
}

func (l *Label) Text() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

// Controller is the two-state toggle between the active-only and show-all
// views. It owns the DisplayState.
type Controller struct {
	mu      sync.Mutex
	state   DisplayState
	fetcher *Fetcher
	button  Button
}

func NewController(fetcher *Fetcher, button Button) *Controller {
	return &Controller{fetcher: fetcher, button: button}
}

// Start performs the initial load in the current state.
func (c *Controller) Start(ctx context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.button.SetLabel(c.state.Label())
	return c.fetcher.Load(ctx, c.state)
}

// Toggle flips the state, starts a load for it and relabels the button
// without waiting for the load.
func (c *Controller) Toggle(ctx context.Context) DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = c.state.Toggled()
	c.fetcher.Load(ctx, c.state)
	c.button.SetLabel(c.state.Label())
	return c.state
}

// Refresh reloads the current state.
func (c *Controller) Refresh(ctx context.Context) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetcher.Load(ctx, c.state)
}

func (c *Controller) State() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a load is still running.
func (c *Controller) Pending() bool {
	return c.fetcher.InFlight() > 0
}

// Consistent reports whether the displayed table was rendered for the
// current state.
func (c *Controller) Consistent() bool {
	marker := c.fetcher.renderer.Marker()
	return marker.Seq > 0 && marker.ShowAll == c.State().ShowAll
}
