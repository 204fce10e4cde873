package view

const (
	// LabelShowExpired is offered while only active certificates are shown.
	LabelShowExpired = "Show Expired"
	// LabelHideExpired is offered while every certificate is shown.
	LabelHideExpired = "Hide Expired"
)

// DisplayState selects which certificates the console asks the backend for.
// The zero value is the active-only view.
type DisplayState struct {
	ShowAll bool
}

// Label describes the action the toggle button offers from this state.
func (s DisplayState) Label() string {
	if s.ShowAll {
		return LabelHideExpired
	}
	return LabelShowExpired
}

// Toggled returns the other state.
func (s DisplayState) Toggled() DisplayState {
	return DisplayState{ShowAll: !s.ShowAll}
}

func (s DisplayState) String() string {
	if s.ShowAll {
		return "show-all"
	}
	return "active-only"
}
