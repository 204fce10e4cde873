package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"certview/internal/view"
)

func TestDisplayStateLabels(t *testing.T) {
	var state view.DisplayState
	assert.False(t, state.ShowAll)
	assert.Equal(t, "Show Expired", state.Label())
	assert.Equal(t, "active-only", state.String())

	toggled := state.Toggled()
	assert.True(t, toggled.ShowAll)
	assert.Equal(t, "Hide Expired", toggled.Label())
	assert.Equal(t, "show-all", toggled.String())
	assert.Equal(t, state, toggled.Toggled())
}
