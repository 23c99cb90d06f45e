package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/logger"
	"github.com/stretchr/testify/assert"
)

func TestLoadingTextFollowsCounter(t *testing.T) {
	ui := &Ui{playerStatus: tview.NewTextView().SetDynamicColors(true)}

	ui.searching.Add(1)
	ui.renderLoading()
	assert.Contains(t, ui.playerStatus.GetText(true), "searching")

	// show and hide raced: both queued draws run after the counter settled
	ui.searching.Add(1)
	ui.searching.Add(-1)
	ui.searching.Add(-1)
	ui.renderLoading()
	ui.renderLoading()
	assert.Empty(t, ui.playerStatus.GetText(true))
}

func TestBuiltInKeyCommands(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want string
	}{
		{tcell.KeyRune, 'p', "TogglePlayPause"},
		{tcell.KeyRune, ' ', "TogglePlayPause"},
		{tcell.KeyRune, '>', "Next"},
		{tcell.KeyRune, '=', "VolumeUp"},
		{tcell.KeyRune, 'i', "ToggleDetails"},
		{tcell.KeyRune, 'x', ""},
		{tcell.KeyEnter, 0, ""},
	}
	for _, tt := range tests {
		event := tcell.NewEventKey(tt.key, tt.r, tcell.ModNone)
		assert.Equal(t, tt.want, keyCommand(nil, event, PagePlayer), "rune %q", tt.r)
	}
}

func TestUnknownCommandIsNotHandled(t *testing.T) {
	ui := &Ui{logger: logger.Init()}
	assert.False(t, ui.runCommand("Dance"))
}

func TestEveryBuiltInKeyHasACommand(t *testing.T) {
	known := map[string]bool{
		"ShowPagePlayer": true, "ShowPageLog": true, "ShowHelp": true, "Quit": true,
		"Search": true, "TogglePlayPause": true, "Next": true, "Previous": true,
		"VolumeDown": true, "VolumeUp": true, "ToggleMute": true,
		"SeekForward": true, "SeekBackward": true, "ToggleDetails": true,
	}
	for r, command := range defaultKeyCommands {
		assert.True(t, known[command], "key %q maps to %q", r, command)
	}
}

func TestFormatMenuStatus(t *testing.T) {
	assert.Contains(t, formatMenuStatus(false, display.TrackView{}, false), "nothing playing")

	view := display.TrackView{Title: "Da [Funk]", Artist: "Daft Punk"}
	paused := formatMenuStatus(false, view, true)
	assert.Contains(t, paused, "paused")
	assert.Contains(t, paused, tview.Escape("Da [Funk]"))

	assert.Contains(t, formatMenuStatus(true, view, true), "playing")
}

func TestFormatPageTabs(t *testing.T) {
	assert.Equal(t, `["player"] 1: player [""] ["log"] 2: log [""]`, formatPageTabs([]string{PagePlayer, PageLog}))
}
