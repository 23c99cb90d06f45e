// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	tviewcommand "github.com/spezifisch/tview-command"
)

const (
	seekStep   = 0.1
	volumeStep = 0.05
)

// built-in key bindings, used when the command-shortcut config doesn't bind a key
var defaultKeyCommands = map[rune]string{
	'1': "ShowPagePlayer",
	'2': "ShowPageLog",
	'?': "ShowHelp",
	'Q': "Quit",
	'/': "Search",
	'p': "TogglePlayPause",
	' ': "TogglePlayPause",
	'>': "Next",
	'<': "Previous",
	'-': "VolumeDown",
	'+': "VolumeUp",
	'=': "VolumeUp",
	'm': "ToggleMute",
	'.': "SeekForward",
	',': "SeekBackward",
	'i': "ToggleDetails",
}

// keyContexts maps pages to command-shortcut config contexts.
var keyContexts = map[string]string{
	PagePlayer: "Player",
	PageLog:    "Log",
}

// keyCommand resolves a key to a command name, preferring the page's context
// in config, then its Default context, then the built-in bindings.
func keyCommand(config *tviewcommand.Config, event *tcell.EventKey, page string) string {
	if config != nil {
		for _, context := range []string{keyContexts[page], "Default"} {
			if context == "" {
				continue
			}
			tcEvent := tviewcommand.FromEventKey(event, config)
			if err := tcEvent.LookupCommand(context); err != nil {
				continue
			}
			if tcEvent.IsBound {
				return tcEvent.Command
			}
		}
	}
	if event.Key() != tcell.KeyRune {
		return ""
	}
	return defaultKeyCommands[event.Rune()]
}

func (ui *Ui) handlePageInput(event *tcell.EventKey) *tcell.EventKey {
	// we don't want any of these firing while typing a query
	focused := ui.app.GetFocus()
	if ui.playerPage.IsSearchFocused(focused) || ui.helpWidget.visible {
		return event
	}

	command := keyCommand(ui.keyConfig, event, ui.menuWidget.GetActivePage())
	if command == "" || !ui.runCommand(command) {
		return event
	}
	return nil
}

// runCommand executes a named command and reports whether the name is known.
func (ui *Ui) runCommand(command string) bool {
	switch command {
	case "ShowPagePlayer":
		ui.ShowPage(PagePlayer)

	case "ShowPageLog":
		ui.ShowPage(PageLog)

	case "ShowHelp":
		ui.ShowHelp()

	case "Quit":
		ui.Quit()

	case "Search":
		ui.ShowPage(PagePlayer)
		ui.playerPage.FocusSearch()

	case "TogglePlayPause":
		if err := ui.jukebox.TogglePlayPause(); err != nil {
			ui.logger.PrintError("runCommand: TogglePlayPause", err)
		}

	case "Next":
		if err := ui.jukebox.Next(); err != nil {
			ui.logger.PrintError("runCommand: Next", err)
		}

	case "Previous":
		if err := ui.jukebox.Previous(); err != nil {
			ui.logger.PrintError("runCommand: Previous", err)
		}

	case "VolumeDown":
		ui.volume.Nudge(-volumeStep)

	case "VolumeUp":
		ui.volume.Nudge(volumeStep)

	case "ToggleMute":
		ui.volume.ToggleMute()

	case "SeekForward":
		// >>
		if err := ui.jukebox.SeekBy(seekStep); err != nil {
			ui.logger.PrintError("runCommand: Seek+", err)
		}

	case "SeekBackward":
		// <<
		if err := ui.jukebox.SeekBy(-seekStep); err != nil {
			ui.logger.PrintError("runCommand: Seek-", err)
		}

	case "ToggleDetails":
		ui.playerPage.ToggleDetails()

	default:
		ui.logger.Printf("unknown command %q", command)
		return false
	}
	return true
}

// handleMouse routes clicks and drags on the player bar to the seek bar and
// the volume slider, and closes the results on clicks elsewhere.
func (ui *Ui) handleMouse(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
	if event == nil {
		return event, action
	}
	x, y := event.Position()
	bar := ui.playerBar
	progressLeft, progressWidth := hbounds(bar.progress)
	volumeLeft, volumeWidth := hbounds(bar.volumeBar)

	switch action {
	case tview.MouseLeftDown:
		switch {
		case inRect(bar.progress, x, y):
			ui.seekBar.Press(x, progressLeft, progressWidth)
			return nil, action
		case inRect(bar.volumeBar, x, y):
			bar.draggingVolume = true
			ui.volume.DragAt(x, volumeLeft, volumeWidth)
			return nil, action
		case inRect(bar.trackText, x, y):
			ui.playerPage.ToggleDetails()
			return nil, action
		}
		if ui.menuWidget.GetActivePage() == PagePlayer {
			ui.searchBox.OutsideClick(ui.playerPage.containsSearch(x, y))
		}

	case tview.MouseMove:
		if ui.seekBar.Dragging() {
			ui.seekBar.Move(x, progressLeft, progressWidth)
			return nil, action
		}
		if bar.draggingVolume {
			ui.volume.DragAt(x, volumeLeft, volumeWidth)
			return nil, action
		}

	case tview.MouseLeftUp:
		if ui.seekBar.Dragging() {
			ui.seekBar.Release(x, progressLeft, progressWidth)
			return nil, action
		}
		if bar.draggingVolume {
			bar.draggingVolume = false
			return nil, action
		}

	case tview.MouseScrollUp:
		if inRect(bar.volumeBar, x, y) || inRect(bar.volumeLabel, x, y) {
			ui.volume.Nudge(volumeStep)
			return nil, action
		}

	case tview.MouseScrollDown:
		if inRect(bar.volumeBar, x, y) || inRect(bar.volumeLabel, x, y) {
			ui.volume.Nudge(-volumeStep)
			return nil, action
		}
	}

	return event, action
}

func (ui *Ui) ShowPage(name string) {
	ui.pages.SwitchToPage(name)
	ui.menuWidget.SetActivePage(name)
	if name == PagePlayer {
		ui.app.SetFocus(ui.playerPage.resultsList)
		return
	}
	_, prim := ui.pages.GetFrontPage()
	ui.app.SetFocus(prim)
}

func (ui *Ui) Quit() {
	ui.jukebox.Close()
	ui.artworkCache.Close()
	ui.app.Stop()
}
