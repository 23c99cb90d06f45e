// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/display"
)

func makeModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewGrid().
		SetColumns(0, width, 0).
		SetRows(0, height, 0).
		AddItem(p, 1, 1, 1, 1, 0, 0, true)
}

type rectangle interface {
	GetRect() (int, int, int, int)
}

func inRect(r rectangle, x, y int) bool {
	rx, ry, width, height := r.GetRect()
	return x >= rx && x < rx+width && y >= ry && y < ry+height
}

// hbounds returns the left edge and width of r.
func hbounds(r rectangle) (left, width int) {
	left, _, width, _ = r.GetRect()
	return
}

// barCells is the number of filled cells for percent of a width wide bar.
func barCells(percent float64, width int) int {
	if width <= 0 || math.IsNaN(percent) || percent <= 0 {
		return 0
	}
	if percent >= 100 {
		return width
	}
	return int(math.Round(percent / 100 * float64(width)))
}

func drawBar(screen tcell.Screen, x, y, width int, percent float64, filled, empty tcell.Style) {
	cells := barCells(percent, width)
	for i := 0; i < width; i++ {
		if i < cells {
			screen.SetContent(x+i, y, '━', nil, filled)
		} else {
			screen.SetContent(x+i, y, '─', nil, empty)
		}
	}
}

func formatVolume(percent float64, muted bool) string {
	if muted {
		return "[red]muted[-]"
	}
	return fmt.Sprintf("vol %d%%", int(math.Round(percent)))
}

func formatTransportIcon(playing bool) string {
	if playing {
		return "[green::b]▶[-::-]"
	}
	return "[yellow::b]⏸[-::-]"
}

func formatSongForStatusBar(view display.TrackView) (text string) {
	if view.Title != "" {
		text += "[::-] [white]" + tview.Escape(view.Title)
	}
	if view.Artist != "" {
		text += " [gray]by [white]" + tview.Escape(view.Artist)
	}
	return
}

func formatSongForResults(track catalog.Track) (text string) {
	text = fmt.Sprintf("[gray]%2d[-] ", track.Index+1)
	if track.Title != "" {
		text += "[::-][white]" + tview.Escape(track.Title)
	}
	if track.Artist != "" {
		text += " [gray]by [white]" + tview.Escape(track.Artist)
	}
	if !track.Playable() {
		text += " [red](no preview)[-]"
	}
	return
}

func formatSidebar(view display.TrackView) string {
	return "[::b]Now Playing[::-]\n\n[white]" + tview.Escape(view.Title) + "\n[gray]" + tview.Escape(view.Artist)
}

func formatDetailsHeader(view display.TrackView) string {
	return "[::b]" + tview.Escape(view.Title) + "[::-]\n[gray]" + tview.Escape(view.Artist)
}

func formatDetailsAbout(view display.TrackView) string {
	return "[::b]About the artist[::-]\n\n" + tview.Escape(view.Artist)
}
