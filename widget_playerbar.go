// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/display"
)

// PlayerBar is the two-line transport at the bottom: transport icon, track
// and volume above a clickable progress bar.
type PlayerBar struct {
	Root *tview.Flex

	icon        *tview.TextView
	trackText   *tview.TextView
	volumeLabel *tview.TextView
	volumeBar   *tview.Box
	position    *tview.TextView
	progress    *tview.Box
	duration    *tview.TextView

	// only touched on the tview goroutine
	percent        float64
	volumePercent  float64
	draggingVolume bool

	filledStyle tcell.Style
	emptyStyle  tcell.Style

	// external references
	ui *Ui
}

func (ui *Ui) createPlayerBar() *PlayerBar {
	bar := &PlayerBar{
		filledStyle: tcell.StyleDefault.Foreground(tcell.ColorGreen),
		emptyStyle:  tcell.StyleDefault.Foreground(tcell.ColorGray),
		ui:          ui,
	}

	newText := func(align int) *tview.TextView {
		return tview.NewTextView().
			SetTextAlign(align).
			SetDynamicColors(true).
			SetScrollable(false)
	}

	bar.icon = newText(tview.AlignCenter).SetText(formatTransportIcon(false))
	bar.trackText = newText(tview.AlignLeft)
	bar.volumeLabel = newText(tview.AlignRight)
	bar.position = newText(tview.AlignRight).SetText(display.FormatTime(0))
	bar.duration = newText(tview.AlignLeft).SetText(display.FormatTime(0))

	bar.progress = tview.NewBox()
	bar.progress.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		drawBar(screen, x, y, width, bar.percent, bar.filledStyle, bar.emptyStyle)
		return x, y, width, height
	})

	bar.volumeBar = tview.NewBox()
	bar.volumeBar.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		drawBar(screen, x, y, width, bar.volumePercent, bar.filledStyle, bar.emptyStyle)
		return x, y, width, height
	})

	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(bar.icon, 3, 0, false).
		AddItem(bar.trackText, 0, 1, false).
		AddItem(bar.volumeLabel, 9, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(bar.volumeBar, 10, 0, false).
		AddItem(nil, 1, 0, false)

	bottom := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(bar.position, 6, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(bar.progress, 0, 1, false).
		AddItem(nil, 1, 0, false).
		AddItem(bar.duration, 6, 0, false)

	bar.Root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 1, 0, false).
		AddItem(bottom, 1, 0, false)

	return bar
}

func (b *PlayerBar) ShowTrack(view display.TrackView) {
	text := formatSongForStatusBar(view)
	b.ui.app.QueueUpdateDraw(func() {
		b.trackText.SetText(text)
	})
}

func (b *PlayerBar) SetPlaying(playing bool) {
	b.ui.app.QueueUpdateDraw(func() {
		b.icon.SetText(formatTransportIcon(playing))
	})
}

func (b *PlayerBar) SetProgress(percent float64, current string) {
	b.ui.app.QueueUpdateDraw(func() {
		b.percent = percent
		b.position.SetText(current)
	})
}

func (b *PlayerBar) SetDuration(label string) {
	b.ui.app.QueueUpdateDraw(func() {
		b.duration.SetText(label)
	})
}

func (b *PlayerBar) SetVolume(percent float64, muted bool) {
	b.ui.app.QueueUpdateDraw(func() {
		b.volumePercent = percent
		b.volumeLabel.SetText(formatVolume(percent, muted))
	})
}
