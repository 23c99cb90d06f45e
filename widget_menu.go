// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/display"
)

var (
	_ display.TrackSurface     = (*MenuWidget)(nil)
	_ display.TransportSurface = (*MenuWidget)(nil)
)

// MenuWidget is the bottom line: page tabs on the left, a compact
// now-playing line in the middle and the help/quit hints on the right.
type MenuWidget struct {
	Root *tview.Flex

	tabs   *tview.TextView
	status *tview.TextView
	hints  *tview.TextView

	// only touched on the tview goroutine
	activePage string
	playing    bool
	view       display.TrackView
	hasTrack   bool

	// external references
	ui *Ui
}

var pageOrder = []string{PagePlayer, PageLog}

func (ui *Ui) createMenuWidget() (m *MenuWidget) {
	m = &MenuWidget{
		activePage: PagePlayer,
		ui:         ui,
	}

	// clickable page tabs
	m.tabs = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWrap(false)
	m.tabs.SetHighlightedFunc(func(added, removed, remaining []string) {
		if len(added) == 0 || added[0] == m.activePage {
			return
		}
		m.ui.ShowPage(added[0])
	})
	m.tabs.SetText(formatPageTabs(pageOrder))
	m.tabs.Highlight(m.activePage)

	m.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetWrap(false)
	m.status.SetText(formatMenuStatus(false, display.TrackView{}, false))

	m.hints = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight).
		SetText("[::b]?[::-] help  [::b]Q[::-] quit ")

	m.Root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(m.tabs, 22, 0, false).
		AddItem(m.status, 0, 1, false).
		AddItem(m.hints, 16, 0, false)

	return
}

func formatPageTabs(pages []string) string {
	tabs := make([]string, len(pages))
	for i, page := range pages {
		tabs[i] = fmt.Sprintf(`["%s"] %d: %s [""]`, page, i+1, page)
	}
	return strings.Join(tabs, " ")
}

func formatMenuStatus(playing bool, view display.TrackView, hasTrack bool) string {
	if !hasTrack {
		return "[gray]nothing playing · / to search[-]"
	}
	state := "[yellow]paused[-]"
	if playing {
		state = "[green]playing[-]"
	}
	return fmt.Sprintf("%s [white]%s[gray] · %s[-]", state, tview.Escape(view.Title), tview.Escape(view.Artist))
}

func (m *MenuWidget) SetActivePage(name string) {
	found := false
	for _, page := range pageOrder {
		found = found || page == name
	}
	if !found {
		return
	}

	m.activePage = name
	m.tabs.Highlight(name)
}

func (m *MenuWidget) GetActivePage() string {
	return m.activePage
}

func (m *MenuWidget) ShowTrack(view display.TrackView) {
	m.ui.app.QueueUpdateDraw(func() {
		m.view = view
		m.hasTrack = true
		m.status.SetText(formatMenuStatus(m.playing, m.view, m.hasTrack))
	})
}

func (m *MenuWidget) SetPlaying(playing bool) {
	m.ui.app.QueueUpdateDraw(func() {
		m.playing = playing
		m.status.SetText(formatMenuStatus(m.playing, m.view, m.hasTrack))
	})
}

func (m *MenuWidget) SetProgress(float64, string) {}

func (m *MenuWidget) SetDuration(string) {}

func (m *MenuWidget) SetVolume(float64, bool) {}
