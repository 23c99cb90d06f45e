// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/display"
)

const detailsWidth = 40

// PlayerPage holds the search column, the sidebar and the slide-out details
// panel. It is the results panel and the search affordance for the Ui.
type PlayerPage struct {
	Root *tview.Flex

	searchField *tview.InputField
	notice      *tview.TextView
	resultsList *tview.List
	placeholder *tview.TextView
	column      *tview.Flex

	sidebar       *trackText
	detailsHeader *DetailsHeader
	detailsAbout  *trackText
	details       *tview.Flex

	// only touched on the tview goroutine
	clearing       bool
	detailsVisible bool

	// external refs
	ui *Ui
}

var (
	_ display.ResultsPanel = (*PlayerPage)(nil)
	_ display.TrackSurface = (*DetailsHeader)(nil)
	_ display.TrackSurface = (*trackText)(nil)
)

func (ui *Ui) createPlayerPage() *PlayerPage {
	playerPage := PlayerPage{
		ui: ui,
	}

	// search bar
	playerPage.searchField = tview.NewInputField().
		SetLabel("search: ").
		SetFieldBackgroundColor(tcell.ColorBlack)
	playerPage.searchField.SetBorder(true)
	playerPage.searchField.SetChangedFunc(func(text string) {
		if playerPage.clearing {
			return
		}
		ui.searchBox.Input(text)
	})
	playerPage.searchField.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter, tcell.KeyEscape, tcell.KeyTab:
			ui.searchBox.Blur()
			ui.app.SetFocus(playerPage.resultsList)
		}
	})

	playerPage.notice = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)

	playerPage.resultsList = tview.NewList().
		ShowSecondaryText(false)
	playerPage.resultsList.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		if err := ui.jukebox.Select(index); err != nil {
			ui.logger.PrintError("resultsList Select", err)
		}
	})
	playerPage.resultsList.Box.
		SetTitle(" results ").
		SetTitleAlign(tview.AlignLeft).
		SetBorder(true)

	playerPage.placeholder = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText("\n[gray]press / to search[-]")

	playerPage.column = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(playerPage.searchField, 3, 0, false).
		AddItem(playerPage.notice, 1, 0, false).
		AddItem(playerPage.resultsList, 0, 1, true).
		AddItem(playerPage.placeholder, 0, 0, false)

	// left sidebar
	sidebarView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	sidebarView.SetBorder(true)
	playerPage.sidebar = &trackText{view: sidebarView, format: formatSidebar, ui: ui}

	// right slide-out details
	playerPage.detailsHeader = ui.createDetailsHeader()
	aboutView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	playerPage.detailsAbout = &trackText{view: aboutView, format: formatDetailsAbout, ui: ui}

	playerPage.details = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(playerPage.detailsHeader.Root, 0, 2, false).
		AddItem(aboutView, 0, 1, false)
	playerPage.details.SetBorder(true).
		SetTitle(" details (i: close) ")

	playerPage.Root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(sidebarView, 24, 0, false).
		AddItem(playerPage.column, 0, 1, true).
		AddItem(playerPage.details, 0, 0, false)

	playerPage.searchField.SetFocusFunc(func() {
		ui.searchBox.Focus()
	})

	return &playerPage
}

// FocusSearch moves the cursor into the search field.
func (p *PlayerPage) FocusSearch() {
	p.ui.app.SetFocus(p.searchField)
}

func (p *PlayerPage) IsSearchFocused(focused tview.Primitive) bool {
	return focused == p.searchField
}

// containsSearch reports whether x,y lies on the search field or the results.
func (p *PlayerPage) containsSearch(x, y int) bool {
	return inRect(p.searchField, x, y) || inRect(p.notice, x, y) || inRect(p.resultsList, x, y)
}

// ToggleDetails opens or closes the details panel; call on the tview goroutine.
func (p *PlayerPage) ToggleDetails() {
	p.detailsVisible = !p.detailsVisible
	width := 0
	if p.detailsVisible {
		width = detailsWidth
	}
	p.Root.ResizeItem(p.details, width, 0)
}

func (p *PlayerPage) showResultsLocked() {
	p.column.ResizeItem(p.resultsList, 0, 1)
	p.column.ResizeItem(p.placeholder, 0, 0)
}

func (p *PlayerPage) ShowSearching(query string) {
	p.ui.app.QueueUpdateDraw(func() {
		p.notice.SetText("[yellow]searching for " + tview.Escape(query) + "…[-]")
		p.showResultsLocked()
	})
}

func (p *PlayerPage) ShowResults(tracks []catalog.Track) {
	items := make([]string, len(tracks))
	for i, t := range tracks {
		items[i] = formatSongForResults(t)
	}
	p.ui.app.QueueUpdateDraw(func() {
		p.resultsList.Clear()
		for _, item := range items {
			p.resultsList.AddItem(item, "", 0, nil)
		}
		p.notice.SetText("")
		p.showResultsLocked()
	})
}

func (p *PlayerPage) ShowNotice(notice display.Notice) {
	text := notice.String()
	p.ui.app.QueueUpdateDraw(func() {
		p.resultsList.Clear()
		p.notice.SetText("[red]" + tview.Escape(text) + "[-]")
		p.showResultsLocked()
	})
}

func (p *PlayerPage) ClearResults() {
	p.ui.app.QueueUpdateDraw(func() {
		p.resultsList.Clear()
		p.notice.SetText("")
	})
}

func (p *PlayerPage) ClearQuery() {
	p.ui.app.QueueUpdateDraw(func() {
		p.clearing = true
		p.searchField.SetText("")
		p.clearing = false
	})
}

func (p *PlayerPage) HideResults() {
	p.ui.app.QueueUpdateDraw(func() {
		p.column.ResizeItem(p.resultsList, 0, 0)
		p.column.ResizeItem(p.placeholder, 0, 1)
	})
}

func (p *PlayerPage) SetHighlighted(highlighted bool) {
	p.ui.app.QueueUpdateDraw(func() {
		color := tcell.ColorWhite
		if highlighted {
			color = tcell.ColorYellow
		}
		p.searchField.SetBorderColor(color)
	})
}

// trackText is a text view that shows the current track in its own format.
type trackText struct {
	view   *tview.TextView
	format func(display.TrackView) string
	ui     *Ui
}

func (t *trackText) ShowTrack(view display.TrackView) {
	text := t.format(view)
	t.ui.app.QueueUpdateDraw(func() {
		t.view.SetText(text)
	})
}

// DetailsHeader shows the artwork above title and artist.
type DetailsHeader struct {
	Root *tview.Flex

	artwork *tview.Image
	text    *tview.TextView

	// only touched on the tview goroutine
	artworkURL string

	ui *Ui
}

func (ui *Ui) createDetailsHeader() *DetailsHeader {
	h := &DetailsHeader{ui: ui}
	h.artwork = tview.NewImage().
		SetImage(blankArtwork)
	h.text = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetWrap(true)
	h.Root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.artwork, 0, 1, false).
		AddItem(h.text, 2, 0, false)
	return h
}

var blankArtwork image.Image = image.NewGray(image.Rect(0, 0, 1, 1))

func (h *DetailsHeader) ShowTrack(view display.TrackView) {
	text := formatDetailsHeader(view)
	h.ui.app.QueueUpdateDraw(func() {
		h.text.SetText(text)
		h.artworkURL = view.ArtworkURL

		art := blankArtwork
		if view.ArtworkURL != "" && view.ArtworkURL != h.ui.catalog.Normalizer.PlaceholderArtwork {
			if cached := h.ui.artworkCache.Get(view.ArtworkURL); cached != nil {
				art = cached
			}
		}
		h.artwork.SetImage(art)
	})
}

// setArtwork shows art if it still belongs to the current track.
func (h *DetailsHeader) setArtwork(uri string, art image.Image) {
	if uri != h.artworkURL || art == nil {
		return
	}
	h.artwork.SetImage(art)
}
