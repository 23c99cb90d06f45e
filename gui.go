// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/interaction"
	"github.com/spezifisch/tunebar/jukebox"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
	tviewcommand "github.com/spezifisch/tview-command"
)

// struct contains all the updatable elements of the Ui
type Ui struct {
	app   *tview.Application
	pages *tview.Pages

	// top bar
	startStopStatus *tview.TextView
	playerStatus    *tview.TextView

	// bottom bars
	playerBar  *PlayerBar
	menuWidget *MenuWidget

	// player page
	playerPage *PlayerPage

	// log page
	logPage *LogPage

	// modals
	helpModal  tview.Primitive
	helpWidget *HelpWidget

	// input
	seekBar   *interaction.SeekBar
	volume    *interaction.VolumeSlider
	searchBox *interaction.SearchBox

	artworkCache *Cache[image.Image]
	artworkLRU   LRU
	searching    atomic.Int32

	// command-shortcut config, nil for the built-in keys
	keyConfig *tviewcommand.Config

	jukebox   *jukebox.Jukebox
	primitive player.Primitive
	catalog   *catalog.Client
	logger    *logger.Logger
}

type GuiConfig struct {
	Volume           float64
	Debounce         time.Duration
	Timeout          time.Duration
	ArtworkCacheSize int
	KeyConfig        *tviewcommand.Config
}

const (
	// page identifiers (use these instead of hardcoding page names for showing/hiding)
	PagePlayer = "player"
	PageLog    = "log"

	PageHelpBox = "helpBox"
)

func InitGui(client *catalog.Client,
	primitive player.Primitive,
	logger *logger.Logger,
	config GuiConfig) (ui *Ui) {
	ui = &Ui{
		primitive:  primitive,
		catalog:    client,
		logger:     logger,
		artworkLRU: NewLRU(config.ArtworkCacheSize),
		keyConfig:  config.KeyConfig,
	}

	ui.jukebox = jukebox.New(jukebox.Config{
		Backend:   client,
		Primitive: primitive,
		Loading:   ui,
		Logger:    logger,
		Volume:    config.Volume,
		Debounce:  config.Debounce,
		Timeout:   config.Timeout,
	})

	ui.app = tview.NewApplication()
	ui.pages = tview.NewPages()

	ui.artworkCache = NewCache(
		image.Image(nil),
		ui.fetchArtwork,
		ui.artworkFetched,
		ui.artworkLRU.Touch,
		logger,
	)

	// status text at the top
	statusLeft := fmt.Sprintf("[::b]%s[::-] %s", Name, Version)
	ui.startStopStatus = tview.NewTextView().SetText(statusLeft).
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(false)
	ui.startStopStatus.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		return action, nil
	})

	ui.playerStatus = tview.NewTextView().
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetScrollable(false)

	ui.menuWidget = ui.createMenuWidget()
	ui.helpWidget = ui.createHelpWidget()
	ui.playerBar = ui.createPlayerBar()
	ui.playerPage = ui.createPlayerPage()
	ui.logPage = ui.createLogPage()

	ui.seekBar = interaction.NewSeekBar(ui.jukebox, ui.jukebox.Broadcaster(), logger)
	ui.volume = interaction.NewVolumeSlider(ui.jukebox, ui.jukebox.Broadcaster(), logger)
	ui.searchBox = interaction.NewSearchBox(ui.jukebox, ui.playerPage)

	// help box modal
	ui.helpModal = makeModal(ui.helpWidget.Root, 60, 24)
	ui.helpWidget.Root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// only close on ESC, like the help text says
		if ui.helpWidget.visible && (event.Key() == tcell.KeyEscape) {
			ui.CloseHelp()
		}
		return event
	})

	// top bar: status text
	topBarFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(ui.startStopStatus, 0, 1, false).
		AddItem(ui.playerStatus, 20, 0, false)

	ui.pages.AddPage(PagePlayer, ui.playerPage.Root, true, true).
		AddPage(PageHelpBox, ui.helpModal, true, false).
		AddPage(PageLog, ui.logPage.Root, true, false)

	rootFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBarFlex, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.playerBar.Root, 2, 0, false).
		AddItem(ui.menuWidget.Root, 1, 0, false)

	// add main input handler
	rootFlex.SetInputCapture(ui.handlePageInput)

	ui.app.SetRoot(rootFlex, true).
		SetFocus(ui.playerPage.resultsList).
		EnableMouse(true).
		SetMouseCapture(ui.handleMouse)

	ui.registerSurfaces()

	return ui
}

func (ui *Ui) registerSurfaces() {
	b := ui.jukebox.Broadcaster()
	b.RegisterTrackSurface(display.SurfacePlayerBar, ui.playerBar)
	b.RegisterTrackSurface(display.SurfaceSidebar, ui.playerPage.sidebar)
	b.RegisterTrackSurface(display.SurfaceDetailsHeader, ui.playerPage.detailsHeader)
	b.RegisterTrackSurface(display.SurfaceDetailsAbout, ui.playerPage.detailsAbout)
	b.RegisterTrackSurface(display.SurfaceMenuBar, ui.menuWidget)
	b.AddTransportSurface(ui.playerBar)
	b.AddTransportSurface(ui.menuWidget)
	b.SetResultsPanel(ui.playerPage)

	b.RenderVolume(ui.jukebox.Volume())
	b.RenderDuration(0)
	b.RenderTransportIcon(false)
}

func (ui *Ui) Run() error {
	// run gui/background event handler
	ui.runEventLoops()

	// run mpv event handler
	if looper, ok := ui.primitive.(interface{ EventLoop() }); ok {
		go looper.EventLoop()
	}

	// gui main loop (blocking)
	return ui.app.Run()
}

func (ui *Ui) ShowHelp() {
	activePage := ui.menuWidget.GetActivePage()
	ui.helpWidget.RenderHelp(activePage)

	ui.pages.ShowPage(PageHelpBox)
	ui.pages.SendToFront(PageHelpBox)
	ui.app.SetFocus(ui.helpModal)
	ui.helpWidget.visible = true
}

func (ui *Ui) CloseHelp() {
	ui.helpWidget.visible = false
	ui.pages.HidePage(PageHelpBox)
	ui.ShowPage(ui.menuWidget.GetActivePage())
}

// ShowLoading and HideLoading make the Ui the search loading indicator.
func (ui *Ui) ShowLoading() {
	ui.searching.Add(1)
	ui.updateLoading()
}

func (ui *Ui) HideLoading() {
	ui.searching.Add(-1)
	ui.updateLoading()
}

// updateLoading reads the counter when the draw runs, so queued updates
// can land in any order.
func (ui *Ui) updateLoading() {
	ui.app.QueueUpdateDraw(ui.renderLoading)
}

func (ui *Ui) renderLoading() {
	text := ""
	if ui.searching.Load() > 0 {
		text = "[yellow::b]searching…[::-]"
	}
	ui.playerStatus.SetText(text)
}

func (ui *Ui) fetchArtwork(uri string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return ui.catalog.GetArtwork(ctx, uri)
}

func (ui *Ui) artworkFetched(uri string, art image.Image) {
	ui.app.QueueUpdateDraw(func() {
		ui.playerPage.detailsHeader.setArtwork(uri, art)
	})
}
