// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package jukebox ties the catalog search, the playlist and the player
// together and keeps every display surface in step with them.
package jukebox

import (
	"errors"
	"sync"
	"time"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/interaction"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
	"github.com/spezifisch/tunebar/playlist"
	"github.com/spezifisch/tunebar/remote"
)

var (
	_ catalog.Presenter         = (*Jukebox)(nil)
	_ remote.ControlledPlayer   = (*Jukebox)(nil)
	_ interaction.Seeker        = (*Jukebox)(nil)
	_ interaction.VolumeControl = (*Jukebox)(nil)
	_ interaction.Querier       = (*Jukebox)(nil)
)

type Config struct {
	Backend   catalog.Backend
	Primitive player.Primitive
	Loading   catalog.LoadingIndicator
	Logger    logger.LoggerInterface

	// Volume is the initial volume in [0,1].
	Volume float64
	// Debounce and Timeout fall back to the catalog defaults when zero.
	Debounce time.Duration
	Timeout  time.Duration
}

type Jukebox struct {
	searcher    *catalog.Searcher
	store       *playlist.Store
	controller  *player.Controller
	broadcaster *display.Broadcaster
	logger      logger.LoggerInterface

	// playMu serializes track changes from the UI, dbus and auto-advance.
	playMu sync.Mutex
}

func New(cfg Config) *Jukebox {
	j := &Jukebox{
		store:      playlist.NewStore(cfg.Logger),
		controller: player.NewController(cfg.Primitive, cfg.Volume, cfg.Logger),
		logger:     cfg.Logger,
	}
	j.broadcaster = display.NewBroadcaster(j.controller)

	j.searcher = catalog.NewSearcher(cfg.Backend, j, cfg.Loading, cfg.Logger)
	if cfg.Debounce > 0 {
		j.searcher.Delay = cfg.Debounce
	}
	if cfg.Timeout > 0 {
		j.searcher.Timeout = cfg.Timeout
	}

	j.controller.Subscribe(j.onEvent)
	return j
}

func (j *Jukebox) Broadcaster() *display.Broadcaster {
	return j.broadcaster
}

func (j *Jukebox) Controller() *player.Controller {
	return j.controller
}

func (j *Jukebox) Store() *playlist.Store {
	return j.store
}

// Query feeds the search box text into the debounced searcher.
func (j *Jukebox) Query(text string) {
	j.searcher.Query(text)
}

func (j *Jukebox) CurrentIndex() (int, bool) {
	return j.store.CurrentIndex()
}

func (j *Jukebox) CurrentTrack() (catalog.Track, bool) {
	return j.store.Current()
}

func (j *Jukebox) Tracks() []catalog.Track {
	return j.store.Tracks()
}

// Close stops searching and releases the player.
func (j *Jukebox) Close() {
	j.searcher.Close()
	j.controller.Quit()
}

func (j *Jukebox) SearchStarted(query string) {
	j.broadcaster.ShowSearching(query)
}

func (j *Jukebox) SearchOK(query string, tracks []catalog.Track) {
	j.store.Replace(tracks)
	j.broadcaster.ShowResults(j.store.Tracks())
	j.logger.Printf("jukebox: %d results for %q", len(tracks), query)
}

func (j *Jukebox) SearchEmpty(query string) {
	j.broadcaster.ShowNotice(display.NoticeNoResults)
}

func (j *Jukebox) SearchFailed(query string, err error) {
	j.broadcaster.ShowNotice(display.NoticeConnectionError)
}

func (j *Jukebox) SearchCleared() {
	j.broadcaster.ClearResults()
	j.broadcaster.HideResults()
}

// Select plays the track at index. A refused selection changes nothing.
func (j *Jukebox) Select(index int) error {
	j.playMu.Lock()
	defer j.playMu.Unlock()
	return j.play(j.store.Select(index))
}

func (j *Jukebox) Next() error {
	j.playMu.Lock()
	defer j.playMu.Unlock()
	return j.play(j.store.Next())
}

func (j *Jukebox) Previous() error {
	j.playMu.Lock()
	defer j.playMu.Unlock()
	return j.play(j.store.Previous())
}

func (j *Jukebox) play(track catalog.Track, err error) error {
	if err != nil {
		return err
	}
	j.broadcaster.RenderDuration(0)
	if err = j.controller.Load(track); err != nil {
		return err
	}
	j.broadcaster.Render(track)
	return nil
}

// TogglePlayPause starts the first result when nothing was loaded yet.
func (j *Jukebox) TogglePlayPause() error {
	err := j.controller.TogglePlayPause()
	if errors.Is(err, player.ErrNothingLoaded) && j.store.Len() > 0 {
		return j.Next()
	}
	if err != nil {
		j.broadcaster.RenderTransportIcon(j.controller.IsPlaying())
	}
	return err
}

func (j *Jukebox) Play() error {
	if j.controller.IsPlaying() {
		return nil
	}
	return j.TogglePlayPause()
}

func (j *Jukebox) Pause() error {
	if !j.controller.IsPlaying() {
		return nil
	}
	return j.TogglePlayPause()
}

func (j *Jukebox) IsPlaying() bool {
	return j.controller.IsPlaying()
}

func (j *Jukebox) SeekTo(fraction float64) error {
	if err := j.controller.SeekTo(fraction); err != nil {
		return err
	}
	duration := j.controller.Progress().Duration
	j.broadcaster.RenderProgress(player.Clamp01(fraction)*duration, duration)
	return nil
}

// SeekBy moves by a fraction of the track relative to the current position.
func (j *Jukebox) SeekBy(delta float64) error {
	progress := j.controller.Progress()
	if !player.KnownDuration(progress.Duration) {
		return nil
	}
	return j.SeekTo(progress.Position/progress.Duration + delta)
}

func (j *Jukebox) Progress() player.Progress {
	return j.controller.Progress()
}

func (j *Jukebox) SetSeeking(seeking bool) {
	j.controller.SetSeeking(seeking)
}

func (j *Jukebox) SetVolume(volume float64) error {
	err := j.controller.SetVolume(volume)
	j.broadcaster.RenderVolume(j.controller.Volume())
	return err
}

func (j *Jukebox) Volume() float64 {
	return j.controller.Volume()
}

func (j *Jukebox) ToggleMute() error {
	err := j.controller.ToggleMute()
	j.broadcaster.RenderVolume(j.controller.Volume())
	return err
}

func (j *Jukebox) onEvent(event player.Event) {
	switch event.Type {
	case player.EventTimeUpdate:
		if p, ok := event.Data.(player.Progress); ok {
			j.broadcaster.RenderProgress(p.Position, p.Duration)
		}

	case player.EventMetadata:
		if p, ok := event.Data.(player.Progress); ok {
			j.broadcaster.RenderDuration(p.Duration)
		}

	case player.EventEnded:
		j.broadcaster.RenderTransportIcon(false)
		if err := j.Next(); err != nil {
			j.logger.PrintError("jukebox.Next", err)
		}

	case player.EventPlaying:
		j.broadcaster.RenderTransportIcon(true)

	case player.EventPaused, player.EventPlaybackFailed:
		j.broadcaster.RenderTransportIcon(false)
	}
}
