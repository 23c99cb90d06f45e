// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
	"github.com/supersonic-app/go-mpv"
)

const DefaultLoadTimeout = 15 * time.Second

var (
	ErrNoSource    = errors.New("no source set")
	ErrLoadFailed  = errors.New("mpv could not load the file")
	ErrLoadTimeout = errors.New("timed out waiting for mpv to load the file")
	errSuperseded  = errors.New("load superseded by a newer one")
)

var _ player.Primitive = (*Player)(nil)

// Player is a player.Primitive backed by libmpv.
type Player struct {
	instance   *mpv.Mpv
	mpvEvents  chan *mpv.Event
	consumer   player.EventConsumer
	logger     logger.LoggerInterface
	quit       chan struct{}
	quitOnce   sync.Once
	engineDone chan struct{}

	LoadTimeout time.Duration

	mu                sync.Mutex
	source            string
	loadedSource      string
	pendingLoad       chan error
	replaceInProgress bool
	fileLoaded        bool
	durationKnown     bool
}

func NewPlayer(logger logger.LoggerInterface) (p *Player, err error) {
	mpvInstance := mpv.Create()

	if err = mpvInstance.SetOptionString("audio-display", "no"); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}
	if err = mpvInstance.SetOptionString("video", "no"); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}
	if err = mpvInstance.SetOptionString("idle", "yes"); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}

	if err = mpvInstance.Initialize(); err != nil {
		mpvInstance.TerminateDestroy()
		return
	}

	p = &Player{
		instance:   mpvInstance,
		mpvEvents:  make(chan *mpv.Event),
		consumer:   nil, // must be set by calling RegisterEventConsumer()
		logger:     logger,
		quit:       make(chan struct{}),
		engineDone: make(chan struct{}),

		LoadTimeout: DefaultLoadTimeout,
	}

	go p.mpvEngineEventHandler()
	return
}

func (p *Player) mpvEngineEventHandler() {
	defer close(p.engineDone)
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		evt := p.instance.WaitEvent(1)
		select {
		case p.mpvEvents <- evt:
		case <-p.quit:
			return
		}
	}
}

func (p *Player) Quit() {
	p.quitOnce.Do(func() {
		close(p.quit)
		<-p.engineDone
		close(p.mpvEvents)
		p.instance.TerminateDestroy()
	})
}

func (p *Player) RegisterEventConsumer(consumer player.EventConsumer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumer = consumer
}

// SetSource only remembers the URI; the file is loaded by the next Play.
func (p *Player) SetSource(uri string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = uri
	return nil
}

// Play loads the current source if it changed and unpauses. Loading blocks
// until mpv reports the file as loaded or failed, bounded by LoadTimeout.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.source == "" {
		p.mu.Unlock()
		return ErrNoSource
	}
	if p.source == p.loadedSource {
		p.mu.Unlock()
		return p.instance.SetProperty("pause", mpv.FORMAT_FLAG, false)
	}

	superseding := p.pendingLoad != nil
	if superseding {
		p.pendingLoad <- errSuperseded
	}
	wait := make(chan error, 1)
	p.pendingLoad = wait
	// mpv reports END_FILE for the file being replaced; that's not a natural end
	p.replaceInProgress = p.fileLoaded || superseding
	p.fileLoaded = false
	p.durationKnown = false
	p.loadedSource = p.source
	uri := p.source
	p.mu.Unlock()

	if err := p.instance.SetProperty("pause", mpv.FORMAT_FLAG, false); err != nil {
		p.logger.PrintError("mpv.Play: unpause", err)
	}
	if err := p.instance.Command([]string{"loadfile", uri}); err != nil {
		p.abandonLoad(wait)
		return err
	}

	timeout := time.NewTimer(p.LoadTimeout)
	defer timeout.Stop()
	select {
	case err := <-wait:
		if err != nil {
			p.abandonLoad(wait)
		}
		return err
	case <-timeout.C:
		p.abandonLoad(wait)
		return ErrLoadTimeout
	}
}

// abandonLoad forgets a failed load so that the next Play retries it.
func (p *Player) abandonLoad(wait chan error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pendingLoad == wait {
		p.pendingLoad = nil
		p.loadedSource = ""
	}
}

func (p *Player) Pause() error {
	return p.instance.SetProperty("pause", mpv.FORMAT_FLAG, true)
}

// IsPaused also reports true when nothing is playing because the last load
// failed or the file ended, so that the next Play retries the source.
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	loaded := p.loadedSource != "" && p.loadedSource == p.source
	pending := p.pendingLoad != nil
	p.mu.Unlock()

	paused, err := p.getPropertyBool("pause")
	if err != nil {
		return true
	}
	return pausedState(loaded, pending, p.IsSongLoaded(), paused)
}

func pausedState(loaded, pending, songLoaded, pauseFlag bool) bool {
	if !loaded {
		return true
	}
	if pending {
		return pauseFlag
	}
	return pauseFlag || !songLoaded
}

// IsSongLoaded is false while mpv sits idle without a file.
func (p *Player) IsSongLoaded() bool {
	idle, err := p.getPropertyBool("idle-active")
	return err == nil && !idle
}

func (p *Player) Position() float64 {
	position, err := p.getPropertyFloat64("playback-time")
	if err != nil {
		return 0
	}
	return position
}

func (p *Player) Duration() float64 {
	duration, err := p.getPropertyFloat64("duration")
	if err != nil {
		return 0
	}
	return duration
}

func (p *Player) SetPosition(seconds float64) error {
	return p.instance.Command([]string{"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute"})
}

// SetVolume takes [0,1] and maps it onto mpv's percent scale.
func (p *Player) SetVolume(volume float64) error {
	percentValue := int64(math.Round(player.Clamp01(volume) * 100))
	return p.instance.SetProperty("volume", mpv.FORMAT_INT64, percentValue)
}
