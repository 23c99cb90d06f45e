// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/logger"
)

var (
	ErrPlaybackRejected = errors.New("playback rejected")
	ErrUnplayableTrack  = errors.New("track has no playable preview")
	ErrNothingLoaded    = errors.New("no track loaded")
)

var _ EventConsumer = (*Controller)(nil)

// Controller drives a Primitive and keeps State in line with it. Every load
// or resume takes a generation token; outcomes of superseded attempts are
// ignored.
type Controller struct {
	primitive Primitive
	state     *State
	logger    logger.LoggerInterface

	// loadMu keeps the generation bump and SetSource of one load together.
	loadMu sync.Mutex

	mu          sync.Mutex
	generation  uint64
	track       catalog.Track
	loaded      bool
	subscribers []func(Event)
}

func NewController(primitive Primitive, volume float64, logger logger.LoggerInterface) *Controller {
	c := &Controller{
		primitive: primitive,
		state:     NewState(volume),
		logger:    logger,
	}
	primitive.RegisterEventConsumer(c)
	if err := primitive.SetVolume(c.state.Volume()); err != nil {
		logger.PrintError("player.NewController", err)
	}
	return c
}

func (c *Controller) State() *State {
	return c.state
}

// Subscribe registers a callback for every relayed event. Callbacks run on
// whatever goroutine produced the event.
func (c *Controller) Subscribe(cb func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, cb)
}

// SendEvent relays an event from the primitive to the subscribers.
func (c *Controller) SendEvent(event Event) {
	if event.Type == EventEnded {
		c.state.setPlaying(false)
	}
	c.relay(event)
}

func (c *Controller) relay(event Event) {
	c.mu.Lock()
	subscribers := make([]func(Event), len(c.subscribers))
	copy(subscribers, c.subscribers)
	c.mu.Unlock()

	for _, cb := range subscribers {
		cb(event)
	}
}

// CurrentTrack returns the last loaded track.
func (c *Controller) CurrentTrack() (catalog.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.track, c.loaded
}

// Load switches the primitive to track and starts playback in the
// background. The outcome arrives as EventPlaying or EventPlaybackFailed.
func (c *Controller) Load(track catalog.Track) error {
	if !track.Playable() {
		err := fmt.Errorf("load %s: %w", track, ErrUnplayableTrack)
		c.logger.PrintError("player.Load", err)
		return err
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.track = track
	c.loaded = true
	c.mu.Unlock()

	c.state.setPlaying(false)
	if err := c.primitive.SetSource(track.PreviewURL); err != nil {
		c.reject(gen, err)
		return nil
	}
	go c.play(gen)
	return nil
}

// TogglePlayPause resumes a paused primitive or pauses a playing one.
func (c *Controller) TogglePlayPause() error {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return ErrNothingLoaded
	}

	if c.primitive.IsPaused() {
		c.generation++
		gen := c.generation
		c.mu.Unlock()
		go c.play(gen)
		return nil
	}

	// a pending start must not flip the state back to playing after this pause
	c.generation++
	track := c.track
	c.mu.Unlock()

	if err := c.primitive.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	c.state.setPlaying(false)
	c.relay(Event{Type: EventPaused, Data: track})
	return nil
}

func (c *Controller) play(gen uint64) {
	err := c.primitive.Play()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Printf("player: ignoring outcome of superseded start (%v)", err)
		return
	}
	track := c.track
	c.state.setPlaying(err == nil)
	c.mu.Unlock()

	if err != nil {
		c.reject(gen, err)
		return
	}
	c.relay(Event{Type: EventPlaying, Data: track})
}

func (c *Controller) reject(gen uint64, cause error) {
	c.mu.Lock()
	current := gen == c.generation
	c.mu.Unlock()
	if !current {
		return
	}

	err := fmt.Errorf("%w: %w", ErrPlaybackRejected, cause)
	c.state.setPlaying(false)
	c.logger.PrintError("player.Play", err)
	c.relay(Event{Type: EventPlaybackFailed, Data: err})
}

// SeekTo jumps to a fraction of the track. Nothing happens while the
// duration is unknown.
func (c *Controller) SeekTo(fraction float64) error {
	duration := c.primitive.Duration()
	if !KnownDuration(duration) {
		return nil
	}
	return c.primitive.SetPosition(Clamp01(fraction) * duration)
}

// Progress reads the primitive's current position and duration.
func (c *Controller) Progress() Progress {
	return Progress{Position: c.primitive.Position(), Duration: c.primitive.Duration()}
}

// SetVolume clamps volume to [0,1] and applies it.
func (c *Controller) SetVolume(volume float64) error {
	return c.primitive.SetVolume(c.state.setVolume(volume))
}

func (c *Controller) Volume() float64 {
	return c.state.Volume()
}

func (c *Controller) Muted() bool {
	return c.state.Muted()
}

func (c *Controller) Mute() error {
	if c.state.Muted() {
		return nil
	}
	return c.SetVolume(0)
}

func (c *Controller) Unmute() error {
	if !c.state.Muted() {
		return nil
	}
	return c.SetVolume(c.state.unmuteVolume())
}

func (c *Controller) ToggleMute() error {
	if c.state.Muted() {
		return c.Unmute()
	}
	return c.Mute()
}

func (c *Controller) IsPlaying() bool {
	return c.state.IsPlaying()
}

func (c *Controller) IsSeeking() bool {
	return c.state.IsSeeking()
}

func (c *Controller) SetSeeking(seeking bool) {
	c.state.SetSeeking(seeking)
}

// Quit releases the primitive if it holds resources.
func (c *Controller) Quit() {
	if q, ok := c.primitive.(Quitter); ok {
		q.Quit()
	}
}
