// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package playertest provides an in-memory player.Primitive for tests.
package playertest

import (
	"sync"

	"github.com/spezifisch/tunebar/player"
)

// Primitive records calls and lets tests decide how Play behaves and which
// events get emitted.
type Primitive struct {
	mu       sync.Mutex
	consumer player.EventConsumer

	Source  string
	Sources []string
	Paused  bool
	Pos     float64
	Dur     float64
	Vol     float64
	Seeks   []float64
	Plays   int
	Pauses  int

	// PlayFunc, when set, decides the outcome of Play. It runs without the
	// lock held, so it may block.
	PlayFunc func(source string) error
	// SetSourceFunc runs at the start of SetSource without the lock held.
	SetSourceFunc func(uri string)
}

var _ player.Primitive = (*Primitive)(nil)

func New() *Primitive {
	return &Primitive{Paused: true}
}

func (p *Primitive) RegisterEventConsumer(consumer player.EventConsumer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumer = consumer
}

func (p *Primitive) SetSource(uri string) error {
	p.mu.Lock()
	fn := p.SetSourceFunc
	p.mu.Unlock()
	if fn != nil {
		fn(uri)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Source = uri
	p.Sources = append(p.Sources, uri)
	p.Paused = true
	p.Pos = 0
	p.Dur = 0
	return nil
}

func (p *Primitive) Play() error {
	p.mu.Lock()
	p.Plays++
	source := p.Source
	fn := p.PlayFunc
	p.mu.Unlock()

	if fn != nil {
		if err := fn(source); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Paused = false
	return nil
}

func (p *Primitive) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Pauses++
	p.Paused = true
	return nil
}

func (p *Primitive) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Paused
}

func (p *Primitive) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Pos
}

func (p *Primitive) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Dur
}

func (p *Primitive) SetPosition(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Pos = seconds
	p.Seeks = append(p.Seeks, seconds)
	return nil
}

func (p *Primitive) SetVolume(volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Vol = volume
	return nil
}

// Emit delivers an event to the registered consumer, as the real backend's
// event loop would.
func (p *Primitive) Emit(event player.Event) {
	p.mu.Lock()
	consumer := p.consumer
	p.mu.Unlock()
	if consumer != nil {
		consumer.SendEvent(event)
	}
}

// LoadMetadata makes the duration known and emits EventMetadata.
func (p *Primitive) LoadMetadata(duration float64) {
	p.mu.Lock()
	p.Dur = duration
	p.mu.Unlock()
	p.Emit(player.Event{Type: player.EventMetadata, Data: player.Progress{Duration: duration}})
}

// Tick moves the position and emits EventTimeUpdate.
func (p *Primitive) Tick(position float64) {
	p.mu.Lock()
	p.Pos = position
	dur := p.Dur
	p.mu.Unlock()
	p.Emit(player.Event{Type: player.EventTimeUpdate, Data: player.Progress{Position: position, Duration: dur}})
}

// End emits EventEnded.
func (p *Primitive) End() {
	p.Emit(player.Event{Type: player.EventEnded})
}

// Snapshot returns a copy of the recorded fields that is safe to inspect.
func (p *Primitive) Snapshot() Primitive {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Primitive{
		Source:  p.Source,
		Sources: append([]string(nil), p.Sources...),
		Paused:  p.Paused,
		Pos:     p.Pos,
		Dur:     p.Dur,
		Vol:     p.Vol,
		Seeks:   append([]float64(nil), p.Seeks...),
		Plays:   p.Plays,
		Pauses:  p.Pauses,
	}
}
