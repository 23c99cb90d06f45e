// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

import (
	"math"
	"sync"
)

// DefaultUnmuteVolume is restored by Unmute when no pre-mute volume is known.
const DefaultUnmuteVolume = 0.5

// State is the transport state shared between the controller, the input
// handlers and the renderers. The current track index is owned by the
// playlist store, not by State.
type State struct {
	mu      sync.RWMutex
	playing bool
	seeking bool
	volume  float64
	preMute float64
}

// NewState starts at the given volume; pass 1 for full volume.
func NewState(volume float64) *State {
	return &State{volume: Clamp01(volume)}
}

func (s *State) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

func (s *State) setPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

// IsSeeking is true while the user drags the seek control.
func (s *State) IsSeeking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeking
}

func (s *State) SetSeeking(seeking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeking = seeking
}

func (s *State) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Muted is derived from the volume; there is no separate flag.
func (s *State) Muted() bool {
	return s.Volume() == 0
}

// setVolume stores a clamped volume. Dropping to zero remembers the previous
// level for Unmute.
func (s *State) setVolume(volume float64) float64 {
	volume = Clamp01(volume)
	s.mu.Lock()
	defer s.mu.Unlock()
	if volume == 0 && s.volume > 0 {
		s.preMute = s.volume
	}
	s.volume = volume
	return volume
}

func (s *State) unmuteVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.preMute > 0 {
		return s.preMute
	}
	return DefaultUnmuteVolume
}

// Clamp01 limits v to [0,1]; NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// KnownDuration reports whether d is a usable track length.
func KnownDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}
