// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package playlist

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/logger"
)

var (
	ErrOutOfRange      = errors.New("index out of range")
	ErrUnplayableTrack = errors.New("track has no playable preview")
	ErrEmptyPlaylist   = errors.New("playlist is empty")
)

const noSelection = -1

// Store holds the tracks of the last successful search and the index of the
// selected one. The track list is only ever replaced as a whole.
type Store struct {
	mu      sync.RWMutex
	tracks  []catalog.Track
	current int

	logger logger.LoggerInterface
}

func NewStore(logger logger.LoggerInterface) *Store {
	return &Store{
		tracks:  make([]catalog.Track, 0),
		current: noSelection,
		logger:  logger,
	}
}

// Replace swaps in a new playlist and drops the current selection. Indices
// are restamped so that tracks[i].Index == i.
func (s *Store) Replace(tracks []catalog.Track) {
	cpy := make([]catalog.Track, len(tracks))
	copy(cpy, tracks)
	for i := range cpy {
		cpy[i].Index = i
	}

	s.mu.Lock()
	s.tracks = cpy
	s.current = noSelection
	s.mu.Unlock()
}

// Select makes index the current track. A refused selection leaves the store
// untouched.
func (s *Store) Select(index int) (catalog.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(index)
}

func (s *Store) selectLocked(index int) (catalog.Track, error) {
	if index < 0 || index >= len(s.tracks) {
		err := fmt.Errorf("select %d of %d: %w", index, len(s.tracks), ErrOutOfRange)
		s.logger.PrintError("playlist.Select", err)
		return catalog.Track{}, err
	}
	track := s.tracks[index]
	if !track.Playable() {
		err := fmt.Errorf("select %d (%s): %w", index, track, ErrUnplayableTrack)
		s.logger.PrintError("playlist.Select", err)
		return catalog.Track{}, err
	}
	s.current = index
	return track, nil
}

// Next selects the following track, wrapping around at the end.
func (s *Store) Next() (catalog.Track, error) {
	return s.step(1)
}

// Previous selects the preceding track, wrapping around at the start.
func (s *Store) Previous() (catalog.Track, error) {
	return s.step(-1)
}

func (s *Store) step(delta int) (catalog.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tracks)
	if n == 0 {
		return catalog.Track{}, ErrEmptyPlaylist
	}
	index := (s.current + delta + n) % n
	if s.current == noSelection {
		// nothing selected: Next lands on the first, Previous on the last track
		index = 0
		if delta < 0 {
			index = n - 1
		}
	}
	return s.selectLocked(index)
}

func (s *Store) Current() (catalog.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == noSelection {
		return catalog.Track{}, false
	}
	return s.tracks[s.current], true
}

func (s *Store) CurrentIndex() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != noSelection
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks)
}

// Tracks returns a copy of the playlist.
func (s *Store) Tracks() []catalog.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cpy := make([]catalog.Track, len(s.tracks))
	copy(cpy, s.tracks)
	return cpy
}
