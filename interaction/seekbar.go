// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package interaction

import (
	"sync"

	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
)

// Fraction maps x within a bar starting at left and width cells wide onto
// [0,1]. ok is false for a bar without width.
func Fraction(x, left, width int) (fraction float64, ok bool) {
	if width <= 0 {
		return 0, false
	}
	return player.Clamp01(float64(x-left) / float64(width)), true
}

// SeekBar turns clicks and drags on a progress bar into seeks. While a drag
// is in progress the seek state is set, so periodic progress updates don't
// fight with the preview.
type SeekBar struct {
	seeker   Seeker
	renderer ProgressRenderer
	logger   logger.LoggerInterface

	mu       sync.Mutex
	dragging bool
	pending  float64
}

func NewSeekBar(seeker Seeker, renderer ProgressRenderer, logger logger.LoggerInterface) *SeekBar {
	return &SeekBar{
		seeker:   seeker,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *SeekBar) Click(x, left, width int) {
	fraction, ok := Fraction(x, left, width)
	if !ok {
		return
	}
	s.seek(fraction)
}

func (s *SeekBar) Press(x, left, width int) {
	fraction, ok := Fraction(x, left, width)
	if !ok {
		return
	}

	s.mu.Lock()
	s.dragging = true
	s.pending = fraction
	s.mu.Unlock()

	s.seeker.SetSeeking(true)
	s.renderer.PreviewProgress(fraction, s.seeker.Progress().Duration)
}

func (s *SeekBar) Move(x, left, width int) {
	fraction, ok := Fraction(x, left, width)
	if !ok {
		return
	}

	s.mu.Lock()
	if !s.dragging {
		s.mu.Unlock()
		return
	}
	s.pending = fraction
	s.mu.Unlock()

	s.renderer.PreviewProgress(fraction, s.seeker.Progress().Duration)
}

// Release ends a drag with exactly one seek. A release without a press is
// ignored.
func (s *SeekBar) Release(x, left, width int) {
	s.mu.Lock()
	if !s.dragging {
		s.mu.Unlock()
		return
	}
	s.dragging = false
	fraction := s.pending
	if f, ok := Fraction(x, left, width); ok {
		fraction = f
	}
	s.mu.Unlock()

	s.seeker.SetSeeking(false)
	s.seek(fraction)
}

func (s *SeekBar) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

func (s *SeekBar) seek(fraction float64) {
	if err := s.seeker.SeekTo(fraction); err != nil {
		s.logger.PrintError("SeekBar", err)
		return
	}
	duration := s.seeker.Progress().Duration
	s.renderer.RenderProgress(fraction*duration, duration)
}
