// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

// Package displaytest provides recording surfaces for tests.
package displaytest

import (
	"sync"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/display"
)

type TrackSurface struct {
	mu    sync.Mutex
	Views []display.TrackView
}

func (s *TrackSurface) ShowTrack(view display.TrackView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Views = append(s.Views, view)
}

// Last returns the most recent view and whether there was one.
func (s *TrackSurface) Last() (display.TrackView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Views) == 0 {
		return display.TrackView{}, false
	}
	return s.Views[len(s.Views)-1], true
}

type Progress struct {
	Percent float64
	Label   string
}

type TransportSurface struct {
	mu            sync.Mutex
	Playing       []bool
	Progress      []Progress
	Durations     []string
	Volume        float64
	Muted         bool
	VolumeUpdates int
}

func (s *TransportSurface) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Playing = append(s.Playing, playing)
}

func (s *TransportSurface) SetProgress(percent float64, current string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Progress = append(s.Progress, Progress{Percent: percent, Label: current})
}

func (s *TransportSurface) SetDuration(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Durations = append(s.Durations, label)
}

func (s *TransportSurface) SetVolume(percent float64, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Volume = percent
	s.Muted = muted
	s.VolumeUpdates++
}

func (s *TransportSurface) LastProgress() (Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Progress) == 0 {
		return Progress{}, false
	}
	return s.Progress[len(s.Progress)-1], true
}

func (s *TransportSurface) LastPlaying() (playing, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Playing) == 0 {
		return false, false
	}
	return s.Playing[len(s.Playing)-1], true
}

func (s *TransportSurface) ProgressCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Progress)
}

func (s *TransportSurface) LastDuration() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Durations) == 0 {
		return ""
	}
	return s.Durations[len(s.Durations)-1]
}

type ResultsPanel struct {
	mu        sync.Mutex
	Searching []string
	Results   [][]catalog.Track
	Notices   []display.Notice
	Cleared   int
	Queries   int
	Hidden    int
}

func (p *ResultsPanel) ShowSearching(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Searching = append(p.Searching, query)
}

func (p *ResultsPanel) ShowResults(tracks []catalog.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Results = append(p.Results, tracks)
}

func (p *ResultsPanel) ShowNotice(notice display.Notice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Notices = append(p.Notices, notice)
}

func (p *ResultsPanel) ClearResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Cleared++
}

func (p *ResultsPanel) ClearQuery() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Queries++
}

func (p *ResultsPanel) HideResults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Hidden++
}

// Snapshot returns copies of the recorded notices and result lists.
func (p *ResultsPanel) Snapshot() ([]display.Notice, [][]catalog.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]display.Notice(nil), p.Notices...), append([][]catalog.Track(nil), p.Results...)
}

// SeekFlag is a settable display.SeekState.
type SeekFlag struct {
	mu      sync.Mutex
	seeking bool
}

func (f *SeekFlag) IsSeeking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seeking
}

func (f *SeekFlag) Set(seeking bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeking = seeking
}
