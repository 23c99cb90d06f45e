// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package display

import (
	"sort"
	"sync"

	"github.com/spezifisch/tunebar/catalog"
)

// Broadcaster pushes the current track and transport state into every
// registered surface. Any surface may be missing.
type Broadcaster struct {
	seek SeekState

	mu         sync.RWMutex
	tracks     map[string]TrackSurface
	transports []TransportSurface
	results    ResultsPanel
}

func NewBroadcaster(seek SeekState) *Broadcaster {
	return &Broadcaster{
		seek:   seek,
		tracks: make(map[string]TrackSurface),
	}
}

// RegisterTrackSurface adds or replaces the surface under name. A nil
// surface removes it.
func (b *Broadcaster) RegisterTrackSurface(name string, surface TrackSurface) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if surface == nil {
		delete(b.tracks, name)
		return
	}
	b.tracks[name] = surface
}

func (b *Broadcaster) AddTransportSurface(surface TransportSurface) {
	if surface == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transports = append(b.transports, surface)
}

func (b *Broadcaster) SetResultsPanel(panel ResultsPanel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = panel
}

// SurfaceNames lists the registered track surfaces in sorted order.
func (b *Broadcaster) SurfaceNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.tracks))
	for name := range b.tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render shows track on every track surface and closes the search results.
func (b *Broadcaster) Render(track catalog.Track) {
	view := ViewOf(track)

	b.mu.RLock()
	surfaces := make([]TrackSurface, 0, len(b.tracks))
	for _, surface := range b.tracks {
		surfaces = append(surfaces, surface)
	}
	results := b.results
	b.mu.RUnlock()

	for _, surface := range surfaces {
		surface.ShowTrack(view)
	}

	if results != nil {
		results.ClearResults()
		results.ClearQuery()
		results.HideResults()
	}
}

// RenderProgress is ignored while seeking so a drag preview isn't
// overwritten, and when the duration is not yet known.
func (b *Broadcaster) RenderProgress(current, duration float64) {
	if b.seek != nil && b.seek.IsSeeking() {
		return
	}
	if !validDuration(duration) {
		return
	}
	b.setProgress(percentOf(current, duration), FormatTime(current))
}

// PreviewProgress shows a pending seek to frac of duration.
func (b *Broadcaster) PreviewProgress(frac, duration float64) {
	if !validDuration(duration) {
		b.setProgress(percentOf(frac, 1), FormatTime(0))
		return
	}
	b.setProgress(percentOf(frac, 1), FormatTime(frac*duration))
}

func (b *Broadcaster) setProgress(percent float64, label string) {
	for _, surface := range b.transportSurfaces() {
		surface.SetProgress(percent, label)
	}
}

func (b *Broadcaster) RenderDuration(duration float64) {
	label := FormatTime(0)
	if validDuration(duration) {
		label = FormatTime(duration)
	}
	for _, surface := range b.transportSurfaces() {
		surface.SetDuration(label)
	}
}

func (b *Broadcaster) RenderVolume(volume float64) {
	percent := percentOf(volume, 1)
	for _, surface := range b.transportSurfaces() {
		surface.SetVolume(percent, percent == 0)
	}
}

func (b *Broadcaster) RenderTransportIcon(playing bool) {
	for _, surface := range b.transportSurfaces() {
		surface.SetPlaying(playing)
	}
}

func (b *Broadcaster) ShowSearching(query string) {
	if results := b.resultsPanel(); results != nil {
		results.ShowSearching(query)
	}
}

func (b *Broadcaster) ShowResults(tracks []catalog.Track) {
	if results := b.resultsPanel(); results != nil {
		results.ShowResults(tracks)
	}
}

func (b *Broadcaster) ShowNotice(notice Notice) {
	if results := b.resultsPanel(); results != nil {
		results.ShowNotice(notice)
	}
}

func (b *Broadcaster) ClearResults() {
	if results := b.resultsPanel(); results != nil {
		results.ClearResults()
	}
}

func (b *Broadcaster) HideResults() {
	if results := b.resultsPanel(); results != nil {
		results.HideResults()
	}
}

func (b *Broadcaster) transportSurfaces() []TransportSurface {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]TransportSurface(nil), b.transports...)
}

func (b *Broadcaster) resultsPanel() ResultsPanel {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.results
}
