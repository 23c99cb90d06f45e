// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package display

import "github.com/spezifisch/tunebar/catalog"

// Canonical track surface names.
const (
	SurfacePlayerBar     = "player-bar"
	SurfaceSidebar       = "sidebar"
	SurfaceDetailsHeader = "details-header"
	SurfaceDetailsAbout  = "details-about"
	SurfaceMenuBar       = "menu-bar"
)

// TrackView is what a surface needs to show the current song.
type TrackView struct {
	Title      string
	Artist     string
	ArtworkURL string
}

func ViewOf(track catalog.Track) TrackView {
	return TrackView{
		Title:      track.Title,
		Artist:     track.Artist,
		ArtworkURL: track.ArtworkURL,
	}
}

type TrackSurface interface {
	ShowTrack(view TrackView)
}

type TransportSurface interface {
	SetPlaying(playing bool)
	// percent is in [0,100]; current is the formatted position
	SetProgress(percent float64, current string)
	SetDuration(label string)
	// percent is in [0,100]
	SetVolume(percent float64, muted bool)
}

type ResultsPanel interface {
	ShowSearching(query string)
	ShowResults(tracks []catalog.Track)
	ShowNotice(notice Notice)
	ClearResults()
	ClearQuery()
	HideResults()
}

// SeekState reports whether the user is dragging the seek bar.
type SeekState interface {
	IsSeeking() bool
}

type Notice int

const (
	NoticeNoResults Notice = iota
	NoticeConnectionError
)

func (n Notice) String() string {
	switch n {
	case NoticeNoResults:
		return "No songs found"
	case NoticeConnectionError:
		return "Connection Error."
	}
	return "Unknown notice"
}
