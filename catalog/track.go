// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

import "errors"

var (
	// ErrSearchFailed wraps every network or parse failure of a catalog query.
	ErrSearchFailed = errors.New("search failed")
	// ErrNoResults marks a well-formed response without any entries.
	ErrNoResults = errors.New("no songs found")
)

// Track is one normalized catalog entry. Index is the track's position in the
// result list it came from.
type Track struct {
	Index      int
	Title      string
	Artist     string
	ArtworkURL string
	PreviewURL string
}

// Playable reports whether the track has an audio preview to hand to the player.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

func (t Track) String() string {
	return t.Title + " - " + t.Artist
}
