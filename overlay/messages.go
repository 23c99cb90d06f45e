// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package overlay

import "github.com/spezifisch/tunebar/display"

// ChangeUpdate announces a new track, or that nothing is playing when Type
// is "stop".
type ChangeUpdate struct {
	Type    string `json:"type"`              // "change" or "stop"
	Title   string `json:"title,omitempty"`   // Only used for "change"
	Artist  string `json:"artist,omitempty"`  // Only used for "change"
	Artwork string `json:"artwork,omitempty"` // Only used for "change"
}

type TransportUpdate struct {
	Type     string  `json:"type"` // always "transport"
	Playing  bool    `json:"playing"`
	Progress float64 `json:"progress"` // percent
	Position string  `json:"position"`
	Duration string  `json:"duration"`
	Volume   float64 `json:"volume"` // percent
	Muted    bool    `json:"muted"`
}

func changeFor(view *display.TrackView) ChangeUpdate {
	if view == nil {
		return ChangeUpdate{Type: "stop"}
	}
	return ChangeUpdate{
		Type:    "change",
		Title:   view.Title,
		Artist:  view.Artist,
		Artwork: view.ArtworkURL,
	}
}
