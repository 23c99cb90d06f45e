// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package interaction

import "github.com/spezifisch/tunebar/player"

type Seeker interface {
	SeekTo(fraction float64) error
	SetSeeking(seeking bool)
	Progress() player.Progress
}

type ProgressRenderer interface {
	RenderProgress(current, duration float64)
	PreviewProgress(fraction, duration float64)
}

type VolumeControl interface {
	SetVolume(volume float64) error
	Volume() float64
	ToggleMute() error
}

type VolumeRenderer interface {
	RenderVolume(volume float64)
}

type Querier interface {
	Query(text string)
}

// SearchAffordance covers the purely visual parts of the search box.
type SearchAffordance interface {
	SetHighlighted(highlighted bool)
	HideResults()
}
