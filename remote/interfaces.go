// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import "github.com/spezifisch/tunebar/player"

// ControlledPlayer is what a remote control may do with the player.
type ControlledPlayer interface {
	TogglePlayPause() error
	Play() error
	Pause() error
	Next() error
	Previous() error

	// SeekTo jumps to a fraction of the current track.
	SeekTo(fraction float64) error
	Progress() player.Progress

	// SetVolume takes a value in [0,1].
	SetVolume(volume float64) error
	Volume() float64

	IsPlaying() bool
}
