// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package interaction

import "github.com/spezifisch/tunebar/logger"

type VolumeSlider struct {
	control  VolumeControl
	renderer VolumeRenderer
	logger   logger.LoggerInterface
}

func NewVolumeSlider(control VolumeControl, renderer VolumeRenderer, logger logger.LoggerInterface) *VolumeSlider {
	return &VolumeSlider{
		control:  control,
		renderer: renderer,
		logger:   logger,
	}
}

// Drag sets the volume to value and renders the clamped result.
func (v *VolumeSlider) Drag(value float64) {
	if err := v.control.SetVolume(value); err != nil {
		v.logger.PrintError("VolumeSlider", err)
	}
	v.renderer.RenderVolume(v.control.Volume())
}

func (v *VolumeSlider) DragAt(x, left, width int) {
	if fraction, ok := Fraction(x, left, width); ok {
		v.Drag(fraction)
	}
}

func (v *VolumeSlider) Nudge(delta float64) {
	v.Drag(v.control.Volume() + delta)
}

func (v *VolumeSlider) ToggleMute() {
	if err := v.control.ToggleMute(); err != nil {
		v.logger.PrintError("VolumeSlider", err)
	}
	v.renderer.RenderVolume(v.control.Volume())
}
