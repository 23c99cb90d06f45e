// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"github.com/spezifisch/tunebar/player"
	"github.com/supersonic-app/go-mpv"
)

// EventLoop translates mpv engine events into player events. It returns
// after Quit.
func (p *Player) EventLoop() {
	if err := p.instance.ObserveProperty(0, "playback-time", mpv.FORMAT_DOUBLE); err != nil {
		p.logger.PrintError("Observe1", err)
	}
	if err := p.instance.ObserveProperty(0, "duration", mpv.FORMAT_DOUBLE); err != nil {
		p.logger.PrintError("Observe2", err)
	}

	for evt := range p.mpvEvents {
		if evt == nil {
			continue
		}

		switch evt.Event_Id {
		case mpv.EVENT_PROPERTY_CHANGE:
			p.handlePropertyChange()

		case mpv.EVENT_START_FILE:
			p.mu.Lock()
			p.replaceInProgress = false
			p.mu.Unlock()

		case mpv.EVENT_FILE_LOADED:
			p.mu.Lock()
			p.fileLoaded = true
			p.resolveLoadLocked(nil)
			p.mu.Unlock()

		case mpv.EVENT_END_FILE:
			p.handleEndFile()

		case mpv.EVENT_IDLE, mpv.EVENT_NONE:
			continue

		default:
			p.logger.Printf("mpv.EventLoop: unhandled event id %v", evt.Event_Id)
		}
	}
}

func (p *Player) handlePropertyChange() {
	position, err := p.getPropertyFloat64("playback-time")
	if err != nil {
		// nothing loaded
		return
	}
	duration, err := p.getPropertyFloat64("duration")
	if err != nil {
		duration = 0
	}

	p.mu.Lock()
	announce := duration > 0 && !p.durationKnown
	if announce {
		p.durationKnown = true
	}
	p.mu.Unlock()

	progress := player.Progress{Position: position, Duration: duration}
	if announce {
		p.sendEvent(player.EventMetadata, progress)
	}
	p.sendEvent(player.EventTimeUpdate, progress)
}

func (p *Player) handleEndFile() {
	p.mu.Lock()
	if p.replaceInProgress {
		// we don't want to report anything while replacing the current track
		p.replaceInProgress = false
		p.mu.Unlock()
		return
	}
	if p.pendingLoad != nil {
		// the file ended before it was ever loaded
		p.resolveLoadLocked(ErrLoadFailed)
		p.mu.Unlock()
		return
	}
	wasLoaded := p.fileLoaded
	p.fileLoaded = false
	p.loadedSource = ""
	p.mu.Unlock()

	if wasLoaded {
		p.sendEvent(player.EventEnded, nil)
	}
}

func (p *Player) resolveLoadLocked(err error) {
	if p.pendingLoad == nil {
		return
	}
	p.pendingLoad <- err
	p.pendingLoad = nil
}

func (p *Player) sendEvent(typ player.EventType, data interface{}) {
	p.mu.Lock()
	consumer := p.consumer
	p.mu.Unlock()

	if consumer != nil {
		consumer.SendEvent(player.Event{
			Type: typ,
			Data: data,
		})
	}
}
