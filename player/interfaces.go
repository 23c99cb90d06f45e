// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package player

type EventType int

const (
	// playback position moved, data: Progress
	EventTimeUpdate EventType = iota
	// duration became known, data: Progress
	EventMetadata
	// track finished on its own, data: nil
	EventEnded
	// playback started or resumed, data: catalog.Track
	EventPlaying
	// playback paused, data: catalog.Track
	EventPaused
	// the primitive refused to play, data: error (wraps ErrPlaybackRejected)
	EventPlaybackFailed
)

func (t EventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "time-update"
	case EventMetadata:
		return "metadata"
	case EventEnded:
		return "ended"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventPlaybackFailed:
		return "playback-failed"
	}
	return "unknown"
}

type Event struct {
	Type EventType
	Data interface{}
}

// Progress is a position report in seconds. Duration is zero while unknown.
type Progress struct {
	Position float64
	Duration float64
}

type EventConsumer interface {
	// receives events going from a playback backend towards the controller
	SendEvent(event Event)
}

// Primitive is the media backend doing the actual decoding and output.
// Play may block until playback started; it returns an error when the backend
// refuses to play the current source.
type Primitive interface {
	SetSource(uri string) error
	Play() error
	Pause() error
	IsPaused() bool
	Position() float64
	Duration() float64
	SetPosition(seconds float64) error
	SetVolume(volume float64) error
	RegisterEventConsumer(consumer EventConsumer)
}

// Quitter is implemented by primitives holding resources that need releasing.
type Quitter interface {
	Quit()
}
