package mpvplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPausedState(t *testing.T) {
	tests := []struct {
		name                                string
		loaded, pending, songLoaded, paused bool
		want                                bool
	}{
		{name: "playing", loaded: true, songLoaded: true, want: false},
		{name: "paused by user", loaded: true, songLoaded: true, paused: true, want: true},
		{name: "load still pending", loaded: true, pending: true, want: false},
		// a rejected or timed out load leaves mpv idle with pause unset
		{name: "load failed", loaded: false, paused: false, want: true},
		{name: "ended and idle", loaded: true, songLoaded: false, paused: false, want: true},
		{name: "new source not loaded yet", loaded: false, songLoaded: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pausedState(tt.loaded, tt.pending, tt.songLoaded, tt.paused))
		})
	}
}
