package playlist

import (
	"fmt"
	"testing"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTracks(n int) []catalog.Track {
	tracks := make([]catalog.Track, n)
	for i := range tracks {
		tracks[i] = catalog.Track{
			Index:      i,
			Title:      fmt.Sprintf("Song %d", i),
			Artist:     "Artist",
			PreviewURL: fmt.Sprintf("https://preview/%d.m4a", i),
		}
	}
	return tracks
}

func TestNewStore(t *testing.T) {
	s := NewStore(logger.Init())
	assert.Equal(t, 0, s.Len())
	_, ok := s.CurrentIndex()
	assert.False(t, ok)
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	s := NewStore(logger.Init())
	s.Replace(makeTracks(3))
	_, err := s.Select(2)
	require.NoError(t, err)

	// indices get restamped and the selection is dropped
	replacement := []catalog.Track{{Index: 7, Title: "a", PreviewURL: "a"}, {Index: 7, Title: "b", PreviewURL: "b"}}
	s.Replace(replacement)
	_, ok := s.CurrentIndex()
	assert.False(t, ok)
	for i, track := range s.Tracks() {
		assert.Equal(t, i, track.Index)
	}

	t.Run("caller's slice is not aliased", func(t *testing.T) {
		replacement[0].Title = "changed"
		assert.Equal(t, "a", s.Tracks()[0].Title)
	})
}

func TestSelect(t *testing.T) {
	tracks := makeTracks(3)
	tracks[1].PreviewURL = ""

	testCases := []struct {
		name  string
		index int
		err   error
	}{
		{"first", 0, nil},
		{"last", 2, nil},
		{"negative", -1, ErrOutOfRange},
		{"past the end", 3, ErrOutOfRange},
		{"unplayable", 1, ErrUnplayableTrack},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(logger.Init())
			s.Replace(tracks)
			_, err := s.Select(0)
			require.NoError(t, err)

			track, err := s.Select(tc.index)
			current, _ := s.CurrentIndex()
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Equal(t, 0, current, "refused selection leaves state unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.index, track.Index)
			assert.Equal(t, tc.index, current)
		})
	}
}

func TestWrapAround(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for start := 0; start < n; start++ {
			s := NewStore(logger.Init())
			s.Replace(makeTracks(n))
			_, err := s.Select(start)
			require.NoError(t, err)

			for i := 0; i < n; i++ {
				_, err := s.Next()
				require.NoError(t, err)
			}
			current, _ := s.CurrentIndex()
			assert.Equal(t, start, current, "next x%d from %d", n, start)

			for i := 0; i < n; i++ {
				_, err := s.Previous()
				require.NoError(t, err)
			}
			current, _ = s.CurrentIndex()
			assert.Equal(t, start, current, "previous x%d from %d", n, start)
		}
	}
}

func TestStepEdges(t *testing.T) {
	s := NewStore(logger.Init())
	_, err := s.Next()
	assert.ErrorIs(t, err, ErrEmptyPlaylist)
	_, err = s.Previous()
	assert.ErrorIs(t, err, ErrEmptyPlaylist)

	s.Replace(makeTracks(4))
	track, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, track.Index, "next without selection starts at the top")

	s.Replace(makeTracks(4))
	track, err = s.Previous()
	require.NoError(t, err)
	assert.Equal(t, 3, track.Index, "previous without selection starts at the bottom")

	track, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, track.Index)
}

func TestStepOntoUnplayableTrack(t *testing.T) {
	tracks := makeTracks(3)
	tracks[1].PreviewURL = ""
	s := NewStore(logger.Init())
	s.Replace(tracks)
	_, err := s.Select(0)
	require.NoError(t, err)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrUnplayableTrack)
	current, _ := s.CurrentIndex()
	assert.Equal(t, 0, current)
}
