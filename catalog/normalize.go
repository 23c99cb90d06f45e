// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

import (
	"bytes"
	"errors"
	"strings"

	"github.com/buger/jsonparser"
)

const (
	DefaultUnknownArtist      = "Unknown Artist"
	DefaultUnknownTitle       = "Unknown Title"
	DefaultPlaceholderArtwork = "assets/default-artwork.png"
)

// DefaultPreviewFields are tried in order; the first non-empty value is the
// track's preview URL.
var DefaultPreviewFields = []string{"previewUrl", "preview_url", "preview", "streamUrl", "url"}

// DefaultArtworkFields go from the largest to the smallest rendition.
var DefaultArtworkFields = []string{"artworkUrl600", "artworkUrl100", "artworkUrl60", "artworkUrl30", "artwork", "image"}

var (
	titleFields  = []string{"trackName", "title", "name"}
	artistFields = []string{"artistName", "artist"}
	resultKeys   = []string{"results", "tracks", "data"}
)

var errMalformed = errors.New("malformed catalog response")

// Normalizer maps raw catalog entries of varying shape onto Track.
type Normalizer struct {
	UnknownArtist      string
	UnknownTitle       string
	PlaceholderArtwork string
	PreviewFields      []string
	ArtworkFields      []string
}

func DefaultNormalizer() Normalizer {
	return Normalizer{
		UnknownArtist:      DefaultUnknownArtist,
		UnknownTitle:       DefaultUnknownTitle,
		PlaceholderArtwork: DefaultPlaceholderArtwork,
		PreviewFields:      DefaultPreviewFields,
		ArtworkFields:      DefaultArtworkFields,
	}
}

// Normalize parses a search response body. It accepts either an object
// carrying the entries under one of the known result keys, or a bare array.
// Entries that aren't objects are skipped; indices stay contiguous.
func (n Normalizer) Normalize(body []byte) ([]Track, error) {
	list, err := resultList(body)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0)
	_, err = jsonparser.ArrayEach(list, func(entry []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		tracks = append(tracks, n.track(len(tracks), entry))
	})
	if err != nil {
		return nil, errMalformed
	}
	return tracks, nil
}

func resultList(body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errMalformed
	}
	if body[0] == '[' {
		return body, nil
	}

	for _, key := range resultKeys {
		value, dataType, _, err := jsonparser.Get(body, key)
		if err == nil && dataType == jsonparser.Array {
			return value, nil
		}
	}

	// a complete object without results is a valid, empty answer
	if _, dataType, _, err := jsonparser.Get(body); err == nil && dataType == jsonparser.Object {
		return []byte("[]"), nil
	}
	return nil, errMalformed
}

func (n Normalizer) track(index int, entry []byte) Track {
	title := firstString(entry, titleFields)
	if title == "" {
		title = n.UnknownTitle
	}

	artist := artistOf(entry)
	if artist == "" {
		artist = n.UnknownArtist
	}

	artwork := firstString(entry, n.ArtworkFields)
	if artwork == "" {
		artwork = n.PlaceholderArtwork
	} else {
		artwork = strings.Replace(artwork, "100x100bb", "600x600bb", 1)
	}

	return Track{
		Index:      index,
		Title:      title,
		Artist:     artist,
		ArtworkURL: artwork,
		PreviewURL: firstString(entry, n.PreviewFields),
	}
}

func firstString(entry []byte, keys []string) string {
	for _, key := range keys {
		value, dataType, _, err := jsonparser.Get(entry, key)
		if err != nil || dataType != jsonparser.String {
			continue
		}
		if s := parseString(value); s != "" {
			return s
		}
	}
	return ""
}

func parseString(value []byte) string {
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// artistOf handles "artistName": "x", "artist": {"name": "x"} and
// "artists": ["x", {"name": "y"}].
func artistOf(entry []byte) string {
	if artist := firstString(entry, artistFields); artist != "" {
		return artist
	}
	if name, err := jsonparser.GetString(entry, "artist", "name"); err == nil && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}

	names := make([]string, 0)
	_, _ = jsonparser.ArrayEach(entry, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		switch dataType {
		case jsonparser.String:
			if s := parseString(value); s != "" {
				names = append(names, s)
			}
		case jsonparser.Object:
			if s, err := jsonparser.GetString(value, "name"); err == nil && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
	}, "artists")
	return strings.Join(names, ", ")
}
