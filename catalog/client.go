// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/spezifisch/tunebar/logger"
)

const (
	DefaultEndpoint  = "https://itunes.apple.com/search"
	DefaultLimit     = 15
	DefaultCacheSize = 32

	// responses larger than this are refused rather than parsed
	maxResponseSize = 8 << 20
)

// Client queries the remote catalog. Successful results are memoized per
// query in a small LRU-managed map.
type Client struct {
	Endpoint   string
	Limit      int
	Normalizer Normalizer
	HTTPClient *http.Client

	logger logger.LoggerInterface

	cacheMu     sync.Mutex
	resultCache map[string][]Track
	resultLRU   LRU[[]Track]
	cacheSize   int
}

func Init(logger logger.LoggerInterface, cacheSize int) *Client {
	c := Client{
		Endpoint:   DefaultEndpoint,
		Limit:      DefaultLimit,
		Normalizer: DefaultNormalizer(),
		HTTPClient: http.DefaultClient,

		logger:    logger,
		cacheSize: cacheSize,
	}
	c.ClearCache()
	return &c
}

func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.resultCache = make(map[string][]Track)
	c.resultLRU = NewLRU(c.resultCache, max(c.cacheSize, 0))
}

func (c *Client) cached(query string) ([]Track, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	tracks, ok := c.resultCache[query]
	if ok {
		c.resultLRU.Push(query)
	}
	return tracks, ok
}

func (c *Client) remember(query string, tracks []Track) {
	if c.cacheSize <= 0 {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.resultCache[query] = tracks
	c.resultLRU.Push(query)
}

func (c *Client) searchUrl(query string) string {
	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(c.Limit))

	sep := "?"
	if strings.Contains(c.Endpoint, "?") {
		sep = "&"
	}
	return c.Endpoint + sep + params.Encode()
}

// Search runs one catalog query and returns the normalized tracks. The
// returned slice is a copy; callers may keep it.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	if tracks, ok := c.cached(query); ok {
		return append([]Track(nil), tracks...), nil
	}

	body, err := c.getResponse(ctx, "Search", c.searchUrl(query))
	if err != nil {
		return nil, err
	}

	tracks, err := c.Normalizer.Normalize(body)
	if err != nil {
		return nil, fmt.Errorf("[Search] %w", err)
	}

	c.remember(query, tracks)
	if c.logger != nil {
		c.logger.Printf("catalog: %d results for %q", len(tracks), query)
	}
	return append([]Track(nil), tracks...), nil
}

// GetArtwork downloads and decodes the image behind an artwork URI.
func (c *Client) GetArtwork(ctx context.Context, uri string) (image.Image, error) {
	if uri == "" || uri == c.Normalizer.PlaceholderArtwork {
		return nil, fmt.Errorf("[GetArtwork] no remote artwork for %q", uri)
	}

	body, err := c.getResponse(ctx, "GetArtwork", uri)
	if err != nil {
		return nil, err
	}

	var art image.Image
	switch http.DetectContentType(body) {
	case "image/png":
		art, err = png.Decode(bytes.NewReader(body))
	case "image/gif":
		art, err = gif.Decode(bytes.NewReader(body))
	case "image/jpeg":
		art, err = jpeg.Decode(bytes.NewReader(body))
	default:
		art, _, err = image.Decode(bytes.NewReader(body))
	}
	if err != nil {
		return nil, fmt.Errorf("[GetArtwork] decoding %s: %w", uri, err)
	}
	return art, nil
}

func (c *Client) getResponse(ctx context.Context, caller, requestUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("[%s] building request: %w", caller, err)
	}
	req.Header.Set("Accept", "application/json, image/*")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[%s] failed to make GET request: %w", caller, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[%s] unexpected status code: %d, status: %s", caller, res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("[%s] failed to read response body: %w", caller, err)
	}
	return body, nil
}
