package catalog

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spezifisch/tunebar/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetResponse(t *testing.T) {
	testCases := []struct {
		name         string
		serverStatus int
		serverBody   string
		expectError  bool
		caller       string
	}{
		{
			name:         "Success",
			serverStatus: http.StatusOK,
			serverBody:   `{"results": []}`,
			expectError:  false,
			caller:       "TestCaller",
		},
		{
			name:         "Non-200 Status Code",
			serverStatus: http.StatusBadRequest,
			serverBody:   `{"errorMessage": "Invalid value(s) for key(s): [term]"}`,
			expectError:  true,
			caller:       "TestCaller",
		},
		{
			name:         "Server Error",
			serverStatus: http.StatusServiceUnavailable,
			serverBody:   ``,
			expectError:  true,
			caller:       "Search",
		},
		{
			name:         "Empty Caller",
			serverStatus: http.StatusOK,
			serverBody:   `{"results": []}`,
			expectError:  false,
			caller:       "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.serverStatus)
				if _, err := w.Write([]byte(tc.serverBody)); err != nil {
					t.Fatalf("failed to write server response: %v", err)
				}
			}))
			defer server.Close()

			client := &Client{}
			body, err := client.getResponse(context.Background(), tc.caller, server.URL)

			if tc.expectError {
				if err == nil {
					t.Errorf("expected an error but got none")
				} else if !containsCallerInError(err, tc.caller) {
					t.Errorf("expected error to contain caller [%s], but got: %v", tc.caller, err)
				}
			} else {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				if string(body) != tc.serverBody {
					t.Errorf("expected body %q, got %q", tc.serverBody, body)
				}
			}
		})
	}
}

// Helper function to check if the error contains the caller
func containsCallerInError(err error, caller string) bool {
	return err != nil && (caller == "" || strings.Contains(err.Error(), "["+caller+"]"))
}

func newCatalogServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "music", r.URL.Query().Get("media"))
		assert.Equal(t, "song", r.URL.Query().Get("entity"))
		assert.Equal(t, "15", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearch(t *testing.T) {
	var hits atomic.Int32
	var term atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		term.Store(r.URL.Query().Get("term"))
		_, _ = w.Write([]byte(`{"resultCount":1,"results":[{"trackName":"Hey Jude","artistName":"The Beatles","previewUrl":"https://p/1.m4a"}]}`))
	}))
	defer server.Close()

	client := Init(logger.Init(), DefaultCacheSize)
	client.Endpoint = server.URL

	tracks, err := client.Search(context.Background(), "hey jude")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "hey jude", term.Load())
	assert.Equal(t, "Hey Jude", tracks[0].Title)
	assert.Equal(t, "The Beatles", tracks[0].Artist)

	t.Run("second search is served from the cache", func(t *testing.T) {
		again, err := client.Search(context.Background(), "hey jude")
		require.NoError(t, err)
		assert.Equal(t, tracks, again)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		tracks[0].Title = "mutated"
		again, err := client.Search(context.Background(), "hey jude")
		require.NoError(t, err)
		assert.Equal(t, "Hey Jude", again[0].Title)
	})

	t.Run("clear cache forces a new request", func(t *testing.T) {
		client.ClearCache()
		_, err := client.Search(context.Background(), "hey jude")
		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
	})
}

func TestSearchQueryParameters(t *testing.T) {
	var hits atomic.Int32
	server := newCatalogServer(t, `{"results":[]}`, &hits)

	client := Init(logger.Init(), 0)
	client.Endpoint = server.URL
	tracks, err := client.Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, tracks)

	// caching disabled
	_, err = client.Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestSearchMalformedBody(t *testing.T) {
	var hits atomic.Int32
	server := newCatalogServer(t, `{"results": [`, &hits)

	client := Init(logger.Init(), DefaultCacheSize)
	client.Endpoint = server.URL
	_, err := client.Search(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, containsCallerInError(err, "Search"))
}

func TestSearchHonoursContext(t *testing.T) {
	var hits atomic.Int32
	server := newCatalogServer(t, `{"results":[]}`, &hits)

	client := Init(logger.Init(), DefaultCacheSize)
	client.Endpoint = server.URL
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Search(ctx, "late")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetArtwork(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	client := Init(logger.Init(), DefaultCacheSize)
	art, err := client.GetArtwork(context.Background(), server.URL+"/art.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), art.Bounds())

	_, err = client.GetArtwork(context.Background(), DefaultPlaceholderArtwork)
	assert.Error(t, err)
}
