package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockExit(t *testing.T, called *bool) {
	osExit = func(code int) {
		*called = true

		if code != 0 {
			// Capture and print the stack trace
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := string(stackBuf[:stackSize])

			t.Fatalf("Unexpected exit with code: %d\nStack trace:\n%s\n", code, stackTrace)
		}
	}
	headlessMode = true
	testMode = true

	t.Cleanup(func() {
		osExit = os.Exit
		headlessMode = false
		testMode = false
	})
}

func TestMainWithoutTUI(t *testing.T) {
	exitCalled := false
	mockExit(t, &exitCalled)

	os.Args = []string{"cmd", "--config=tunebar-example.toml", "--help"}

	main()

	if !exitCalled {
		t.Fatalf("osExit was not called")
	}
}

func TestMainHeadless(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	exitCalled := false
	mockExit(t, &exitCalled)

	os.Args = []string{"cmd", "--config=" + writeConfig(t, "")}

	main()

	assert.True(t, exitCalled)
}

func TestParseFlags(t *testing.T) {
	var out bytes.Buffer
	opts, _, err := parseFlags([]string{"cmd", "--mpris", "--overlay=:7070", "--search", "daft punk"}, &out)
	require.NoError(t, err)
	assert.True(t, opts.enableMpris)
	assert.Equal(t, ":7070", opts.overlayAddr)
	assert.Equal(t, "daft punk", opts.search)

	_, _, err = parseFlags([]string{"cmd", "--bogus"}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "bogus")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tunebar.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T)
	}{
		{
			name:    "defaults",
			content: "",
			check: func(t *testing.T) {
				assert.Equal(t, catalog.DefaultEndpoint, viper.GetString("catalog.endpoint"))
				assert.Equal(t, catalog.DefaultLimit, viper.GetInt("catalog.limit"))
				assert.Equal(t, catalog.DefaultDebounce, viper.GetDuration("catalog.debounce"))
				assert.Equal(t, 1.0, viper.GetFloat64("player.volume"))
				assert.Empty(t, viper.GetString("overlay.listen"))
			},
		},
		{
			name: "overrides",
			content: `[catalog]
endpoint = "http://localhost:9999/search"
limit = 5
debounce = "250ms"

[overlay]
listen = "127.0.0.1:7070"
allowed-origins = ["https://example.com"]
`,
			check: func(t *testing.T) {
				assert.Equal(t, "http://localhost:9999/search", viper.GetString("catalog.endpoint"))
				assert.Equal(t, 5, viper.GetInt("catalog.limit"))
				assert.Equal(t, 250*time.Millisecond, viper.GetDuration("catalog.debounce"))
				assert.Equal(t, "127.0.0.1:7070", viper.GetString("overlay.listen"))
				assert.Equal(t, []string{"https://example.com"}, viper.GetStringSlice("overlay.allowed-origins"))
			},
		},
		{name: "bad limit", content: "[catalog]\nlimit = 0\n", wantErr: true},
		{name: "bad volume", content: "[player]\nvolume = 1.5\n", wantErr: true},
		{name: "broken toml", content: "[catalog\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			path := writeConfig(t, tt.content)
			err := readConfig(&path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t)
		})
	}
}

func TestReadConfigMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "nope.toml")
	assert.Error(t, readConfig(&path))
}

func TestRunSearch(t *testing.T) {
	body := `{"resultCount":2,"results":[
		{"trackName":"One More Time","artistName":"Daft Punk","previewUrl":"http://x/1.m4a"},
		{"trackName":"Aerodynamic","artistName":"Daft Punk"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("term") {
		case "empty":
			_, _ = w.Write([]byte(`{"resultCount":0,"results":[]}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(body))
		}
	}))
	defer server.Close()

	client := catalog.Init(logger.Init(), 4)
	client.Endpoint = server.URL

	var out bytes.Buffer
	require.NoError(t, runSearch(client, "daft punk", time.Second, &out))
	assert.Contains(t, out.String(), " 1. One More Time - Daft Punk")
	assert.Contains(t, out.String(), "http://x/1.m4a")
	assert.Contains(t, out.String(), "(no preview)")

	out.Reset()
	require.NoError(t, runSearch(client, "empty", time.Second, &out))
	assert.Equal(t, "No songs found\n", out.String())

	err := runSearch(client, "broken", time.Second, &out)
	assert.ErrorIs(t, err, catalog.ErrSearchFailed)
}
