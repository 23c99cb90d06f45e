// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/spezifisch/tunebar/catalog"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/mpvplayer"
	"github.com/spezifisch/tunebar/overlay"
	"github.com/spezifisch/tunebar/player"
	"github.com/spezifisch/tunebar/remote"
	tviewcommand "github.com/spezifisch/tview-command"
	"github.com/spf13/viper"
)

var osExit = os.Exit  // A variable to allow mocking os.Exit in tests
var headlessMode bool // This can be set to true during tests
var testMode bool     // This can be set to true during tests, too

const DEVELOPMENT = "development"

// Name is the program name shown in the status bar and on dbus
var Name string = "tunebar"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

type options struct {
	help        bool
	version     bool
	enableMpris bool
	overlayAddr string
	search      string
	cpuprofile  string
	memprofile  string
	configFile  string
}

func parseFlags(args []string, output io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(output)
	flags.BoolVar(&opts.help, "help", false, "Print usage")
	flags.BoolVar(&opts.enableMpris, "mpris", false, "Enable MPRIS2")
	flags.StringVar(&opts.overlayAddr, "overlay", "", "serve the websocket overlay on `addr` (overrides overlay.listen)")
	flags.StringVar(&opts.search, "search", "", "search the catalog for `query`, print the results and exit")
	flags.StringVar(&opts.cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	flags.StringVar(&opts.memprofile, "memprofile", "", "write memory profile to `file`")
	flags.StringVar(&opts.configFile, "config", "", "use config `file`")
	flags.BoolVar(&opts.version, "version", false, "print the tunebar version and exit")

	err := flags.Parse(args[1:])
	return opts, flags, err
}

func setDefaults() {
	viper.SetDefault("catalog.endpoint", catalog.DefaultEndpoint)
	viper.SetDefault("catalog.limit", catalog.DefaultLimit)
	viper.SetDefault("catalog.timeout", catalog.DefaultTimeout)
	viper.SetDefault("catalog.debounce", catalog.DefaultDebounce)
	viper.SetDefault("catalog.cache-size", catalog.DefaultCacheSize)
	viper.SetDefault("catalog.unknown-artist", catalog.DefaultUnknownArtist)
	viper.SetDefault("catalog.placeholder-artwork", catalog.DefaultPlaceholderArtwork)
	viper.SetDefault("catalog.preview-fields", catalog.DefaultPreviewFields)
	viper.SetDefault("player.volume", 1.0)
	viper.SetDefault("player.load-timeout", mpvplayer.DefaultLoadTimeout)
	viper.SetDefault("overlay.listen", "")
	viper.SetDefault("overlay.allowed-origins", []string{})
	viper.SetDefault("ui.artwork-cache-size", 16)
	viper.SetDefault("ui.commands", "tunebar.commands.toml")
}

// readConfig loads the config file. Without an explicit file a missing
// config is fine; everything has a default.
func readConfig(configFile *string) error {
	setDefaults()

	explicit := configFile != nil && *configFile != ""
	if explicit {
		// use custom config file
		viper.SetConfigFile(*configFile)
	} else {
		// lookup default dirs
		viper.SetConfigName("tunebar")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/tunebar")
		viper.AddConfigPath(".")
	}

	// read it
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("Config file error: %s\n", err)
	}

	// validate
	if viper.GetInt("catalog.limit") <= 0 {
		return fmt.Errorf("Config property catalog.limit must be positive\n")
	}
	if v := viper.GetFloat64("player.volume"); v < 0 || v > 1 {
		return fmt.Errorf("Config property player.volume must be within [0,1]\n")
	}

	return nil
}

func catalogFromConfig(logger logger.LoggerInterface) *catalog.Client {
	client := catalog.Init(logger, viper.GetInt("catalog.cache-size"))
	client.Endpoint = viper.GetString("catalog.endpoint")
	client.Limit = viper.GetInt("catalog.limit")
	client.Normalizer.UnknownArtist = viper.GetString("catalog.unknown-artist")
	client.Normalizer.PlaceholderArtwork = viper.GetString("catalog.placeholder-artwork")
	if fields := viper.GetStringSlice("catalog.preview-fields"); len(fields) > 0 {
		client.Normalizer.PreviewFields = fields
	}
	return client
}

// initCommandHandler sets up tview-command as main input handler. A nil
// config leaves the built-in keys in charge.
func initCommandHandler(logger *logger.Logger, configPath string) *tviewcommand.Config {
	tviewcommand.SetLogHandler(func(msg string) {
		logger.Print(msg)
	})

	if _, err := os.Stat(configPath); err != nil {
		logger.Printf("no command-shortcut config at %s, using built-in keys", configPath)
		return nil
	}

	// Load the configuration file
	config, err := tviewcommand.LoadConfig(configPath)
	if err != nil || config == nil {
		logger.PrintError("Failed to load command-shortcut config", err)
		return nil
	}
	logger.Printf("loaded command-shortcut config from %s", configPath)
	return config
}

// runSearch queries the catalog once and prints the normalized results.
func runSearch(client *catalog.Client, query string, timeout time.Duration, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tracks, err := client.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrSearchFailed, err)
	}
	if len(tracks) == 0 {
		fmt.Fprintln(out, "No songs found")
		return nil
	}
	for _, t := range tracks {
		preview := t.PreviewURL
		if preview == "" {
			preview = "(no preview)"
		}
		fmt.Fprintf(out, "%2d. %s - %s\n    %s\n", t.Index+1, t.Title, t.Artist, preview)
	}
	return nil
}

// return codes:
// 0 - OK
// 1 - generic errors
// 2 - main config errors
func main() {
	opts, flags, err := parseFlags(os.Args, os.Stderr)
	if err != nil {
		osExit(2)
		return
	}
	if opts.help {
		fmt.Printf("USAGE: %s <args>\n", os.Args[0])
		flags.PrintDefaults()
		osExit(0)
		return
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
			Version = bi.Main.Version
		}
	}
	if opts.version {
		fmt.Printf("tunebar %s\n", Version)
		osExit(0)
		return
	}

	// cpu/memprofile code straight from https://pkg.go.dev/runtime/pprof
	if opts.cpuprofile != "" {
		f, err := os.Create(opts.cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := readConfig(&opts.configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read configuration from file '%s': %v\n", opts.configFile, err)
		osExit(2)
		return
	}

	logger := logger.Init()
	client := catalogFromConfig(logger)

	if opts.search != "" {
		if err := runSearch(client, opts.search, viper.GetDuration("catalog.timeout"), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			osExit(1)
			return
		}
		osExit(0)
		return
	}

	if headlessMode {
		fmt.Println("Running in headless mode for testing.")
		osExit(0)
		return
	}

	keyConfig := initCommandHandler(logger, viper.GetString("ui.commands"))

	// init mpv engine
	mpv, err := mpvplayer.NewPlayer(logger)
	if err != nil {
		fmt.Println("Unable to initialize mpv. Is mpv installed?")
		osExit(1)
		return
	}
	mpv.LoadTimeout = viper.GetDuration("player.load-timeout")

	if testMode {
		fmt.Println("Running in test mode for testing.")
		mpv.Quit()
		osExit(0x23420001)
		return
	}

	ui := InitGui(client, mpv, logger, GuiConfig{
		Volume:           player.Clamp01(viper.GetFloat64("player.volume")),
		Debounce:         viper.GetDuration("catalog.debounce"),
		Timeout:          viper.GetDuration("catalog.timeout"),
		ArtworkCacheSize: viper.GetInt("ui.artwork-cache-size"),
		KeyConfig:        keyConfig,
	})

	// init mpris2 player control (linux only but fails gracefully on other systems)
	if opts.enableMpris {
		mprisPlayer, err := remote.RegisterMprisPlayer(ui.jukebox, logger)
		if err != nil {
			fmt.Printf("Unable to register MPRIS with DBUS: %s\n", err)
			fmt.Println("Try running without MPRIS")
			osExit(1)
			return
		}
		defer mprisPlayer.Close()
		ui.jukebox.Broadcaster().RegisterTrackSurface("mpris", mprisPlayer)
		ui.jukebox.Broadcaster().AddTransportSurface(mprisPlayer)
	}

	overlayAddr := viper.GetString("overlay.listen")
	if opts.overlayAddr != "" {
		overlayAddr = opts.overlayAddr
	}
	if overlayAddr != "" {
		overlayServer := overlay.NewServer(viper.GetStringSlice("overlay.allowed-origins"), logger)
		if err := overlayServer.Start(overlayAddr); err != nil {
			fmt.Printf("Unable to start the overlay on %s: %s\n", overlayAddr, err)
			osExit(1)
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := overlayServer.Close(ctx); err != nil {
				logger.PrintError("overlay Close", err)
			}
		}()
		ui.jukebox.Broadcaster().RegisterTrackSurface("overlay", overlayServer)
		ui.jukebox.Broadcaster().AddTransportSurface(overlayServer)
	}

	// run main loop
	if err := ui.Run(); err != nil {
		panic(err)
	}

	if opts.memprofile != "" {
		f, err := os.Create(opts.memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		runtime.GC()    // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
