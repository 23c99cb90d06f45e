// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package remote

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisName        = "org.mpris.MediaPlayer2.tunebar"
	noTrack          = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
)

var (
	_ display.TrackSurface     = (*MprisPlayer)(nil)
	_ display.TransportSurface = (*MprisPlayer)(nil)
)

// MprisPlayer exports the player on the session bus. It is also a display
// surface: track and transport changes become PropertiesChanged signals.
type MprisPlayer struct {
	dbus    *dbus.Conn
	props   *prop.Properties
	player  ControlledPlayer
	logger  logger.LoggerInterface
	methods *mprisMethods

	mu       sync.Mutex
	trackSeq int
	trackID  dbus.ObjectPath
	view     display.TrackView
}

// mprisMethods carries the org.mpris.MediaPlayer2.Player methods, kept apart
// so the surface methods don't end up on the bus.
type mprisMethods struct {
	m *MprisPlayer
}

func RegisterMprisPlayer(player ControlledPlayer, logger_ logger.LoggerInterface) (mpp *MprisPlayer, err error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return
	}

	mpp = &MprisPlayer{
		dbus:    conn,
		player:  player,
		logger:  logger_,
		trackID: noTrack,
	}
	mpp.methods = &mprisMethods{m: mpp}

	defer func() {
		if err != nil {
			conn.Close()
			mpp = nil
		}
	}()

	err = conn.Export(mpp.methods, mprisPath, mprisPlayerIface)
	if err != nil {
		return
	}

	var mprisPlayer = map[string]*prop.Prop{
		"CanControl":     {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoNext":      {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPause":       {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanPlay":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanSeek":        {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanGoPrevious":  {Value: true, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Metadata":       {Value: metadataFor(noTrack, display.TrackView{}, 0), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Volume":         {Value: player.Volume(), Writable: true, Emit: prop.EmitTrue, Callback: mpp.volumeChange},
		"PlaybackStatus": {Value: playbackStatus(false), Writable: false, Emit: prop.EmitTrue, Callback: nil},
		"Position":       {Value: int64(0), Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Rate":           {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"MinimumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"MaximumRate":    {Value: 1.0, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	var mediaPlayer = map[string]*prop.Prop{
		"CanQuit":             {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"CanRaise":            {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"HasTrackList":        {Value: false, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"Identity":            {Value: "tunebar", Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedUriSchemes": {Value: []string{"http", "https"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
		"SupportedMimeTypes":  {Value: []string{"audio/mp4", "audio/mpeg"}, Writable: false, Emit: prop.EmitFalse, Callback: nil},
	}

	mpp.props, err = prop.Export(
		conn,
		mprisPath,
		map[string]map[string]*prop.Prop{
			"org.mpris.MediaPlayer2": mediaPlayer,
			mprisPlayerIface:         mprisPlayer,
		},
	)
	if err != nil {
		return
	}

	n := &introspect.Node{
		Name: mprisPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       mprisPlayerIface,
				Methods:    introspect.Methods(mpp.methods),
				Properties: mpp.props.Introspection(mprisPlayerIface),
			},
		},
	}
	err = conn.Export(introspect.NewIntrospectable(n), mprisPath, "org.freedesktop.DBus.Introspectable")
	if err != nil {
		return
	}

	reply, err := conn.RequestName(mprisName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		err = errors.New("name already owned")
		return
	}
	return
}

func (m *MprisPlayer) Close() {
	if err := m.dbus.Close(); err != nil {
		m.logger.PrintError("mpp Close", err)
	}
}

// ShowTrack publishes new metadata with a fresh track id.
func (m *MprisPlayer) ShowTrack(view display.TrackView) {
	m.mu.Lock()
	m.trackSeq++
	m.trackID = dbus.ObjectPath(fmt.Sprintf("/org/spezifisch/tunebar/track/%d", m.trackSeq))
	m.view = view
	trackID := m.trackID
	m.mu.Unlock()

	m.setProp("Metadata", metadataFor(trackID, view, 0))
	m.setProp("Position", int64(0))
}

func (m *MprisPlayer) SetPlaying(playing bool) {
	m.setProp("PlaybackStatus", playbackStatus(playing))
}

func (m *MprisPlayer) SetProgress(_ float64, _ string) {
	m.setProp("Position", toMicros(m.player.Progress().Position))
}

// SetDuration republishes the metadata once the length is known.
func (m *MprisPlayer) SetDuration(_ string) {
	m.mu.Lock()
	trackID, view := m.trackID, m.view
	m.mu.Unlock()
	if trackID == noTrack {
		return
	}
	m.setProp("Metadata", metadataFor(trackID, view, m.player.Progress().Duration))
}

func (m *MprisPlayer) SetVolume(percent float64, _ bool) {
	m.setProp("Volume", percent/100)
}

func (m *MprisPlayer) setProp(name string, value interface{}) {
	if m.props == nil {
		return
	}
	m.props.SetMust(mprisPlayerIface, name, value)
}

func (m *MprisPlayer) currentTrackID() dbus.ObjectPath {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trackID
}

// volumeChange runs while godbus holds the property lock. Applying the
// volume renders it back onto this surface through SetMust, which takes the
// same lock, so it happens on its own goroutine.
func (m *MprisPlayer) volumeChange(c *prop.Change) *dbus.Error {
	fVol, ok := c.Value.(float64)
	if !ok {
		return prop.ErrInvalidArg
	}

	go m.applyVolume(player.Clamp01(fVol))
	return nil
}

func (m *MprisPlayer) applyVolume(volume float64) {
	if err := m.player.SetVolume(volume); err != nil {
		m.logger.PrintError("volumeChange", err)
		return
	}
	m.logger.Printf("mpris: adjust volume %f", volume)
}

func (m *mprisMethods) Stop() *dbus.Error {
	return m.Pause()
}

func (m *mprisMethods) Next() *dbus.Error {
	if err := m.m.player.Next(); err != nil {
		m.m.logger.PrintError("mpp Next", err)
	}
	return nil
}

func (m *mprisMethods) Previous() *dbus.Error {
	if err := m.m.player.Previous(); err != nil {
		m.m.logger.PrintError("mpp Previous", err)
	}
	return nil
}

// set paused
func (m *mprisMethods) Pause() *dbus.Error {
	if err := m.m.player.Pause(); err != nil {
		m.m.logger.PrintError("mpp Pause", err)
	}
	return nil
}

// set playing
func (m *mprisMethods) Play() *dbus.Error {
	if err := m.m.player.Play(); err != nil {
		m.m.logger.PrintError("mpp Play", err)
	}
	return nil
}

func (m *mprisMethods) PlayPause() *dbus.Error {
	if err := m.m.player.TogglePlayPause(); err != nil {
		m.m.logger.PrintError("mpp PlayPause", err)
	}
	return nil
}

func (m *mprisMethods) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(errors.New("OpenUri is not supported"))
}

// Seek moves by offset microseconds relative to the current position.
func (m *mprisMethods) Seek(offset int64) *dbus.Error {
	progress := m.m.player.Progress()
	fraction, ok := seekTarget(progress, progress.Position+float64(offset)/1e6)
	if !ok {
		return nil
	}
	m.m.seekTo(fraction, progress.Duration)
	return nil
}

// SetPosition is ignored unless trackID names the current track.
func (m *mprisMethods) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	if trackID != m.m.currentTrackID() {
		return nil
	}
	progress := m.m.player.Progress()
	if float64(position)/1e6 > progress.Duration {
		return nil
	}
	fraction, ok := seekTarget(progress, float64(position)/1e6)
	if !ok {
		return nil
	}
	m.m.seekTo(fraction, progress.Duration)
	return nil
}

func (m *MprisPlayer) seekTo(fraction, duration float64) {
	if err := m.player.SeekTo(fraction); err != nil {
		m.logger.PrintError("mpp Seek", err)
		return
	}
	position := toMicros(fraction * duration)
	m.setProp("Position", position)
	if err := m.dbus.Emit(mprisPath, mprisPlayerIface+".Seeked", position); err != nil {
		m.logger.PrintError("mpris: Emit Seeked", err)
	}
}

// seekTarget converts an absolute position into a fraction of the track.
// Positions before the start clamp to 0.
func seekTarget(progress player.Progress, position float64) (float64, bool) {
	if !player.KnownDuration(progress.Duration) {
		return 0, false
	}
	return player.Clamp01(position / progress.Duration), true
}

func metadataFor(trackID dbus.ObjectPath, view display.TrackView, duration float64) map[string]dbus.Variant {
	artists := []string{}
	if view.Artist != "" {
		artists = append(artists, view.Artist)
	}
	metadata := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackID),
		"xesam:title":   dbus.MakeVariant(view.Title),
		"xesam:artist":  dbus.MakeVariant(artists),
	}
	if player.KnownDuration(duration) {
		metadata["mpris:length"] = dbus.MakeVariant(toMicros(duration))
	}
	if view.ArtworkURL != "" {
		metadata["mpris:artUrl"] = dbus.MakeVariant(view.ArtworkURL)
	}
	return metadata
}

func playbackStatus(playing bool) string {
	if playing {
		return "Playing"
	}
	return "Paused"
}

func toMicros(seconds float64) int64 {
	return int64(seconds * 1e6)
}
