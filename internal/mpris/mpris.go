//go:build linux

package mpris

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/playback"
)

// Adapter is the media-control host backed by an MPRIS server.
type Adapter struct {
	*focus
	server *server.Server
}

var _ mediactl.Host = (*Adapter)(nil)

// New creates and starts an MPRIS adapter.
func New(opts Options) (*Adapter, error) {
	f := newFocus(opts)
	a := &Adapter{focus: f}
	pa := &playerAdapter{focus: f}
	a.server = server.NewServer("wavestv", &rootAdapter{}, pa)

	go func() {
		if err := a.server.Listen(); err != nil {
			f.logger.Warn("mpris server stopped", "err", err)
		}
	}()
	return a, nil
}

// Close stops the server and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error            { return nil }
func (r *rootAdapter) Quit() error             { return nil }
func (r *rootAdapter) CanQuit() (bool, error)  { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "WavesTV", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp4"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Transport
// commands go to the focused session handler; track changes go to the
// sequencer.
type playerAdapter struct {
	focus *focus
}

func (p *playerAdapter) ctx() context.Context { return context.Background() }

func (p *playerAdapter) nav() Navigator {
	_, nav := p.focus.sources()
	return nav
}

func (p *playerAdapter) Next() error {
	nav := p.nav()
	if nav == nil {
		return nil
	}
	_, err := nav.Advance(p.ctx())
	return err
}

func (p *playerAdapter) Previous() error {
	nav := p.nav()
	if nav == nil {
		return nil
	}
	_, err := nav.Retreat(p.ctx())
	return err
}

func (p *playerAdapter) Pause() error {
	return p.focus.Handler().HandlePause(p.ctx())
}

func (p *playerAdapter) PlayPause() error {
	return p.focus.Handler().HandleTogglePlayPause(p.ctx())
}

func (p *playerAdapter) Stop() error {
	return p.focus.Handler().HandleStop(p.ctx())
}

func (p *playerAdapter) Play() error {
	return p.focus.Handler().HandlePlay(p.ctx())
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	st := p.media()
	d := time.Duration(offset) * time.Microsecond
	return p.focus.Handler().HandleSeek(p.ctx(), seekTarget(st.Position, st.Duration, d))
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	st := p.media()
	d := time.Duration(position) * time.Microsecond
	return p.focus.Handler().HandleSeek(p.ctx(), seekTarget(0, st.Duration, d))
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) media() playback.MediaStatus {
	status, _ := p.focus.sources()
	if status == nil {
		return playback.MediaStatus{State: playback.StateIdle}
	}
	return status.Media()
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.media().State), nil
}

func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s {
	case playback.StatePlaying, playback.StateBuffering:
		return types.PlaybackStatusPlaying
	case playback.StatePaused, playback.StateReady:
		return types.PlaybackStatusPaused
	case playback.StateIdle, playback.StateInitializing, playback.StateEnded,
		playback.StateErrored, playback.StateDestroyed:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

func (p *playerAdapter) Rate() (float64, error)   { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error  { return nil }
func (p *playerAdapter) Volume() (float64, error) { return 1.0, nil }
func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	np, ok := p.focus.nowPlaying()
	if !ok {
		return types.Metadata{}, nil
	}
	length := p.media().Duration
	if length <= 0 {
		length = np.Track.Duration()
	}
	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(np.Track.ID)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   np.Track.Title,
		Album:   np.Album,
	}
	if np.Artist != "" {
		meta.Artist = []string{np.Artist}
	}
	if nav := p.nav(); nav != nil {
		_, idx := nav.Queue()
		meta.TrackNumber = idx + 1
	}
	if np.ArtPath != "" {
		meta.ArtUrl = "file://" + np.ArtPath
	}
	return meta, nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.media().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	nav := p.nav()
	if nav == nil {
		return false, nil
	}
	q, idx := nav.Queue()
	return idx+1 < len(q), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	nav := p.nav()
	if nav == nil {
		return false, nil
	}
	_, idx := nav.Queue()
	return idx > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error)    { return p.focus.Focused(), nil }
func (p *playerAdapter) CanPause() (bool, error)   { return p.focus.Focused(), nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return p.focus.Focused(), nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

func formatTrackID(id int) string {
	return fmt.Sprintf("/org/wavestv/Track/%d", id)
}
