package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavestv/internal/artwork"
	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/errmsg"
	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/mpris"
	"github.com/llehouerou/wavestv/internal/notify"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/state"
)

const (
	tickInterval   = 250 * time.Millisecond
	navigateDelay  = 500 * time.Millisecond
	keyReleaseTime = 150 * time.Millisecond
	recentLimit    = 20
	closeTimeout   = 5 * time.Second
)

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForPlayback returns the next player event the shell cares about.
func waitForPlayback(sub *playback.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.TrackChanged:
			return trackChangedMsg(e)
		case e := <-sub.StateChanged:
			return stateChangedMsg(e)
		case e := <-sub.Error:
			return playbackErrorMsg(e)
		case <-sub.Done:
			return playbackClosedMsg{}
		}
	}
}

func waitForExit(svc *Services) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-svc.Sequencer.Exits():
			return exitMsg(r)
		case <-svc.Context().Done():
			return nil
		}
	}
}

func openDetailCmd(token, albumID int) tea.Cmd {
	return tea.Tick(navigateDelay, func(time.Time) tea.Msg {
		return openDetailMsg{token: token, albumID: albumID}
	})
}

func keyUpCmd(b lifecycle.Button) tea.Cmd {
	return tea.Tick(keyReleaseTime, func(time.Time) tea.Msg {
		return keyUpMsg(b)
	})
}

func playCurrentCmd(svc *Services, thumbnail string) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: svc.Sequencer.PlayCurrent(svc.Context(), thumbnail)}
	}
}

func destroyCmd(svc *Services) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Player.Destroy(svc.Context()); err != nil {
			svc.Logger.Warn("destroy player session", "err", err)
		}
		return nil
	}
}

func loadRecentCmd(svc *Services) tea.Cmd {
	return func() tea.Msg {
		plays, err := svc.State.RecentPlays(svc.Context(), recentLimit)
		if err != nil {
			svc.Logger.Warn("load play history", "err", err)
			return nil
		}
		return recentMsg(plays)
	}
}

// trackSideEffectsCmd records the play, saves the queue, resolves the cover
// and announces the track. It runs once per session.
func trackSideEffectsCmd(svc *Services, e trackChangedMsg, album catalog.Album) tea.Cmd {
	return func() tea.Msg {
		ctx := svc.Context()
		err := svc.State.RecordPlay(ctx, state.Play{
			TrackID:   e.Track.ID,
			AlbumID:   album.ID,
			Title:     e.Track.Title,
			SessionID: e.SessionID,
			StartedAt: time.Now(),
		})
		if err != nil {
			svc.Logger.Warn(errmsg.Format(errmsg.OpHistoryWrite, err))
		}
		saveQueue(ctx, svc, album)

		path, err := svc.Artwork.Cover(ctx, e.Thumbnail, e.Track.AudioURL)
		if err != nil && !errors.Is(err, artwork.ErrNoArtwork) {
			svc.Logger.Debug("resolve artwork", "track", e.Track.ID, "err", err)
		}
		svc.Host.SetNowPlaying(mpris.NowPlaying{
			Track:   e.Track,
			Album:   album.Title,
			Artist:  album.Artist,
			ArtPath: path,
		})
		svc.Announcer.Track(notify.Track{
			Title:    e.Track.Title,
			Album:    album.Title,
			Artist:   album.Artist,
			Duration: e.Track.Duration(),
			Icon:     path,
		})
		return coverMsg{sessionID: e.SessionID, path: path}
	}
}

func saveQueue(ctx context.Context, svc *Services, album catalog.Album) {
	tracks, idx := svc.Sequencer.Queue()
	ids := make([]int, len(tracks))
	shuffled := len(tracks) != len(album.Tracks)
	for i, t := range tracks {
		ids[i] = t.ID
		if !shuffled && album.Tracks[i].ID != t.ID {
			shuffled = true
		}
	}
	err := svc.State.SaveQueue(ctx, state.QueueState{
		AlbumID:      album.ID,
		CurrentIndex: idx,
		Shuffled:     shuffled,
		TrackIDs:     ids,
	})
	if err != nil {
		svc.Logger.Warn("save queue", "err", err)
	}
}

func closeCmd(svc *Services) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		return closedMsg{err: svc.Close(ctx)}
	}
}
