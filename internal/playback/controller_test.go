// internal/playback/controller_test.go
package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/playstate"
)

var (
	trackMP3 = catalog.Track{
		ID: 1, Title: "Rise Up", Type: "mp3", DurationMS: 180000,
		AudioURL: "https://example.com/rise.mp3", Thumbnail: "albion.webp",
	}
	trackMP4 = catalog.Track{
		ID: 2, Title: "Mellow", Type: "mp4",
		AudioURL: "https://example.com/mellow.mp4", Thumbnail: "street.webp",
	}
	trackHLS = catalog.Track{
		ID: 3, Title: "Live", Type: "hls",
		AudioURL: "https://example.com/live.m3u8", Thumbnail: "live.webp",
	}
)

type fixture struct {
	c       *Controller
	engines *engine.MockFactory
	host    *mediactl.MockHost
	store   *playstate.Store
	metrics *metrics.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engines: &engine.MockFactory{},
		host:    mediactl.NewMockHost(),
		metrics: metrics.New(),
	}
	var w *playstate.Writer
	f.store, w = playstate.New(catalog.MusicIcon)
	f.c = New(Options{
		Engines:               f.engines.Factory(),
		Host:                  f.host,
		OverrideMediaControls: true,
		State:                 w,
		Metrics:               f.metrics,
	})
	return f
}

// play starts track and drives it to Playing.
func (f *fixture) play(t *testing.T, track catalog.Track) *engine.Mock {
	t.Helper()
	require.NoError(t, f.c.Start(context.Background(), track, ""))
	m := f.engines.Last()
	m.SetDuration(3 * time.Minute)
	m.SetReadyState(engine.HaveEnoughData)
	m.Emit(engine.EventLoadedMetadata)
	require.Equal(t, StatePlaying, f.c.Session().State)
	return m
}

type recordingObserver struct {
	mu      sync.Mutex
	settles int
	cancels int
}

func (o *recordingObserver) Settle() { o.mu.Lock(); o.settles++; o.mu.Unlock() }
func (o *recordingObserver) Cancel() { o.mu.Lock(); o.cancels++; o.mu.Unlock() }

func (o *recordingObserver) counts() (settles, cancels int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settles, o.cancels
}

func TestStart_SelectsEngineKind(t *testing.T) {
	tests := []struct {
		track catalog.Track
		want  engine.Kind
	}{
		{trackMP3, engine.KindDirect},
		{trackMP4, engine.KindDirect},
		{trackHLS, engine.KindAdaptive},
	}
	for _, tt := range tests {
		t.Run(tt.track.Type, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.c.Start(context.Background(), tt.track, ""))
			assert.Equal(t, tt.want, f.c.MediaType())
			assert.Equal(t, tt.want, f.c.Session().Kind)
		})
	}
}

func TestStart_Adaptive_LoadsContentDescriptor(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Start(context.Background(), trackHLS, ""))

	streamers := f.engines.Streamers()
	require.Len(t, streamers, 1)
	assert.Equal(t, []engine.Content{{URI: trackHLS.AudioURL}}, streamers[0].Loads())
	assert.Empty(t, f.engines.Last().Opens(), "adaptive engines do not open the URL directly")
}

func TestStart_InitializesAttachesRegistersAndLoads(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))

	m := f.engines.Last()
	assert.Equal(t, []string{"Initialize", "Open"}, m.Calls())
	assert.Equal(t, []string{trackMP3.AudioURL}, m.Opens())
	assert.Equal(t, 5, m.ListenerCount())
	assert.NotNil(t, f.host.Focused(), "media control handler should be registered")

	s := f.c.Session()
	assert.Equal(t, StateInitializing, s.State)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, trackMP3.Thumbnail, s.Thumbnail)
	assert.True(t, f.c.IsLoading())
}

func TestStart_ThumbnailOverride(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.Start(context.Background(), trackMP3, "album.webp"))
	assert.Equal(t, "album.webp", f.c.Session().Thumbnail)
}

func TestLoadedMetadata_AutoplaysAndPublishesState(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()

	m := f.play(t, trackMP3)

	assert.Equal(t, 1, m.CallCount("Play"))
	assert.False(t, f.c.IsLoading())
	snap := f.store.Snapshot()
	assert.True(t, snap.AudioActive)
	assert.False(t, snap.SongEnded)
	assert.Equal(t, trackMP3.Thumbnail, snap.Thumbnail)
	assert.Equal(t, "direct", snap.MediaType)

	require.Len(t, sub.TrackChanged, 1)
	tc := <-sub.TrackChanged
	assert.Equal(t, trackMP3.ID, tc.Track.ID)

	// A second playing event (resume) is not a track change.
	m.Pause()
	m.SetPaused(true)
	require.NoError(t, f.c.Play())
	assert.Empty(t, sub.TrackChanged)
}

func TestLoadedMetadata_AutoplayGateSuppressesPlay(t *testing.T) {
	f := newFixture(t)
	f.c.SetAutoplayGate(func() bool { return false })

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))
	m := f.engines.Last()
	m.Emit(engine.EventLoadedMetadata)

	assert.Equal(t, StateReady, f.c.Session().State)
	assert.Zero(t, m.CallCount("Play"))
	assert.False(t, f.store.Snapshot().AudioActive)
}

func TestStart_ConcurrentStartsConstructOneEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		gate := make(chan struct{})
		f.engines.Configure = func(m *engine.Mock) { m.BlockInitialize(gate) }

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = f.c.Start(context.Background(), trackMP3, "")
		}()
		synctest.Wait() // first Start is blocked in Initialize

		require.NoError(t, f.c.Start(context.Background(), trackMP4, ""))
		assert.Equal(t, 1, f.engines.Count())

		close(gate)
		<-done
		assert.Equal(t, 1, f.engines.Count())
		assert.Equal(t, trackMP3.ID, f.c.Session().Track.ID)
	})
}

func TestStart_DestroysPreviousBeforeConstructing(t *testing.T) {
	f := newFixture(t)
	first := f.play(t, trackMP3)

	var deinitBeforeSecond int
	f.engines.Configure = func(*engine.Mock) {
		deinitBeforeSecond = first.CallCount("Deinitialize")
	}
	require.NoError(t, f.c.OnNextPreviousClick(context.Background(), trackMP4))

	assert.Equal(t, 1, deinitBeforeSecond, "previous engine must be released first")
	assert.Equal(t, 2, f.engines.Count())
	assert.Equal(t, trackMP4.ID, f.c.Session().Track.ID)
	assert.Equal(t, trackMP4.Thumbnail, f.c.Session().Thumbnail)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ActiveSessions), 0)
}

func TestDestroy_IdleIsNoop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.c.Destroy(context.Background()))
	require.NoError(t, f.c.Destroy(context.Background()))

	assert.Equal(t, StateIdle, f.c.Session().State)
	assert.Nil(t, f.c.engine)
	sets, clears := f.host.Counts()
	assert.Zero(t, sets)
	assert.Zero(t, clears)
}

func TestDestroy_ReleasesEverything(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	f.c.SetSeekObserver(obs)
	m := f.play(t, trackMP3)

	require.NoError(t, f.c.Destroy(context.Background()))

	assert.Equal(t, StateDestroyed, f.c.Session().State)
	assert.Nil(t, f.c.engine)
	assert.Zero(t, m.ListenerCount())
	assert.Zero(t, m.ListenersAtDeinit(), "listeners must be removed before release")
	assert.Equal(t, 1, m.CallCount("Deinitialize"))
	assert.Nil(t, f.host.Focused())
	assert.Equal(t, playstate.Snapshot{SongEnded: true, Thumbnail: catalog.MusicIcon}, f.store.Snapshot())
	_, cancels := obs.counts()
	assert.Equal(t, 1, cancels)

	// Second destroy is a no-op.
	require.NoError(t, f.c.Destroy(context.Background()))
	assert.Equal(t, 1, m.CallCount("Deinitialize"))
}

func TestDestroy_ReleaseErrorIsSwallowed(t *testing.T) {
	f := newFixture(t)
	m := f.play(t, trackMP3)
	m.SetDeinitError(errors.New("device busy"))

	require.NoError(t, f.c.Destroy(context.Background()))

	assert.Equal(t, StateDestroyed, f.c.Session().State)
	assert.False(t, f.store.Snapshot().AudioActive)
	assert.True(t, f.store.Snapshot().SongEnded)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.TeardownFailures), 0)
}

func TestDestroy_AdaptiveUnloadErrorStillDeinitializes(t *testing.T) {
	f := newFixture(t)
	f.play(t, trackHLS)
	streamer := f.engines.Streamers()[0]
	streamer.SetUnloadError(errors.New("unload failed"))
	m := f.engines.Last()

	require.NoError(t, f.c.Destroy(context.Background()))

	assert.Equal(t, 1, streamer.Unloads())
	assert.Equal(t, 1, m.CallCount("Deinitialize"))
	assert.Equal(t, StateDestroyed, f.c.Session().State)
}

func TestDestroy_DuringMediaControlRegistration(t *testing.T) {
	f := newFixture(t)
	f.host.SetFocusHook(func() {
		require.NoError(t, f.c.Destroy(context.Background()))
	})

	require.NoError(t, f.c.Start(context.Background(), trackHLS, ""))

	m := f.engines.Last()
	streamer := f.engines.Streamers()[0]
	assert.Equal(t, []string{"Initialize", "Pause", "Deinitialize"}, m.Calls())
	assert.Empty(t, streamer.Loads(), "a destroyed session never loads")
	assert.Equal(t, 1, streamer.Unloads())
	assert.Nil(t, f.host.Focused(), "focus of a destroyed session is cleared")
	assert.Equal(t, StateDestroyed, f.c.Session().State)
	assert.Nil(t, f.c.engine)
	assert.InDelta(t, 0, testutil.ToFloat64(f.metrics.ActiveSessions), 0)
}

func TestDestroy_DuringAdaptiveLoad(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	var loadCtxErr error
	f.engines.ConfigureStreamer = func(s *engine.MockStreamer) {
		s.SetLoadHook(func(ctx context.Context) error {
			require.NoError(t, f.c.Destroy(context.Background()))
			loadCtxErr = ctx.Err()
			return nil
		})
	}

	require.NoError(t, f.c.Start(context.Background(), trackHLS, ""))

	m := f.engines.Last()
	streamer := f.engines.Streamers()[0]
	assert.ErrorIs(t, loadCtxErr, context.Canceled, "destroy cancels the calls of its session")
	assert.Len(t, streamer.Loads(), 1)
	assert.Equal(t, 2, streamer.Unloads(), "a load finishing after the release is released again")
	assert.Equal(t, 2, m.CallCount("Deinitialize"))
	assert.False(t, m.Initialized())
	assert.Nil(t, f.host.Focused())
	assert.Equal(t, StateDestroyed, f.c.Session().State)
	select {
	case e := <-sub.Error:
		t.Fatalf("unexpected error event %v", e)
	default:
	}
}

func TestStart_InitializeFailure(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	initErr := errors.New("no audio device")
	f.engines.Configure = func(m *engine.Mock) { m.SetInitError(initErr) }

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))

	assert.Equal(t, StateErrored, f.c.Session().State)
	assert.Nil(t, f.c.engine)
	assert.False(t, f.c.IsLoading())
	assert.False(t, f.store.Snapshot().AudioActive)
	m := f.engines.Last()
	assert.Equal(t, 1, m.CallCount("Deinitialize"), "failed engine is released")
	assert.Zero(t, m.ListenerCount())
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.InitFailures), 0)

	require.Len(t, sub.Error, 1)
	e := <-sub.Error
	assert.ErrorIs(t, e.Err, initErr)
	assert.Equal(t, trackMP3.ID, e.TrackID)

	// Errored sessions can still be destroyed and replaced.
	f.engines.Configure = nil
	f.play(t, trackMP4)
}

func TestStart_LoadFailure(t *testing.T) {
	f := newFixture(t)
	f.engines.Configure = func(m *engine.Mock) { m.SetOpenError(errors.New("404")) }

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))

	assert.Equal(t, StateErrored, f.c.Session().State)
	assert.Nil(t, f.host.Focused(), "focus is released with the engine")
	assert.Equal(t, 1, f.engines.Last().CallCount("Deinitialize"))
}

func TestStart_MediaControlFailureIsInitFailure(t *testing.T) {
	f := newFixture(t)
	f.host.SetFocusError(errors.New("dbus unavailable"))

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))

	assert.Equal(t, StateErrored, f.c.Session().State)
	assert.Zero(t, f.engines.Last().CallCount("Open"))
}

func TestEndedEvent(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	f.c.SetSeekObserver(obs)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)
	m.SetPosition(3 * time.Minute)
	m.SetEnded(true)

	m.Emit(engine.EventEnded)

	assert.Equal(t, StateEnded, f.c.Session().State)
	assert.Zero(t, m.CurrentTime(), "time is reset to 0")
	snap := f.store.Snapshot()
	assert.False(t, snap.AudioActive)
	assert.True(t, snap.SongEnded)

	require.Len(t, sub.Ended, 1)
	e := <-sub.Ended
	assert.Equal(t, EndCompleted, e.Reason)
	assert.Equal(t, trackMP3.ID, e.TrackID)

	settles, _ := obs.counts()
	assert.Zero(t, settles, "rewind on end is not an external seek")

	// Repeated end is idempotent.
	m.Emit(engine.EventEnded)
	assert.Empty(t, sub.Ended)
}

func TestErrorEvent_ResetsThumbnailAndEnds(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)
	require.Equal(t, trackMP3.Thumbnail, f.store.Snapshot().Thumbnail)

	m.EmitError(errors.New("decode error"))

	assert.Equal(t, StateEnded, f.c.Session().State)
	assert.Equal(t, catalog.MusicIcon, f.store.Snapshot().Thumbnail)
	require.Len(t, sub.Ended, 1)
	assert.Equal(t, EndError, (<-sub.Ended).Reason)
	require.Len(t, sub.Error, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.PlaybackErrors), 0)
}

func TestErrorEvent_BeforeMetadataErrorsSession(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))

	f.engines.Last().EmitError(errors.New("network"))

	assert.Equal(t, StateErrored, f.c.Session().State)
	require.Len(t, sub.Ended, 1, "still routed to auto-advance")
}

func TestSeekingEvent_NotifiesObserver(t *testing.T) {
	f := newFixture(t)
	obs := &recordingObserver{}
	f.c.SetSeekObserver(obs)
	m := f.play(t, trackMP3)

	require.NoError(t, m.SetCurrentTime(30*time.Second))

	settles, _ := obs.counts()
	assert.Equal(t, 1, settles)
}

func TestEndCurrentSong(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)
	m.SetPosition(time.Minute)

	f.c.EndCurrentSong()
	f.c.EndCurrentSong()

	assert.Equal(t, StateEnded, f.c.Session().State)
	assert.Zero(t, m.CurrentTime())
	assert.True(t, f.store.Snapshot().SongEnded)
	require.Len(t, sub.Ended, 1)
	assert.Equal(t, EndRequested, (<-sub.Ended).Reason)
}

func TestEndCurrentSong_WithoutSessionSetsFlags(t *testing.T) {
	f := newFixture(t)
	f.c.EndCurrentSong()
	assert.True(t, f.store.Snapshot().SongEnded)
	assert.Equal(t, StateIdle, f.c.Session().State)
}

func TestSeekHooks(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)
	m.SetPosition(30 * time.Second)

	pos, dur, ok := f.c.SeekPosition()
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, pos)
	assert.Equal(t, 3*time.Minute, dur)

	f.c.BeginSeek()
	assert.True(t, f.c.IsBuffering())
	assert.True(t, m.Paused())
	assert.Equal(t, StateBuffering, f.c.Session().State)

	f.c.FinishSeek(50*time.Second, true)
	assert.False(t, f.c.IsBuffering())
	assert.Equal(t, 50*time.Second, m.CurrentTime())
	assert.Equal(t, 50*time.Second, f.c.Progress())
	assert.False(t, m.Paused())
	assert.Equal(t, StatePlaying, f.c.Session().State)

	require.Len(t, sub.BufferingChanged, 2)
	assert.True(t, (<-sub.BufferingChanged).Buffering)
	assert.False(t, (<-sub.BufferingChanged).Buffering)
}

func TestSeekPosition_RejectedOutsideActiveStates(t *testing.T) {
	f := newFixture(t)
	_, _, ok := f.c.SeekPosition()
	assert.False(t, ok, "idle")

	require.NoError(t, f.c.Start(context.Background(), trackMP3, ""))
	_, _, ok = f.c.SeekPosition()
	assert.False(t, ok, "initializing")

	f.engines.Last().Emit(engine.EventLoadedMetadata)
	f.c.EndCurrentSong()
	_, _, ok = f.c.SeekPosition()
	assert.False(t, ok, "ended")
}

func TestTogglePlayPause(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.TogglePlayPause(), "no session is a no-op")

	m := f.play(t, trackMP3)

	require.NoError(t, f.c.TogglePlayPause())
	assert.True(t, m.Paused())
	assert.Equal(t, StatePaused, f.c.Session().State)

	require.NoError(t, f.c.TogglePlayPause())
	assert.False(t, m.Paused())
	assert.Equal(t, StatePlaying, f.c.Session().State)
}

func TestSample_UpdatesProgress(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)
	m.SetPosition(12 * time.Second)

	st := f.c.Sample()

	assert.Equal(t, 12*time.Second, st.Position)
	assert.Equal(t, 3*time.Minute, st.Duration)
	assert.Equal(t, 12*time.Second, f.c.Progress())
	require.Len(t, sub.PositionChanged, 1)

	f.c.ResetProgress()
	assert.Zero(t, f.c.Progress())
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	sub := f.c.Subscribe()
	m := f.play(t, trackMP3)

	require.NoError(t, f.c.Close(context.Background()))
	require.NoError(t, f.c.Close(context.Background()))

	<-sub.Done
	assert.Equal(t, 1, m.CallCount("Deinitialize"))
	assert.ErrorIs(t, f.c.Start(context.Background(), trackMP4, ""), ErrClosed)

	late := f.c.Subscribe()
	<-late.Done
}

func TestMediaControlOverride_DrivesEngine(t *testing.T) {
	f := newFixture(t)
	m := f.play(t, trackMP3)
	m.SetPosition(time.Minute)

	h := f.host.Focused()
	require.NotNil(t, h)
	require.NoError(t, h.HandleFastForward(context.Background()))

	assert.Equal(t, 70*time.Second, m.CurrentTime())
}

func TestNowPlaying(t *testing.T) {
	f := newFixture(t)
	_, ok := f.c.NowPlaying()
	assert.False(t, ok)

	f.play(t, trackMP3)
	track, ok := f.c.NowPlaying()
	require.True(t, ok)
	assert.Equal(t, trackMP3.ID, track.ID)
}
