package sequencer

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/playlist"
	"github.com/llehouerou/wavestv/internal/seek"
)

func tracks() []catalog.Track {
	return []catalog.Track{
		{ID: 1, Title: "one", Type: "mp3", AudioURL: "https://example.com/1.mp3"},
		{ID: 2, Title: "two", Type: "mp3", AudioURL: "https://example.com/2.mp3"},
		{ID: 3, Title: "three", Type: "mp3", AudioURL: "https://example.com/3.mp3"},
	}
}

type fixture struct {
	c       *playback.Controller
	seq     *Sequencer
	engines *engine.MockFactory
	metrics *metrics.Recorder
}

func newFixture(t *testing.T, start int) *fixture {
	t.Helper()
	f := &fixture{engines: &engine.MockFactory{}, metrics: metrics.New()}
	f.c = playback.New(playback.Options{Engines: f.engines.Factory(), Metrics: f.metrics})
	f.seq = New(f.c, playlist.NewQueue(tracks(), start), Config{}, f.metrics, nil)
	require.NoError(t, f.seq.PlayCurrent(context.Background(), "cover.webp"))
	f.ready(t)
	return f
}

// ready drives the latest engine to Playing with a three minute track.
func (f *fixture) ready(t *testing.T) *engine.Mock {
	t.Helper()
	m := f.engines.Last()
	m.SetDuration(3 * time.Minute)
	m.SetReadyState(engine.HaveEnoughData)
	m.Emit(engine.EventLoadedMetadata)
	require.Equal(t, playback.StatePlaying, f.c.Session().State)
	return m
}

func (f *fixture) currentTrack() int {
	return f.c.Session().Track.ID
}

func TestResult_String(t *testing.T) {
	tests := []struct {
		r    Result
		want string
	}{
		{Moved, "moved"},
		{Busy, "busy"},
		{Exit, "exit"},
		{Result(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Result(%d).String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestPlayCurrent_EmptyQueue(t *testing.T) {
	c := playback.New(playback.Options{Engines: (&engine.MockFactory{}).Factory()})
	s := New(c, playlist.NewQueue(nil, 0), Config{}, nil, nil)
	assert.ErrorIs(t, s.PlayCurrent(context.Background(), ""), ErrEmptyQueue)
}

func TestAdvance_StartsNextTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		ctx := context.Background()
		first := f.engines.Last()

		res, err := f.seq.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, Moved, res)
		assert.Equal(t, 2, f.currentTrack())
		assert.Equal(t, 1, f.seq.Index())
		assert.Equal(t, 2, f.engines.Count())
		assert.Equal(t, 1, first.CallCount("Deinitialize"), "previous engine released")

		assert.True(t, f.seq.Advancing())
		res, err = f.seq.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, Busy, res, "second move inside the settle window is ignored")
		assert.Equal(t, 2, f.engines.Count())

		time.Sleep(DefaultSettle)
		synctest.Wait()
		assert.False(t, f.seq.Advancing())

		res, err = f.seq.Advance(ctx)
		require.NoError(t, err)
		assert.Equal(t, Moved, res)
		assert.Equal(t, 3, f.currentTrack())

		f.seq.Stop()
		require.NoError(t, f.c.Close(ctx))
	})
}

func TestRetreat_StartsPreviousTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 2)
		res, err := f.seq.Retreat(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Moved, res)
		assert.Equal(t, 2, f.currentTrack())
		f.seq.Stop()
	})
}

func TestBoundaries_SignalExit(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		move   func(*Sequencer, context.Context) (Result, error)
		reason ExitReason
	}{
		{"advance past last", 2, (*Sequencer).Advance, ExitEnd},
		{"retreat before first", 0, (*Sequencer).Retreat, ExitStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.start)
			res, err := tt.move(f.seq, context.Background())
			require.NoError(t, err)
			assert.Equal(t, Exit, res)
			assert.Equal(t, 1, f.engines.Count(), "no new session")
			select {
			case got := <-f.seq.Exits():
				assert.Equal(t, tt.reason, got)
			default:
				t.Fatal("expected exit signal")
			}
			assert.False(t, f.seq.Advancing())
		})
	}
}

func TestPoll_AdvancesOnceAtEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		ctx := context.Background()
		m := f.engines.Last()

		m.SetPosition(178 * time.Second)
		f.seq.Poll(ctx)
		assert.Equal(t, 1, f.engines.Count())
		assert.Equal(t, 178*time.Second, f.c.Progress())

		m.SetPosition(180 * time.Second)
		f.seq.Poll(ctx)
		assert.Equal(t, 2, f.engines.Count())
		assert.Equal(t, 2, f.currentTrack())
		assert.Equal(t, 1, f.seq.Index())
		assert.Equal(t, time.Duration(0), f.c.Progress())

		// Polls during the settle window are skipped.
		f.seq.Poll(ctx)
		assert.Equal(t, 2, f.engines.Count())

		time.Sleep(DefaultSettle)
		synctest.Wait()
		f.seq.Poll(ctx)
		assert.Equal(t, 2, f.engines.Count(), "new track has not reached its end")
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AutoAdvances.WithLabelValues("poll")))
		f.seq.Stop()
	})
}

func TestPoll_UnknownDurationNeverAdvances(t *testing.T) {
	f := newFixture(t, 0)
	m := f.engines.Last()
	m.SetDuration(0)
	m.SetPosition(time.Hour)
	f.seq.Poll(context.Background())
	assert.Equal(t, 1, f.engines.Count())
}

func TestRun_AdvancesOnEndedEvent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			f.seq.Run(ctx)
			close(done)
		}()
		synctest.Wait()

		f.engines.Last().Emit(engine.EventEnded)
		synctest.Wait()

		assert.Equal(t, 2, f.engines.Count())
		assert.Equal(t, 2, f.currentTrack())

		cancel()
		<-done
		f.seq.Stop()
	})
}

func TestRun_ErrorAdvances(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			f.seq.Run(ctx)
			close(done)
		}()
		synctest.Wait()

		f.engines.Last().EmitError(assert.AnError)
		synctest.Wait()
		assert.Equal(t, 2, f.currentTrack())

		cancel()
		<-done
		f.seq.Stop()
	})
}

// A seek of +10s at 178s of a 180s track forces the end, and the run loop
// moves on to the next track exactly once.
func TestRun_SeekNearEndAdvances(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		d := seek.New(f.c, f.seq, seek.Config{}, f.metrics, nil)
		f.c.SetSeekObserver(d)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			f.seq.Run(ctx)
			close(done)
		}()
		synctest.Wait()

		m := f.engines.Last()
		m.SetPosition(178 * time.Second)
		assert.Equal(t, seek.ForcedEnd, d.Request(ctx, 10*time.Second))
		synctest.Wait()

		assert.Equal(t, 2, f.engines.Count())
		assert.Equal(t, 2, f.currentTrack())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 2, f.engines.Count())

		cancel()
		<-done
		f.seq.Stop()
	})
}

// The remote step of 10s from 175s of a 180s track lands past the end and
// starts the next track.
func TestRun_SeekStepPastEndAdvances(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t, 0)
		d := seek.New(f.c, f.seq, seek.Config{}, f.metrics, nil)
		f.c.SetSeekObserver(d)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			f.seq.Run(ctx)
			close(done)
		}()
		synctest.Wait()

		f.engines.Last().SetPosition(175 * time.Second)
		assert.Equal(t, seek.Advanced, d.Request(ctx, 10*time.Second))
		synctest.Wait()

		assert.Equal(t, 2, f.engines.Count())
		assert.Equal(t, 2, f.currentTrack())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 2, f.engines.Count())

		cancel()
		<-done
		f.seq.Stop()
	})
}

func TestSeekPastEnd(t *testing.T) {
	t.Run("advances when a next track exists", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			f := newFixture(t, 1)
			require.NoError(t, f.seq.SeekPastEnd(context.Background()))
			assert.Equal(t, 3, f.currentTrack())
			f.seq.Stop()
		})
	})
	t.Run("pauses and exits on the last track", func(t *testing.T) {
		f := newFixture(t, 2)
		m := f.engines.Last()
		require.NoError(t, f.seq.SeekPastEnd(context.Background()))
		assert.True(t, m.Paused())
		assert.Equal(t, playback.StatePaused, f.c.Session().State)
		assert.Equal(t, ExitEnd, <-f.seq.Exits())
	})
}

func TestBack(t *testing.T) {
	f := newFixture(t, 0)
	f.seq.Back()
	f.seq.Back()
	assert.Equal(t, ExitBack, <-f.seq.Exits())
	select {
	case <-f.seq.Exits():
		t.Fatal("exit signals do not queue up")
	default:
	}
}

func TestShuffle(t *testing.T) {
	f := newFixture(t, 1)
	first, err := f.seq.Shuffle()
	require.NoError(t, err)

	got, idx := f.seq.Queue()
	assert.Equal(t, 0, idx)
	assert.Equal(t, first, got[0])
	assert.ElementsMatch(t, tracks(), got)

	empty := New(f.c, playlist.NewQueue(nil, 0), Config{}, nil, nil)
	_, err = empty.Shuffle()
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestReplace(t *testing.T) {
	f := newFixture(t, 0)
	f.seq.Replace(playlist.NewQueue(tracks()[:1], 0))
	got, _ := f.seq.Queue()
	assert.Len(t, got, 1)
}
