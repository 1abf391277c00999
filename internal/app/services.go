package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/wavestv/internal/artwork"
	"github.com/llehouerou/wavestv/internal/catalog"
	"github.com/llehouerou/wavestv/internal/config"
	"github.com/llehouerou/wavestv/internal/engine"
	"github.com/llehouerou/wavestv/internal/lifecycle"
	"github.com/llehouerou/wavestv/internal/mediacache"
	"github.com/llehouerou/wavestv/internal/mediactl"
	"github.com/llehouerou/wavestv/internal/metrics"
	"github.com/llehouerou/wavestv/internal/mpris"
	"github.com/llehouerou/wavestv/internal/notify"
	"github.com/llehouerou/wavestv/internal/playback"
	"github.com/llehouerou/wavestv/internal/player"
	"github.com/llehouerou/wavestv/internal/playlist"
	"github.com/llehouerou/wavestv/internal/playstate"
	"github.com/llehouerou/wavestv/internal/preview"
	"github.com/llehouerou/wavestv/internal/seek"
	"github.com/llehouerou/wavestv/internal/sequencer"
	"github.com/llehouerou/wavestv/internal/state"
	"github.com/llehouerou/wavestv/internal/stream"
)

const remoteQueueSize = 32

// Host is the media-control integration the player controller registers
// with. mpris.Adapter satisfies it.
type Host interface {
	mediactl.Host
	Bind(status mpris.Status, nav mpris.Navigator)
	SetNowPlaying(np mpris.NowPlaying)
	Close() error
}

// Services is the playback stack below the shell: one controller for the
// player screen and one for tile previews, plus everything that drives them.
type Services struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Logger    *slog.Logger
	Metrics   *metrics.Recorder
	State     state.Interface
	PlayState *playstate.Store

	Cache   *mediacache.Cache
	Artwork *artwork.Store

	Player    *playback.Controller
	Sequencer *sequencer.Sequencer
	Seek      *seek.Debouncer
	Bridge    *lifecycle.Bridge

	Preview       *playback.Controller
	Previewer     *preview.Previewer
	PreviewBridge *lifecycle.Bridge

	Hub       *lifecycle.Hub
	Host      Host
	Announcer *notify.Announcer

	ctx     context.Context
	cancel  context.CancelFunc
	remotes chan lifecycle.RemoteEvent
	detach  []func()
	wg      sync.WaitGroup
	once    sync.Once
}

// Options are the collaborators Build does not create itself. Nil fields
// get the real implementation.
type Options struct {
	Engines  *engine.Factory
	Host     Host
	Notifier notify.Notifier
}

// Build wires the playback stack from configuration.
func Build(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, st state.Interface, logger *slog.Logger, opts Options) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Services{
		Config:  cfg,
		Catalog: cat,
		Logger:  logger,
		Metrics: metrics.New(),
		State:   st,
		Hub:     lifecycle.NewHub(),
		ctx:     ctx,
		cancel:  cancel,
		remotes: make(chan lifecycle.RemoteEvent, remoteQueueSize),
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(xdg.CacheHome, "wavestv")
	}
	s.Cache = mediacache.New(filepath.Join(cacheDir, "media"), &http.Client{Timeout: 2 * time.Minute}, logger)
	s.Artwork = artwork.New(s.Cache, filepath.Join(cacheDir, "covers"), artwork.DefaultSize, logger)

	engines := opts.Engines
	if engines == nil {
		sc := cfg.GetStreamConfig()
		engines = &engine.Factory{
			NewElement: func() engine.Element {
				return player.New(nil, s.Cache, logger)
			},
			NewStreamer: stream.Factory(stream.Config{
				FFmpeg:  sc.FFmpegPath,
				FFprobe: sc.FFprobePath,
			}, logger),
		}
	}

	s.Host = opts.Host
	if s.Host == nil {
		h, err := mpris.New(mpris.Options{Logger: logger})
		if err != nil {
			cancel()
			return nil, err
		}
		s.Host = h
	}

	notifier := opts.Notifier
	if notifier == nil {
		n, err := notify.New()
		if err != nil {
			cancel()
			return nil, err
		}
		notifier = n
	}
	s.Announcer = notify.NewAnnouncer(notifier, logger)

	tm := cfg.Timings()
	store, writer := playstate.Init(catalog.MusicIcon)
	s.PlayState = store

	s.Player = playback.New(playback.Options{
		Engines:               *engines,
		Host:                  s.Host,
		OverrideMediaControls: cfg.OverrideMediaControls(),
		State:                 writer,
		Metrics:               s.Metrics,
		Logger:                logger,
		Name:                  "player",
	})
	s.Sequencer = sequencer.New(s.Player, playlist.NewQueue(nil, 0), sequencer.Config{
		Settle:       tm.AdvanceSettle,
		PollInterval: tm.ProgressPoll,
	}, s.Metrics, logger)
	s.Seek = seek.New(s.Player, s.Sequencer, seek.Config{
		Debounce:        tm.SeekDebounce,
		RefuseWindow:    tm.SeekRefuseWindow,
		ForceEndWindow:  tm.SeekForceEndWindow,
		MinimumPosition: tm.SeekMinPosition,
	}, s.Metrics, logger)
	s.Player.SetSeekObserver(s.Seek)
	s.Host.Bind(s.Player, s.Sequencer)
	s.Bridge = lifecycle.New(s.Player, s.Seek, s.Sequencer, tm.SeekStep, logger)

	s.Preview = playback.New(playback.Options{
		Engines: *engines,
		Metrics: s.Metrics,
		Logger:  logger,
		Name:    "preview",
	})
	s.Previewer = preview.New(ctx, s.Preview, preview.Config{
		StartDelay:  tm.PreviewStartDelay,
		MaxDuration: tm.PreviewMaxDuration,
	}, s.Metrics, logger)
	// The preview bridge never takes remote focus; it only pauses on
	// background.
	s.PreviewBridge = lifecycle.New(s.Preview, nil, nil, tm.SeekStep, logger)

	s.detach = append(s.detach,
		s.Bridge.Attach(ctx, s.Hub, s.Hub),
		s.PreviewBridge.Attach(ctx, s.Hub, nil),
	)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.Sequencer.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.pumpRemotes(ctx)
	}()

	if cfg.HasMetrics() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.Metrics.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics server", "err", err)
			}
		}()
	}
	return s, nil
}

// Context is cancelled by Close.
func (s *Services) Context() context.Context { return s.ctx }

// Remote queues a remote event. Events are published in order on one
// goroutine, since handlers may block on engine calls.
func (s *Services) Remote(e lifecycle.RemoteEvent) {
	select {
	case s.remotes <- e:
	default:
		s.Logger.Warn("remote event dropped", "button", e.Button)
	}
}

func (s *Services) pumpRemotes(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-s.remotes:
			s.Hub.PublishRemote(e)
		}
	}
}

// Close stops both sessions and every background goroutine.
func (s *Services) Close(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		for _, fn := range s.detach {
			fn()
		}
		s.Previewer.Close()
		s.Sequencer.Stop()
		s.Seek.Cancel()
		s.Announcer.Close()

		err = errors.Join(
			s.Preview.Close(ctx),
			s.Player.Close(ctx),
			s.Host.Close(),
		)
		s.cancel()
		s.wg.Wait()
		playstate.Teardown()
	})
	return err
}
