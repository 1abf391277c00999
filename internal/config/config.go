package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	CatalogFile string `koanf:"catalog_file"` // empty means the built-in catalog
	CacheDir    string `koanf:"cache_dir"`    // empty means the xdg cache dir
	LogFile     string `koanf:"log_file"`     // empty means the xdg state dir

	// Media keys act on the owned engine directly (default: true)
	MediaControlOverride *bool `koanf:"media_control_override"`

	Playback PlaybackConfig `koanf:"playback"`
	Preview  PreviewConfig  `koanf:"preview"`
	Stream   StreamConfig   `koanf:"stream"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// PlaybackConfig holds seek and track-change timings of the player screen.
type PlaybackConfig struct {
	SeekStepSeconds           int `koanf:"seek_step_seconds"`             // default: 10
	SeekDebounceMS            int `koanf:"seek_debounce_ms"`              // default: 300
	SeekRefuseWindowSeconds   int `koanf:"seek_refuse_window_seconds"`    // default: 10
	SeekForceEndWindowSeconds int `koanf:"seek_force_end_window_seconds"` // default: 3
	SeekMinPositionMS         int `koanf:"seek_min_position_ms"`          // default: 1000
	AdvanceSettleMS           int `koanf:"advance_settle_ms"`             // default: 300
	ProgressPollMS            int `koanf:"progress_poll_ms"`              // default: 1000
}

// PreviewConfig holds the browsing-screen preview timings.
type PreviewConfig struct {
	StartDelayMS  int `koanf:"start_delay_ms"`  // default: 1000
	MaxDurationMS int `koanf:"max_duration_ms"` // default: 10000
}

// StreamConfig locates the ffmpeg tools used for adaptive streams.
type StreamConfig struct {
	FFmpegPath  string `koanf:"ffmpeg_path"`  // default: "ffmpeg"
	FFprobePath string `koanf:"ffprobe_path"` // default: "ffprobe"
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g. "127.0.0.1:9464"; empty disables
}

// Timings is PlaybackConfig and PreviewConfig as durations, defaults applied.
type Timings struct {
	SeekStep           time.Duration
	SeekDebounce       time.Duration
	SeekRefuseWindow   time.Duration
	SeekForceEndWindow time.Duration
	SeekMinPosition    time.Duration
	AdvanceSettle      time.Duration
	ProgressPoll       time.Duration
	PreviewStartDelay  time.Duration
	PreviewMaxDuration time.Duration
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Later files override earlier ones
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.CatalogFile = expandPath(cfg.CatalogFile)
	cfg.CacheDir = expandPath(cfg.CacheDir)
	cfg.LogFile = expandPath(cfg.LogFile)
	cfg.Stream.FFmpegPath = strings.TrimSpace(cfg.Stream.FFmpegPath)
	cfg.Stream.FFprobePath = strings.TrimSpace(cfg.Stream.FFprobePath)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavestv/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "wavestv", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasCatalogFile returns true if a catalog file replaces the built-in one.
func (c *Config) HasCatalogFile() bool {
	return c.CatalogFile != ""
}

// HasMetrics returns true if the metrics endpoint is enabled.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Listen != ""
}

// OverrideMediaControls returns the media_control_override setting.
func (c *Config) OverrideMediaControls() bool {
	if c.MediaControlOverride == nil {
		return true
	}
	return *c.MediaControlOverride
}

// GetStreamConfig returns the stream configuration with defaults applied.
func (c *Config) GetStreamConfig() StreamConfig {
	cfg := c.Stream
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return cfg
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.SeekStepSeconds <= 0 {
		cfg.SeekStepSeconds = 10
	}
	if cfg.SeekDebounceMS <= 0 {
		cfg.SeekDebounceMS = 300
	}
	if cfg.SeekRefuseWindowSeconds <= 0 {
		cfg.SeekRefuseWindowSeconds = 10
	}
	if cfg.SeekForceEndWindowSeconds <= 0 {
		cfg.SeekForceEndWindowSeconds = 3
	}
	// The force-end window sits inside the refuse window
	if cfg.SeekForceEndWindowSeconds > cfg.SeekRefuseWindowSeconds {
		cfg.SeekForceEndWindowSeconds = cfg.SeekRefuseWindowSeconds
	}
	// Negative disables the minimum position
	if cfg.SeekMinPositionMS == 0 {
		cfg.SeekMinPositionMS = 1000
	}
	if cfg.AdvanceSettleMS <= 0 {
		cfg.AdvanceSettleMS = 300
	}
	if cfg.ProgressPollMS <= 0 {
		cfg.ProgressPollMS = 1000
	}

	return cfg
}

// GetPreviewConfig returns the preview configuration with defaults applied.
func (c *Config) GetPreviewConfig() PreviewConfig {
	cfg := c.Preview
	if cfg.StartDelayMS <= 0 {
		cfg.StartDelayMS = 1000
	}
	if cfg.MaxDurationMS <= 0 {
		cfg.MaxDurationMS = 10000
	}
	return cfg
}

// Timings returns every timing setting as a duration.
func (c *Config) Timings() Timings {
	p := c.GetPlaybackConfig()
	v := c.GetPreviewConfig()
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return Timings{
		SeekStep:           sec(p.SeekStepSeconds),
		SeekDebounce:       ms(p.SeekDebounceMS),
		SeekRefuseWindow:   sec(p.SeekRefuseWindowSeconds),
		SeekForceEndWindow: sec(p.SeekForceEndWindowSeconds),
		SeekMinPosition:    ms(p.SeekMinPositionMS),
		AdvanceSettle:      ms(p.AdvanceSettleMS),
		ProgressPoll:       ms(p.ProgressPollMS),
		PreviewStartDelay:  ms(v.StartDelayMS),
		PreviewMaxDuration: ms(v.MaxDurationMS),
	}
}
