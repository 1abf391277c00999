// Package stream implements the adaptive-streaming collaborator on top of
// ffmpeg: manifests and remote media are transcoded to a WAV pipe that the
// media element decodes. Seeking restarts the transcoder at the new offset.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/llehouerou/wavestv/internal/engine"
)

const maxProbeTimeout = 30 * time.Second

var (
	// ErrSecureContent is returned for content that needs a DRM player.
	ErrSecureContent = errors.New("stream: secure content is not supported")
	// ErrNotLoaded is returned by Seek before Load.
	ErrNotLoaded = errors.New("stream: nothing loaded")
	// ErrUnloaded is returned by a Load that finishes after Unload.
	ErrUnloaded = errors.New("stream: unloaded")
)

// CommandFunc builds the command for a binary. Tests swap it for a helper
// process.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Config locates the ffmpeg binaries. Empty paths use the PATH lookup.
type Config struct {
	FFmpeg  string
	FFprobe string
	Command CommandFunc
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.FFmpeg) == "" {
		c.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(c.FFprobe) == "" {
		c.FFprobe = "ffprobe"
	}
	if c.Command == nil {
		c.Command = exec.CommandContext
	}
	return c
}

// Streamer feeds one element from an ffmpeg process. It serves a single
// session: once unloaded it never starts ffmpeg again.
type Streamer struct {
	el     engine.Element
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	uri      string
	duration time.Duration
	proc     *process
	unloaded bool
}

var (
	_ engine.Streamer = (*Streamer)(nil)
	_ engine.Seeker   = (*Streamer)(nil)
)

// New binds a streamer to el.
func New(el engine.Element, cfg Config, logger *slog.Logger) *Streamer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Streamer{
		el:     el,
		cfg:    cfg.withDefaults(),
		logger: logger.With("component", "stream"),
	}
}

// Factory returns an engine.Factory streamer constructor.
func Factory(cfg Config, logger *slog.Logger) func(engine.Element) engine.Streamer {
	return func(el engine.Element) engine.Streamer {
		return New(el, cfg, logger)
	}
}

// Load probes the duration of c and starts transcoding from the beginning.
// A failed probe leaves the duration unknown.
func (s *Streamer) Load(ctx context.Context, c engine.Content, autoplay bool) error {
	if c.Secure {
		return ErrSecureContent
	}
	if strings.TrimSpace(c.URI) == "" {
		return errors.New("stream: empty uri")
	}

	s.mu.Lock()
	unloaded := s.unloaded
	s.mu.Unlock()
	if unloaded {
		return ErrUnloaded
	}

	dur, err := s.Probe(ctx, c.URI)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		s.logger.Warn("probe failed", "uri", c.URI, "err", err)
	}

	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		return ErrUnloaded
	}
	s.uri = c.URI
	s.duration = dur
	s.mu.Unlock()

	if err := s.start(c.URI, 0, dur); err != nil {
		return err
	}
	if autoplay {
		return s.el.Play()
	}
	return nil
}

// Seek restarts the transcoder at pos.
func (s *Streamer) Seek(pos time.Duration) error {
	s.mu.Lock()
	uri, dur := s.uri, s.duration
	s.mu.Unlock()
	if uri == "" {
		return ErrNotLoaded
	}
	pos = max(pos, 0)
	if dur > 0 {
		pos = min(pos, dur)
	}
	return s.start(uri, pos, dur)
}

// Unload stops the transcoder.
func (s *Streamer) Unload(_ context.Context) error {
	s.mu.Lock()
	p := s.proc
	s.proc = nil
	s.uri = ""
	s.duration = 0
	s.unloaded = true
	s.mu.Unlock()
	if p != nil {
		return p.Close()
	}
	return nil
}

func (s *Streamer) start(uri string, offset, dur time.Duration) error {
	args := []string{"-nostdin", "-v", "error"}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64))
	}
	args = append(args,
		"-i", uri,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "2",
		"-ar", "44100",
		"-f", "wav",
		"pipe:1",
	)

	// The process outlives the call that started it.
	ctx, cancel := context.WithCancel(context.Background())
	cmd := s.cfg.Command(ctx, s.cfg.FFmpeg, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	p := &process{cmd: cmd, stdout: stdout, cancel: cancel, logger: s.logger}
	cmd.Stderr = &p.stderr
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	s.logger.Debug("ffmpeg started", "uri", uri, "offset", offset)

	s.mu.Lock()
	if s.unloaded {
		s.mu.Unlock()
		p.Close()
		return ErrUnloaded
	}
	prev := s.proc
	s.proc = p
	s.mu.Unlock()

	// The element closes the previous pipe when the new one attaches; the
	// explicit close covers a failed attach.
	if err := s.el.Attach(p, offset, dur); err != nil {
		p.Close()
		return err
	}
	if prev != nil {
		prev.Close()
	}
	return nil
}

// Probe returns the duration ffprobe reports for uri.
func (s *Streamer) Probe(ctx context.Context, uri string) (time.Duration, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxProbeTimeout)
		defer cancel()
	}
	cmd := s.cfg.Command(ctx, s.cfg.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		uri,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return 0, fmt.Errorf("ffprobe failed: %w: %s", err, msg)
		}
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseDuration(stdout.Bytes())
}

type probePayload struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseDuration(data []byte) (time.Duration, error) {
	var payload probePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("ffprobe output parse failed: %w", err)
	}
	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" || raw == "N/A" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// process is a running ffmpeg whose stdout is the WAV pipe. Closing it kills
// the process.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	stderr bytes.Buffer
	logger *slog.Logger

	once sync.Once
	err  error
}

func (p *process) Read(b []byte) (int, error) { return p.stdout.Read(b) }

func (p *process) Close() error {
	p.once.Do(func() {
		p.cancel()
		err := p.cmd.Wait()
		var exit *exec.ExitError
		if err != nil && !errors.As(err, &exit) {
			p.err = err
		}
		if err != nil && p.cmd.ProcessState != nil && p.cmd.ProcessState.Exited() {
			p.logger.Debug("ffmpeg exited",
				"code", p.cmd.ProcessState.ExitCode(),
				"stderr", strings.TrimSpace(p.stderr.String()))
		}
	})
	return p.err
}
