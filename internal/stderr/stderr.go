//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, faad2) write
// straight to file descriptor 2, so it lands in the log instead of on top of
// the TUI.
package stderr

import (
	"bufio"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
)

var (
	mu         sync.Mutex
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	done       chan struct{}
)

// Start redirects fd 2 into logger. It must run before the audio output is
// initialized. On failure the program keeps writing to the original stderr.
func Start(logger *slog.Logger) error {
	mu.Lock()
	defer mu.Unlock()
	if pipeRead != nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr = orig
	pipeRead, pipeWrite = r, w
	done = make(chan struct{})
	logger = logger.With("source", "stderr")

	go func(r *os.File, done chan struct{}) {
		defer close(done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				logger.Warn(line)
			}
		}
	}(r, done)
	return nil
}

// WriteOriginal writes to the original stderr, bypassing capture.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd >= 0 {
		_, _ = syscall.Write(fd, []byte(msg))
		return
	}
	_, _ = os.Stderr.WriteString(msg)
}

// Stop restores the original stderr and waits for captured lines to be
// logged.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if pipeRead == nil {
		return
	}
	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	pipeWrite.Close()
	<-done
	pipeRead.Close()
	pipeRead, pipeWrite = nil, nil
}
