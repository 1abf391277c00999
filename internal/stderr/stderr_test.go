//go:build !windows

package stderr

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestCaptureToLogger(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewTextHandler(&out, nil))

	require.NoError(t, Start(logger))
	require.NoError(t, Start(logger), "second start is a no-op")
	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c: underrun occurred")
	fmt.Fprintln(os.Stderr, "   ")
	Stop()
	Stop()

	got := out.String()
	assert.Contains(t, got, "ALSA lib pcm.c: underrun occurred")
	assert.Contains(t, got, "source=stderr")
	assert.Equal(t, 1, bytes.Count([]byte(got), []byte("level=WARN")))
}
