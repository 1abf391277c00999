package playstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IdleSnapshot(t *testing.T) {
	s, _ := New("icon.png")
	snap := s.Snapshot()
	assert.False(t, snap.AudioActive)
	assert.True(t, snap.SongEnded)
	assert.Equal(t, "icon.png", snap.Thumbnail)
}

func TestWriter_Lifecycle(t *testing.T) {
	s, w := New("icon.png")

	w.Started("s1", "direct", "cover.webp")
	snap := s.Snapshot()
	assert.True(t, snap.AudioActive)
	assert.False(t, snap.SongEnded)
	assert.Equal(t, "cover.webp", snap.Thumbnail)
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, "direct", snap.MediaType)

	w.Ended()
	snap = s.Snapshot()
	assert.False(t, snap.AudioActive)
	assert.True(t, snap.SongEnded)
	assert.Equal(t, "cover.webp", snap.Thumbnail)

	w.ResetThumbnail()
	assert.Equal(t, "icon.png", s.Snapshot().Thumbnail)

	w.Started("s2", "adaptive", "")
	w.Reset()
	assert.Equal(t, Snapshot{SongEnded: true, Thumbnail: "icon.png"}, s.Snapshot())
}

func TestStore_Subscribe(t *testing.T) {
	s, w := New("icon.png")
	ch := s.Subscribe()

	w.Started("s1", "direct", "cover.webp")
	w.Started("s1", "direct", "cover.webp") // unchanged, not sent

	got := <-ch
	assert.True(t, got.AudioActive)
	select {
	case extra := <-ch:
		t.Errorf("unexpected snapshot %+v", extra)
	default:
	}

	s.Close()
	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	late := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok, "subscribe after close returns a closed channel")
}

func TestStore_Subscribe_DropsWhenFull(t *testing.T) {
	s, w := New("")
	ch := s.Subscribe()
	for i := range subscriberBufferSize + 5 {
		w.Started("s", "direct", string(rune('a'+i)))
	}
	assert.Len(t, ch, subscriberBufferSize)
}

func TestGlobal_InitGetTeardown(t *testing.T) {
	t.Cleanup(Teardown)

	require.Nil(t, Get())
	s1, w1 := Init("icon.png")
	s2, w2 := Init("other.png")
	assert.Same(t, s1, s2)
	assert.Same(t, w1, w2)
	assert.Same(t, s1, Get())

	Teardown()
	assert.Nil(t, Get())
}
