package albumart

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransmit_Chunks(t *testing.T) {
	data := make([]byte, 4000)
	for i := range data {
		data[i] = byte(i)
	}
	cmd := transmit(data, 42)

	assert.Equal(t, 2, strings.Count(cmd, escStart))
	assert.Contains(t, cmd, "a=t,f=100,i=42,q=2,m=1;")
	assert.Contains(t, cmd, escStart+"m=0;")

	var payload strings.Builder
	for _, part := range strings.Split(cmd, escStart)[1:] {
		part = strings.TrimSuffix(part, escEnd)
		payload.WriteString(part[strings.Index(part, ";")+1:])
	}
	decoded, err := base64.StdEncoding.DecodeString(payload.String())
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestTransmit_SingleChunk(t *testing.T) {
	cmd := transmit([]byte("png"), 1)
	assert.Equal(t, escStart+"a=t,f=100,i=1,q=2,m=0;cG5n"+escEnd, cmd)
}

func TestKitty_DeleteAndPlace(t *testing.T) {
	assert.Equal(t, escStart+"a=d,d=i,i=7,q=2;"+escEnd, Kitty{}.Delete(7))
	assert.Equal(t, "\x1b[s\x1b[2;4H"+escStart+"a=p,i=7,p=1,c=20,r=10,C=1,q=2;"+escEnd+"\x1b[u",
		Kitty{}.Place(7, 2, 4, 20, 10))
}

func TestSixel_PlaceUnknownImage(t *testing.T) {
	s := &Sixel{cellW: 8, cellH: 16, images: map[uint32]string{}}
	assert.Empty(t, s.Place(1, 1, 1, 4, 4))
	w, h := s.PixelSize(10, 5)
	assert.Equal(t, 80, w)
	assert.Equal(t, 64, h)
}

func TestDetect_Override(t *testing.T) {
	t.Setenv(ProtocolEnv, "none")
	assert.Nil(t, Detect())
	t.Setenv(ProtocolEnv, "kitty")
	assert.Equal(t, Kitty{}, Detect())
}

func TestKittySupported(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"kitty window", map[string]string{"KITTY_WINDOW_ID": "1"}, true},
		{"term kitty", map[string]string{"TERM": "xterm-kitty"}, true},
		{"wezterm", map[string]string{"TERM_PROGRAM": "WezTerm"}, true},
		{"new konsole", map[string]string{"KONSOLE_VERSION": "220400"}, true},
		{"old konsole", map[string]string{"KONSOLE_VERSION": "210000"}, false},
		{"contour", map[string]string{"CONTOUR_PROFILE": "x", "KITTY_WINDOW_ID": "1"}, false},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, false},
	}
	vars := []string{"KITTY_WINDOW_ID", "TERM", "TERM_PROGRAM", "GHOSTTY_RESOURCES_DIR", "KONSOLE_VERSION", "CONTOUR_PROFILE"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range vars {
				t.Setenv(v, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, kittySupported())
		})
	}
}
