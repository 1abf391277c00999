package notify

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	trackExpire = 5 * time.Second
	errorExpire = 8 * time.Second
	defaultIcon = "audio-x-generic"
)

// Track is what the now-playing notification shows.
type Track struct {
	Title    string
	Album    string
	Artist   string
	Duration time.Duration
	// Icon is a cover image path. Empty uses a themed icon.
	Icon string
}

// Announcer keeps a single now-playing notification on screen: each new
// track replaces the previous one.
type Announcer struct {
	n      Notifier
	logger *slog.Logger

	mu     sync.Mutex
	lastID uint32
}

// NewAnnouncer creates an announcer sending through n.
func NewAnnouncer(n Notifier, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{n: n, logger: logger.With("component", "notify")}
}

// Track announces a track change.
func (a *Announcer) Track(t Track) {
	icon := t.Icon
	if icon == "" {
		icon = defaultIcon
	}
	a.send(Notification{
		Summary:  t.Title,
		Body:     trackBody(t),
		Image:    icon,
		Category: CategoryTrack,
		Expire:   trackExpire,
	})
}

// Error shows a playback failure.
func (a *Announcer) Error(msg string) {
	a.send(Notification{
		Summary:  "Playback error",
		Body:     msg,
		Image:    "dialog-error",
		Category: CategoryError,
		Urgency:  UrgencyNormal,
		Expire:   errorExpire,
	})
}

// Close removes the current notification, if any.
func (a *Announcer) Close() {
	a.mu.Lock()
	id := a.lastID
	a.lastID = 0
	a.mu.Unlock()
	if id == 0 {
		return
	}
	if err := a.n.Close(id); err != nil {
		a.logger.Debug("close notification", "err", err)
	}
}

func (a *Announcer) send(n Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n.Replaces = a.lastID
	id, err := a.n.Notify(n)
	if err != nil {
		a.logger.Debug("notification failed", "err", err)
		return
	}
	a.lastID = id
}

func trackBody(t Track) string {
	var parts []string
	if t.Artist != "" {
		parts = append(parts, t.Artist)
	}
	if t.Album != "" {
		parts = append(parts, t.Album)
	}
	body := strings.Join(parts, " - ")
	if t.Duration > 0 {
		d := t.Duration.Round(time.Second)
		length := fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
		if body == "" {
			return length
		}
		body += " (" + length + ")"
	}
	return body
}
