// Package notify shows now-playing toasts through the desktop
// notification service.
package notify

import "time"

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Toast categories, sent as the "category" hint.
const (
	CategoryTrack = "x-wavestv.track"
	CategoryError = "x-wavestv.error"
)

// Notification is one toast. Image is an absolute file path or a themed
// icon name.
type Notification struct {
	Summary  string
	Body     string
	Image    string
	Category string
	Urgency  Urgency
	Expire   time.Duration // 0 uses the server default
	Replaces uint32        // id of the toast to update in place
}

// Notifier delivers toasts.
type Notifier interface {
	// Notify shows n and returns its id. A notifier without a server
	// returns 0 and no error.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// Discard drops every toast.
type Discard struct{}

var _ Notifier = Discard{}

func (Discard) Notify(Notification) (uint32, error) { return 0, nil }
func (Discard) Close(uint32) error                  { return nil }

// expireMS converts d to the wire timeout: -1 is the server default.
func expireMS(d time.Duration) int32 {
	if d <= 0 {
		return -1
	}
	return int32(d / time.Millisecond)
}
