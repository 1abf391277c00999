//go:build linux

package notify

import (
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = "/org/freedesktop/Notifications"
	appName   = "wavestv"
	appTitle  = "WavesTV"
	notifyFn  = busName + ".Notify"
	closeFn   = busName + ".CloseNotification"
	noActions = 0
)

type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without one, toasts are discarded.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Discard{}, nil //nolint:nilerr // toasts are optional
	}
	return &busNotifier{obj: conn.Object(busName, busPath)}, nil
}

func hints(n Notification) (map[string]dbus.Variant, string) {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	icon := n.Image
	if filepath.IsAbs(icon) {
		h["image-path"] = dbus.MakeVariant("file://" + icon)
		icon = ""
	}
	return h, icon
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	h, icon := hints(n)
	var id uint32
	err := b.obj.Call(notifyFn, noActions,
		appTitle, n.Replaces, icon, n.Summary, n.Body,
		[]string{}, h, expireMS(n.Expire),
	).Store(&id)
	return id, err
}

func (b *busNotifier) Close(id uint32) error {
	return b.obj.Call(closeFn, 0, id).Err
}
