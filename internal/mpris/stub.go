//go:build !linux

package mpris

import "github.com/llehouerou/wavestv/internal/mediactl"

// Adapter only tracks media-control focus on non-Linux platforms.
type Adapter struct {
	*focus
}

var _ mediactl.Host = (*Adapter)(nil)

// New returns an adapter without a D-Bus server.
func New(opts Options) (*Adapter, error) {
	return &Adapter{focus: newFocus(opts)}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
