package engine

import (
	"context"
	"path"
	"strings"
)

// Direct plays a resolved file URL on its element.
type Direct struct {
	Element
}

var _ Engine = (*Direct)(nil)

// Kind returns KindDirect.
func (d *Direct) Kind() Kind { return KindDirect }

// Load opens src on the element. The decoder is picked from src.Type, or from
// the URL extension when the type is empty.
func (d *Direct) Load(ctx context.Context, src Source) error {
	format := strings.ToLower(src.Type)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(src.URL)), ".")
	}
	return d.Open(ctx, src.URL, format)
}

// Release deinitializes the element.
func (d *Direct) Release(ctx context.Context) error {
	return d.Deinitialize(ctx)
}
