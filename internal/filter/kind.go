// Package filter applies per-frame pixel transforms to RGBA buffers.
package filter

import (
	"errors"
	"fmt"
)

// Kind selects the active transform.
type Kind string

const (
	KindNone      Kind = "none"
	KindGrayscale Kind = "grayscale"
	KindSepia     Kind = "sepia"
	KindVintage   Kind = "vintage"
	KindColorPop  Kind = "colorPop"
	KindBeauty    Kind = "beauty"
)

// ErrUnknownKind is returned for a filter name outside the closed set.
var ErrUnknownKind = errors.New("unknown filter")

var kinds = []Kind{KindNone, KindGrayscale, KindSepia, KindVintage, KindColorPop, KindBeauty}

// Kinds returns every filter in navigation order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// ParseKind returns the filter named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Index returns the position of k in navigation order, or -1.
func (k Kind) Index() int {
	for i, c := range kinds {
		if c == k {
			return i
		}
	}
	return -1
}

// Next returns the filter after k, wrapping from the last back to none.
func (k Kind) Next() Kind {
	return kinds[(k.Index()+1)%len(kinds)]
}
