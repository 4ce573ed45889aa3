// Package fonts provides the label fonts embedded in the binary.
//
// Labels and timing markers are drawn with the Go font family from
// golang.org/x/image, parsed once into a gg font source and shared by every
// renderer.
package fonts

import (
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Family names an embedded family.
type Family string

const (
	Regular Family = "regular"
	Bold    Family = "bold"
	Mono    Family = "mono"
)

var (
	sources   = map[Family]*text.FontSource{}
	sourcesMu sync.Mutex
)

func ttf(f Family) []byte {
	switch f {
	case Bold:
		return gobold.TTF
	case Mono:
		return gomono.TTF
	default:
		return goregular.TTF
	}
}

// Source returns the parsed font source for family, parsing it on first use.
func Source(f Family) (*text.FontSource, error) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	if src, ok := sources[f]; ok {
		return src, nil
	}
	src, err := text.NewFontSource(ttf(f))
	if err != nil {
		return nil, err
	}
	sources[f] = src
	return src, nil
}

// Face returns a face of family at size (in pixels).
func Face(f Family, size float64) (text.Face, error) {
	src, err := Source(f)
	if err != nil {
		return nil, err
	}
	return src.Face(size), nil
}
