package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned by Probe for formats it cannot decode.
var ErrUnsupportedFormat = errors.New("media: unsupported image format")

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int
	Height int
}

// Ratio returns width divided by height, or 0 when unknown.
func (d Dimensions) Ratio() float64 {
	if d.Width <= 0 || d.Height <= 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// DimensionLookup resolves a base filename to its dimensions.
type DimensionLookup interface {
	Lookup(filename string) (Dimensions, bool)
}

// DimensionStore is a bounded, goroutine-safe filename to dimensions map. One
// store is created per run and passed explicitly to the stages that need it.
type DimensionStore struct {
	cache *lru.Cache[string, Dimensions]
}

// NewDimensionStore builds a store that keeps at most size entries.
func NewDimensionStore(size int) (*DimensionStore, error) {
	cache, err := lru.New[string, Dimensions](size)
	if err != nil {
		return nil, fmt.Errorf("create dimension cache: %w", err)
	}
	return &DimensionStore{cache: cache}, nil
}

// Put records dims for filename, keyed by its base filename.
func (s *DimensionStore) Put(filename string, dims Dimensions) {
	if s == nil || filename == "" {
		return
	}
	s.cache.Add(NormalizeFilename(filename), dims)
}

// Lookup implements DimensionLookup.
func (s *DimensionStore) Lookup(filename string) (Dimensions, bool) {
	if s == nil {
		return Dimensions{}, false
	}
	return s.cache.Get(NormalizeFilename(filename))
}

// Len reports the number of stored entries.
func (s *DimensionStore) Len() int {
	if s == nil {
		return 0
	}
	return s.cache.Len()
}

// Probe reads the image header from data and returns its size. SVG files are
// vector images and report ErrUnsupportedFormat.
func Probe(filename string, data []byte) (Dimensions, error) {
	if strings.EqualFold(path.Ext(filename), ".svg") {
		return Dimensions{}, ErrUnsupportedFormat
	}
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader decodes only the image header from r.
func ProbeReader(r io.Reader) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Dimensions{}, ErrUnsupportedFormat
		}
		return Dimensions{}, fmt.Errorf("decode image config: %w", err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
