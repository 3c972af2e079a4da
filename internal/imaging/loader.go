package imaging

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/img-diff/internal/logger"
)

// GridStore is a persistent snapshot store for decoded grids, keyed by source
// path. The on-disk pixel cache implements it.
//
// Load must return an error wrapping fs.ErrNotExist when no entry exists. A
// grid returned by Load may be backed by a mapping and is closed by the
// caller.
type GridStore interface {
	Load(path string) (*Grid, error)
	Save(path string, g *Grid) error
}

// Loader turns image arguments into grids.
//
// Decoded rasters are kept in an in-process cache keyed by path so repeated
// loads of the same file (for example several crops of one screenshot) decode
// it only once. When a GridStore is configured, full-image grids are also
// persisted there and read back on later runs without decoding.
//
// Loader is safe for concurrent use.
//
// # Ownership
//
// Every *Grid returned by Load is a fresh value owned by the caller, who
// should Close it when done. Closing is required for grids served from a
// mapped GridStore entry and harmless otherwise.
type Loader struct {
	mu      sync.RWMutex
	decoded map[string]image.Image
	store   GridStore
	log     *logger.Logger
}

// NewLoader creates a Loader. store and log may both be nil.
func NewLoader(store GridStore, log *logger.Logger) *Loader {
	return &Loader{
		decoded: make(map[string]image.Image),
		store:   store,
		log:     log,
	}
}

// Decode retrieves a decoded image from the in-process cache or decodes it
// from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. Failures wrap
// ErrDecode.
func (l *Loader) Decode(path string) (image.Image, error) {
	l.mu.RLock()
	if img, ok := l.decoded[path]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrDecode, path, err)
	}

	l.mu.Lock()
	l.decoded[path] = img
	l.mu.Unlock()

	return img, nil
}

// Load parses arg (see ParseSource) and returns the selected grid.
func (l *Loader) Load(arg string) (*Grid, error) {
	src, err := ParseSource(arg)
	if err != nil {
		return nil, err
	}
	return l.LoadSource(src)
}

// LoadSource returns the grid for src.
//
// Lookup order:
//  1. the GridStore, if configured; a crop of a stored grid is copied out and
//     the stored mapping is released before returning
//  2. decoding the file; with a GridStore the full grid is written back, and
//     a failed write is logged and otherwise ignored
//
// A crop rectangle outside the image wraps ErrBadRectangle.
func (l *Loader) LoadSource(src Source) (*Grid, error) {
	if l.store != nil {
		g, err := l.store.Load(src.Path)
		switch {
		case err == nil:
			l.log.Debugf(1, "Read from cache for %s", src.Path)
			return l.selectRect(g, src)
		case errors.Is(err, fs.ErrNotExist):
		default:
			l.log.Debugf(1, "Ignoring cache entry for %s: %v", src.Path, err)
		}
	}

	img, err := l.Decode(src.Path)
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		full := FromImage(img)
		if err := l.store.Save(src.Path, full); err != nil {
			l.log.Printf("Failed to write cache for %s: %v", src.Path, err)
		} else {
			l.log.Debugf(1, "Wrote to cache for %s", src.Path)
		}
		return l.selectRect(full, src)
	}

	if src.HasRect {
		img, err = Crop(img, src.Rect)
		if err != nil {
			return nil, err
		}
	}
	return FromImage(img), nil
}

// selectRect applies the crop of src to g. When a copy is made g is closed.
func (l *Loader) selectRect(g *Grid, src Source) (*Grid, error) {
	if !src.HasRect {
		return g, nil
	}
	sub, err := g.Sub(src.Rect)
	if err != nil {
		g.Close()
		return nil, err
	}
	if sub != g {
		if err := g.Close(); err != nil {
			l.log.Printf("Failed to release cache mapping for %s: %v", src.Path, err)
		}
	}
	return sub, nil
}

// Clear removes all decoded images from the in-process cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.decoded = make(map[string]image.Image)
	l.mu.Unlock()
}

// Evict removes a specific path from the in-process cache. The GridStore is
// left untouched: stored entries are never invalidated.
func (l *Loader) Evict(path string) {
	l.mu.Lock()
	delete(l.decoded, path)
	l.mu.Unlock()
}

// ImageInfo describes a loaded grid.
type ImageInfo struct {
	// Width is the grid width in pixels (the crop width when one was given).
	Width int `json:"width"`

	// Height is the grid height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// AllTransparent reports whether every selected pixel has alpha 0.
	AllTransparent bool `json:"all_transparent"`

	// FileSizeBytes is the size of the source file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads arg through l and describes the result.
func LoadImageInfo(l *Loader, arg string) (*ImageInfo, error) {
	src, err := ParseSource(arg)
	if err != nil {
		return nil, err
	}
	g, err := l.LoadSource(src)
	if err != nil {
		return nil, err
	}
	defer g.Close()

	stat, err := os.Stat(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:          g.Width(),
		Height:         g.Height(),
		Format:         formatFromExt(src.Path),
		AllTransparent: g.AllTransparent(),
		FileSizeBytes:  stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
