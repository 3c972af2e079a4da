// Package cache implements the on-disk binary pixel cache.
//
// Each entry holds one fully decoded source image so later runs can skip
// decoding. Entries are keyed by the source file's base name and are never
// invalidated: once written, an entry is valid forever, and the first
// successful writer wins.
//
// # File Layout
//
// All integers are little-endian:
//
//	offset 0  int32  width
//	offset 4  int32  height
//	offset 8  uint8  allTransparent (0 or 1)
//	offset 9  width*height samples of uint8 red, green, blue, alpha
//
// There is no version header. Readers map the file and build a grid directly
// over the pixel bytes.
package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// HeaderSize is the number of bytes before the first pixel.
const HeaderSize = 9

// Suffix is appended to the source base name to form the entry file name.
const Suffix = ".cache"

var (
	// ErrCacheWrite is returned when an entry cannot be written. Callers treat
	// it as non-fatal.
	ErrCacheWrite = errors.New("cache write failed")

	// ErrCorrupt is returned for entries whose size does not match their
	// header.
	ErrCorrupt = errors.New("corrupt cache entry")
)

// Store is a cache directory.
type Store struct {
	// Dir is the directory holding entries. It is created on first write.
	Dir string
}

// New returns a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the entry file for the given source path.
func (s *Store) Path(src string) string {
	return filepath.Join(s.Dir, filepath.Base(src)+Suffix)
}

// Load returns the stored grid for src.
//
// A missing entry returns an error wrapping fs.ErrNotExist. On unix the
// returned grid is backed by a read-only mapping that is released by
// Grid.Close; every failure path releases the mapping before returning.
func (s *Store) Load(src string) (*imaging.Grid, error) {
	return load(s.Path(src))
}

// Save writes g as the entry for src unless one already exists.
//
// The entry is written to a temporary file in the cache directory and then
// linked into place, so readers never see a partially written entry and a
// concurrent writer that got there first is left alone.
func (s *Store) Save(src string, g *imaging.Grid) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}

	final := s.Path(src)
	if _, err := os.Stat(final); err == nil {
		return nil
	}

	tmp, err := os.CreateTemp(s.Dir, filepath.Base(src)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(Encode(g)); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}

	if err := os.Link(tmp.Name(), final); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return nil
}

// Encode serializes g in the entry layout.
func Encode(g *imaging.Grid) []byte {
	pix := g.Pix()
	buf := make([]byte, HeaderSize+len(pix))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(g.Width())))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(g.Height())))
	if g.AllTransparent() {
		buf[8] = 1
	}
	copy(buf[HeaderSize:], pix)
	return buf
}

// header is the decoded fixed part of an entry.
type header struct {
	width, height  int
	allTransparent bool
}

// parseHeader validates data against its header and returns it.
func parseHeader(data []byte) (header, error) {
	if len(data) < HeaderSize {
		return header{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(data))
	}
	h := header{
		width:          int(int32(binary.LittleEndian.Uint32(data[0:4]))),
		height:         int(int32(binary.LittleEndian.Uint32(data[4:8]))),
		allTransparent: data[8] != 0,
	}
	if h.width < 0 || h.height < 0 {
		return header{}, fmt.Errorf("%w: negative size %dx%d", ErrCorrupt, h.width, h.height)
	}
	if want := HeaderSize + h.width*h.height*4; len(data) != want {
		return header{}, fmt.Errorf("%w: %d bytes, want %d for %dx%d",
			ErrCorrupt, len(data), want, h.width, h.height)
	}
	return h, nil
}

// Decode builds an owned grid from an encoded entry.
func Decode(data []byte) (*imaging.Grid, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	pix := make([]byte, len(data)-HeaderSize)
	copy(pix, data[HeaderSize:])
	return imaging.NewMappedGrid(h.width, h.height, pix, h.allTransparent, nil)
}
