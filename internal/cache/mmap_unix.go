//go:build unix

package cache

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// load maps the entry at path read-only and builds a grid over the pixel
// bytes. The descriptor is closed before returning; the mapping lives until
// the grid is closed.
func load(path string) (*imaging.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := st.Size()
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrCorrupt, path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	h, err := parseHeader(data)
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}

	g, err := imaging.NewMappedGrid(h.width, h.height, data[HeaderSize:], h.allTransparent, func() error {
		return unix.Munmap(data)
	})
	if err != nil {
		unix.Munmap(data)
		return nil, err
	}
	return g, nil
}
