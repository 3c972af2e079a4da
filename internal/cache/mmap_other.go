//go:build !unix

package cache

import (
	"os"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// load reads the entry at path into memory. Platforms without mmap get an
// owned grid whose Close is a no-op.
func load(path string) (*imaging.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
