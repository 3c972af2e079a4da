package cli

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ironsheep/img-diff/internal/imaging"
)

// ErrInvalidArgument is returned for command line values that cannot be
// used: malformed numbers, unknown modes, options that do not apply to the
// selected mode.
var ErrInvalidArgument = errors.New("invalid argument")

// Comparison modes.
const (
	ModeFind   = "find"
	ModeChunks = "chunks"
)

// CacheEnv names the environment variable that provides the default cache
// directory.
const CacheEnv = "IMG_DIFF_CACHE"

// Config holds all the configuration parameters for one run, parsed from
// command-line flags.
type Config struct {
	Mode string

	// ThresholdArg is the raw --threshold value and Threshold its parsed,
	// raw-unit form.
	ThresholdArg string
	Threshold    float64

	CacheDir string
	MinSize  int
	Range    int

	// HintArg is the raw --hint value; Hint is set when it was given.
	HintArg string
	Hint    *image.Point

	DiffImage string
	Verbose   int
	Help      bool

	// First and Second are the two positional image arguments: needle and
	// haystack in find mode, A and B in chunks mode.
	First  string
	Second string
}

// ParseThreshold converts a --threshold value to raw distance units.
//
// A plain float is taken as-is. A value ending in "%" is a percentage of the
// 0-256 channel range and is converted with p*256/100. Negative or malformed
// values wrap ErrInvalidArgument.
func ParseThreshold(s string) (float64, error) {
	t := strings.TrimSpace(s)
	percent := strings.HasSuffix(t, "%")
	if percent {
		t = strings.TrimSuffix(t, "%")
	}

	v, err := strconv.ParseFloat(t, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid threshold (%s), must be positive float value", ErrInvalidArgument, s)
	}
	if percent {
		v = imaging.PercentThreshold(v)
	}
	return v, nil
}

// parseHint parses "x,y" into a point with non-negative coordinates.
func parseHint(s string) (image.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return image.Point{}, fmt.Errorf("%w: hint %q must be x,y", ErrInvalidArgument, s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(xs))
	y, errY := strconv.Atoi(strings.TrimSpace(ys))
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return image.Point{}, fmt.Errorf("%w: hint %q must be two non-negative integers", ErrInvalidArgument, s)
	}
	return image.Pt(x, y), nil
}

// Validate checks option values and fills in the parsed fields. Every
// failure wraps ErrInvalidArgument.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFind, ModeChunks:
	default:
		return fmt.Errorf("%w: unsupported mode %q. Supported modes are find, chunks", ErrInvalidArgument, c.Mode)
	}

	t, err := ParseThreshold(c.ThresholdArg)
	if err != nil {
		return err
	}
	c.Threshold = t

	if c.MinSize < 1 {
		return fmt.Errorf("%w: --min-size must be a positive integer", ErrInvalidArgument)
	}
	if c.Range < 0 {
		return fmt.Errorf("%w: --range must not be negative", ErrInvalidArgument)
	}

	if c.HintArg != "" {
		if c.Mode != ModeFind {
			return fmt.Errorf("%w: --hint only applies to find mode", ErrInvalidArgument)
		}
		p, err := parseHint(c.HintArg)
		if err != nil {
			return err
		}
		c.Hint = &p
	}

	if c.DiffImage != "" && c.Mode != ModeChunks {
		return fmt.Errorf("%w: --diff-image only applies to chunks mode", ErrInvalidArgument)
	}
	return nil
}
