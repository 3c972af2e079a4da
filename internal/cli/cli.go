// Package cli implements the img-diff command line front end.
//
// Run parses arguments with pflag, loads both images through an
// imaging.Loader (optionally backed by the disk cache), runs the selected
// matcher and maps the outcome to an exit status:
//
//   - find mode prints the matching rectangle and exits 0, or exits 1 when
//     the needle does not occur in the haystack
//   - chunks mode prints the merged match pairs followed by the unmatched
//     area and exits 0 only when the images are fully equivalent
//   - any error prints a diagnostic on stderr and exits 1
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ironsheep/img-diff/internal/cache"
	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/logger"
	"github.com/ironsheep/img-diff/internal/matching"
)

// Exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// newFlagSet binds the command line flags to cfg.
func newFlagSet(cfg *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("img-diff", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVar(&cfg.Mode, "mode", ModeFind, "Comparison mode: find (needle in haystack) or chunks (region equivalence).")
	fs.StringVarP(&cfg.ThresholdArg, "threshold", "t", "0", "Largest tolerated per-pixel distance, raw or with a % suffix.")
	fs.StringVar(&cfg.CacheDir, "cache", os.Getenv(CacheEnv), "Directory for binary pixel caches (default $"+CacheEnv+").")
	fs.IntVar(&cfg.MinSize, "min-size", 1, "Smallest chunk width or height to compare (chunks mode).")
	fs.IntVar(&cfg.Range, "range", 0, "Neighbor range in cells searched in the second image (chunks mode).")
	fs.StringVar(&cfg.HintArg, "hint", "", "Probe this x,y origin before scanning (find mode).")
	fs.StringVar(&cfg.DiffImage, "diff-image", "", "Write a PNG overlay of the comparison to this path (chunks mode).")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Be verbose. Repeat for more detail.")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Print this help message.")
	return fs
}

// usage writes the synopsis and flag defaults to w.
func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "img-diff [options...] <needle|imageA> <haystack|imageB>")
	fmt.Fprintln(w, "img-diff serve")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images may carry a sub-rectangle suffix: path:x,y+wxh")
	fmt.Fprintln(w)
	fmt.Fprint(w, fs.FlagUsages())
}

// ParseArgs parses args (without the program name) into a validated Config.
//
// When --help is given the returned Config has Help set and no further
// validation is done.
func ParseArgs(args []string) (*Config, *pflag.FlagSet, error) {
	cfg := &Config{}
	fs := newFlagSet(cfg)

	if err := fs.Parse(args); err != nil {
		return nil, fs, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if cfg.Help {
		return cfg, fs, nil
	}

	switch pos := fs.Args(); {
	case len(pos) > 2:
		return nil, fs, fmt.Errorf("%w: too many args", ErrInvalidArgument)
	case len(pos) < 2:
		return nil, fs, fmt.Errorf("%w: not enough args", ErrInvalidArgument)
	default:
		cfg.First, cfg.Second = pos[0], pos[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fs, err
	}
	return cfg, fs, nil
}

// Run executes one img-diff invocation and returns its exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	cfg, fs, err := ParseArgs(args)
	if err != nil {
		usage(stderr, fs)
		fmt.Fprintf(stderr, "img-diff: %v\n", err)
		return ExitFailure
	}
	if cfg.Help {
		usage(stdout, fs)
		return ExitOK
	}

	log := logger.New(stderr, cfg.Verbose)

	var store imaging.GridStore
	if cfg.CacheDir != "" {
		store = cache.New(cfg.CacheDir)
	}
	loader := imaging.NewLoader(store, log)

	var code int
	switch cfg.Mode {
	case ModeChunks:
		code, err = runChunks(cfg, loader, log, stdout, stderr)
	default:
		code, err = runFind(cfg, loader, log, stdout)
	}
	if err != nil {
		if errors.Is(err, imaging.ErrBadRectangle) {
			usage(stderr, fs)
		}
		fmt.Fprintf(stderr, "img-diff: %v\n", err)
		return ExitFailure
	}
	return code
}

// runFind locates the first image inside the second.
func runFind(cfg *Config, loader *imaging.Loader, log *logger.Logger, stdout io.Writer) (int, error) {
	needle, err := loader.Load(cfg.First)
	if err != nil {
		return ExitFailure, fmt.Errorf("failed to decode needle: %w", err)
	}
	defer needle.Close()

	// Checked before the haystack is even loaded.
	if needle.AllTransparent() {
		fmt.Fprintln(stdout, imaging.Region{})
		return ExitOK, nil
	}

	haystack, err := loader.Load(cfg.Second)
	if err != nil {
		return ExitFailure, fmt.Errorf("failed to decode haystack: %w", err)
	}
	defer haystack.Close()

	if log.V(3) {
		dumpGrid(log, "NEEDLE", needle)
		dumpGrid(log, "HAYSTACK", haystack)
	}

	match, found, err := matching.Find(needle, haystack, matching.FindOptions{
		Threshold: cfg.Threshold,
		Hint:      cfg.Hint,
		Log:       log,
	})
	if err != nil {
		return ExitFailure, err
	}
	if !found {
		return ExitFailure, nil
	}

	fmt.Fprintln(stdout, match)
	return ExitOK, nil
}

// runChunks compares the two images region by region.
func runChunks(cfg *Config, loader *imaging.Loader, log *logger.Logger, stdout, stderr io.Writer) (int, error) {
	a, err := loader.Load(cfg.First)
	if err != nil {
		return ExitFailure, fmt.Errorf("failed to decode first image: %w", err)
	}
	defer a.Close()

	b, err := loader.Load(cfg.Second)
	if err != nil {
		return ExitFailure, fmt.Errorf("failed to decode second image: %w", err)
	}
	defer b.Close()

	res, err := matching.MatchChunks(a, b, matching.ChunkOptions{
		Threshold: cfg.Threshold,
		MinSize:   cfg.MinSize,
		Range:     cfg.Range,
		Log:       log,
	})
	if err != nil {
		return ExitFailure, err
	}

	merged := matching.Merge(res.Matches)
	for _, p := range merged {
		fmt.Fprintln(stdout, p)
	}
	for _, r := range res.Unmatched {
		fmt.Fprintf(stdout, "unmatched %s\n", imaging.FormatRect(r))
	}

	if cfg.DiffImage != "" {
		if err := imaging.SaveOverlay(cfg.DiffImage, imaging.DiffOverlay(a, merged, res.Unmatched)); err != nil {
			return ExitFailure, err
		}
		log.Debugf(1, "Wrote diff overlay to %s", cfg.DiffImage)
	}

	if log.V(1) {
		fmt.Fprint(stderr, Summary(a, res, merged))
	}
	if log.V(2) {
		for _, r := range res.Unmatched {
			cmp, err := imaging.CompareRegions(imaging.Region{Rect: r, Grid: a}, imaging.Region{Rect: r, Grid: b}, cfg.Threshold)
			if err != nil {
				continue
			}
			log.Printf("Unmatched %s: %d/%d pixels differ, max distance %.2f",
				imaging.FormatRect(r), cmp.PixelsDifferent, cmp.TotalPixels, cmp.MaxDistance)
		}
	}

	if !res.Equivalent() {
		return ExitFailure, nil
	}
	return ExitOK, nil
}

// dumpGrid writes every pixel of g as rrggbbaa, one grid row per line.
func dumpGrid(log *logger.Logger, name string, g *imaging.Grid) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %dx%d", name, g.Width(), g.Height())
	for y := 0; y < g.Height(); y++ {
		sb.WriteString("\n")
		for x := 0; x < g.Width(); x++ {
			if x > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(g.At(x, y).String())
		}
	}
	log.Printf("%s", sb.String())
}
