package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
	"github.com/fyrsmithlabs/homunculus/internal/logging"
)

// DefaultPattern matches record files inside a tier directory.
const DefaultPattern = "*.yaml"

var (
	// ErrIOFailure wraps errors reading a record file.
	ErrIOFailure = errors.New("instinct file unreadable")

	// ErrInvalidPattern is returned for a bad or recursive file pattern.
	ErrInvalidPattern = errors.New("invalid record file pattern")
)

// Tier is a directory of record files and the provenance its records get.
type Tier struct {
	Provenance instinct.Provenance
	Dir        string
}

// Warning records a file that was skipped during a load.
type Warning struct {
	File string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.File, w.Err)
}

// LoadResult is the outcome of a load. It always holds whatever could be
// loaded, even when some files failed.
type LoadResult struct {
	Instincts []*instinct.Instinct
	Warnings  []Warning
	Files     int
}

// CountBySource returns how many instincts came from the given tier.
func (r *LoadResult) CountBySource(p instinct.Provenance) int {
	n := 0
	for _, i := range r.Instincts {
		if i.SourceType == p {
			n++
		}
	}
	return n
}

// Option configures a Loader.
type Option func(*Loader)

// WithPattern sets the doublestar pattern matched against file names.
func WithPattern(pattern string) Option {
	return func(l *Loader) { l.pattern = pattern }
}

// WithLogger sets the logger receiving skip warnings.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// Loader reads every record file of a fixed list of tiers.
type Loader struct {
	tiers    []Tier
	pattern  string
	logger   *logging.Logger
	readFile func(string) ([]byte, error)
}

// NewLoader creates a loader over tiers, read in the order given.
//
// The pattern must be a valid doublestar pattern without a path separator;
// files are only enumerated directly inside each tier directory.
func NewLoader(tiers []Tier, opts ...Option) (*Loader, error) {
	l := &Loader{
		tiers:    tiers,
		pattern:  DefaultPattern,
		logger:   logging.NewNop(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(l)
	}

	if !doublestar.ValidatePattern(l.pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, l.pattern)
	}
	if strings.Contains(l.pattern, "/") {
		return nil, fmt.Errorf("%w: %q must not contain a path separator", ErrInvalidPattern, l.pattern)
	}
	return l, nil
}

// LoadAll reads, parses and tags every record file.
//
// Records are returned in file enumeration order: tier order, then file
// name order within a tier. Records without an id are dropped. A file that
// fails to read or parse contributes no records, is logged at warn level and
// reported in the result's Warnings; loading carries on with the next file.
func (l *Loader) LoadAll(ctx context.Context) *LoadResult {
	result := &LoadResult{}

	for _, tier := range l.tiers {
		files, err := l.enumerate(tier.Dir)
		if err != nil {
			l.warn(ctx, result, tier.Dir, err)
			continue
		}

		for _, path := range files {
			result.Files++
			records, err := l.loadFile(path, tier.Provenance)
			if err != nil {
				l.warn(ctx, result, path, err)
				continue
			}
			result.Instincts = append(result.Instincts, records...)
		}
	}

	l.logger.Debug(ctx, "loaded instincts",
		zap.Int("instincts", len(result.Instincts)),
		zap.Int("files", result.Files),
		zap.Int("warnings", len(result.Warnings)))

	return result
}

// enumerate lists matching files directly inside dir, sorted by name.
// A missing directory yields no files.
func (l *Loader) enumerate(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIOFailure, dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), l.pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	sort.Strings(matches)

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return files, nil
}

func (l *Loader) loadFile(path string, provenance instinct.Provenance) ([]*instinct.Instinct, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	content, err := l.readFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIOFailure, err)
	}

	parsed, err := instinct.Parse(string(content))
	if err != nil {
		return nil, err
	}

	records := instinct.Identified(parsed)
	for _, r := range records {
		r.SourceFile = abs
		r.SourceType = provenance
	}
	return records, nil
}

func (l *Loader) warn(ctx context.Context, result *LoadResult, file string, err error) {
	result.Warnings = append(result.Warnings, Warning{File: file, Err: err})
	l.logger.Warn(ctx, "skipping instinct file",
		zap.String("file", file),
		zap.Error(err))
}
