package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

const (
	fetchTimeout  = 30 * time.Second
	maxSourceSize = 10 * 1024 * 1024 // 10MB
)

// Source is the raw content of an import source.
type Source struct {
	// Name is a file-name stem derived from the source, used to name the
	// file written into the inherited tier.
	Name    string
	Content []byte
}

// ReadSource reads a local file, "-" for stdin, or an http(s) URL.
func ReadSource(ctx context.Context, src string, stdin io.Reader) (*Source, error) {
	switch {
	case src == "-":
		content, err := io.ReadAll(io.LimitReader(stdin, maxSourceSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return &Source{Name: "stdin", Content: content}, nil

	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		return fetchURL(ctx, src)

	default:
		content, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", src, err)
		}
		return &Source{Name: stem(filepath.Base(src)), Content: content}, nil
	}
}

func fetchURL(ctx context.Context, rawURL string) (*Source, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: server returned status %d", rawURL, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var name string
	if base := path.Base(u.Path); base != "/" && base != "." {
		name = stem(base)
	}
	if name == "" {
		name = safeName(u.Hostname())
	}
	return &Source{Name: name, Content: content}, nil
}

// stem strips the extension and any characters unsafe in a file name.
func stem(name string) string {
	return safeName(strings.TrimSuffix(name, path.Ext(name)))
}

// safeName replaces every character unsafe in a file name with a dash.
func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}

// formatRecords encodes records into a file written by WriteFile.
var formatRecords = instinct.Format

// ImportOptions controls which incoming records are accepted.
type ImportOptions struct {
	// DryRun reports what would be imported without writing.
	DryRun bool

	// Force accepts records whose id already exists in the store.
	Force bool

	// MinConfidence drops records below this confidence when set.
	// Missing confidence counts as instinct.DefaultConfidence.
	MinConfidence *float64
}

// SkipReason explains why an incoming record was not imported.
type SkipReason string

const (
	SkipDuplicate     SkipReason = "already exists"
	SkipLowConfidence SkipReason = "below minimum confidence"
)

// Skipped is an incoming record that was not imported.
type Skipped struct {
	Instinct *instinct.Instinct
	Reason   SkipReason
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Added   []*instinct.Instinct
	Skipped []Skipped
	// Path is the file written, empty for dry runs or when nothing was added.
	Path string
}

// Import parses src and writes the accepted records as one new file in dir.
// existing is the current store content used for duplicate detection.
func Import(src *Source, existing []*instinct.Instinct, dir string, opts ImportOptions) (*ImportResult, error) {
	parsed, err := instinct.Parse(string(src.Content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.Name, err)
	}

	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e.ID()] = true
	}

	result := &ImportResult{}
	for _, r := range instinct.Identified(parsed) {
		switch {
		case known[r.ID()] && !opts.Force:
			result.Skipped = append(result.Skipped, Skipped{Instinct: r, Reason: SkipDuplicate})
		case opts.MinConfidence != nil && r.ConfidenceOr(instinct.DefaultConfidence) < *opts.MinConfidence:
			result.Skipped = append(result.Skipped, Skipped{Instinct: r, Reason: SkipLowConfidence})
		default:
			known[r.ID()] = true
			result.Added = append(result.Added, r)
		}
	}

	if opts.DryRun || len(result.Added) == 0 {
		return result, nil
	}

	target, err := uniquePath(dir, src.Name)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(target, result.Added); err != nil {
		return nil, err
	}
	result.Path = target
	return result, nil
}

// WriteFile writes records to path in record format, failing if it exists.
func WriteFile(path string, records []*instinct.Instinct) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := formatRecords(f, records); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// uniquePath returns dir/name.yaml, adding -1, -2, ... on collision.
func uniquePath(dir, name string) (string, error) {
	if name == "" {
		name = "imported"
	}
	candidate := filepath.Join(dir, name+".yaml")
	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.yaml", name, n))
	}
}

// FilterOptions selects records for export.
type FilterOptions struct {
	// Domain keeps only records of this domain; records without a domain
	// belong to instinct.DefaultDomain.
	Domain string

	// MinConfidence keeps only records at or above this confidence.
	MinConfidence *float64
}

// Filter returns the records matching opts, in order.
func Filter(records []*instinct.Instinct, opts FilterOptions) []*instinct.Instinct {
	out := make([]*instinct.Instinct, 0, len(records))
	for _, r := range records {
		if opts.Domain != "" && r.DomainOr(instinct.DefaultDomain) != opts.Domain {
			continue
		}
		if opts.MinConfidence != nil && r.ConfidenceOr(instinct.DefaultConfidence) < *opts.MinConfidence {
			continue
		}
		out = append(out, r)
	}
	return out
}
