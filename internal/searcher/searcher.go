// Package searcher runs queries against an index and turns hits into
// displayable matches with highlighted excerpts.
package searcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sha1n/washer/internal/domain"
	"github.com/sha1n/washer/internal/highlight"
	"github.com/sha1n/washer/internal/indexer"
	"github.com/sha1n/washer/internal/textdecode"
	"github.com/sha1n/washer/internal/textindex"
)

const (
	// DefaultLimit is the number of hits returned when no limit is set.
	DefaultLimit = 10

	// DefaultMoreLikeTerms is the number of key terms used to find similar documents.
	DefaultMoreLikeTerms = 10

	// DefaultTopTerms is the number of terms listed by Info.
	DefaultTopTerms = 10
)

// Config holds search parameters and dependencies.
type Config struct {
	IndexDir        string
	Limit           int
	DefaultOperator textindex.Operator
	MoreLikeTerms   int
	TopTerms        int
	Decoder         *textdecode.Detector
	Highlighter     *highlight.Highlighter
	// WorkDir is the directory display paths are made relative to.
	// Defaults to the working directory.
	WorkDir string
}

// Match is a search hit prepared for display.
type Match struct {
	// Path is the file path for display.
	Path string
	// Resolved is the path the file was looked up at.
	Resolved string
	Score    float64
	// Terms are the indexed terms that matched, sorted.
	Terms []string
	// Excerpt holds formatted fragments. It is empty when the file could not
	// be read or has changed so that no match location fits it anymore.
	Excerpt []string
}

// Outcome is the result of a search.
type Outcome struct {
	Query   string
	Matches []Match
	Count   Count
}

// FileError reports a file that could not be used as input.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Searcher is a read session on an index. Close must be called when done.
type Searcher struct {
	cfg    Config
	reader *textindex.Reader
}

// Open starts a read session on the index at cfg.IndexDir.
func Open(cfg Config) (*Searcher, error) {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.DefaultOperator == "" {
		cfg.DefaultOperator = textindex.OperatorAnd
	}
	if cfg.MoreLikeTerms <= 0 {
		cfg.MoreLikeTerms = DefaultMoreLikeTerms
	}
	if cfg.TopTerms <= 0 {
		cfg.TopTerms = DefaultTopTerms
	}
	if cfg.Decoder == nil {
		cfg.Decoder = textdecode.Default()
	}
	if cfg.Highlighter == nil {
		cfg.Highlighter = highlight.New(highlight.Options{}, highlight.PlainPalette())
	}
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	reader, err := textindex.Open(cfg.IndexDir)
	if err != nil {
		return nil, err
	}

	if _, ok := reader.Metadata(); !ok {
		slog.Debug("Index has no base directory, using stored paths as is", "dir", cfg.IndexDir)
	}

	return &Searcher{cfg: cfg, reader: reader}, nil
}

// Close ends the session.
func (s *Searcher) Close() error {
	return s.reader.Close()
}

// Search parses and runs text. A malformed query is returned as a
// *textindex.QuerySyntaxError.
func (s *Searcher) Search(ctx context.Context, text string) (*Outcome, error) {
	q, err := s.reader.ParseQuery(domain.FieldContent, text, s.cfg.DefaultOperator)
	if err != nil {
		return nil, err
	}

	res, err := s.reader.Search(ctx, q, s.cfg.Limit)
	if err != nil {
		return nil, err
	}

	return s.outcome(text, res)
}

// MoreLike finds documents similar to the file at path. A file that cannot
// be read is returned as a *FileError.
func (s *Searcher) MoreLike(ctx context.Context, path string) (*Outcome, error) {
	abs, data, err := indexer.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	decoded := s.cfg.Decoder.Decode(data)
	res, err := s.reader.MoreLike(ctx, abs, domain.FieldContent, decoded.Text, s.cfg.MoreLikeTerms, s.cfg.Limit)
	if err != nil {
		return nil, err
	}

	return s.outcome(path, res)
}

func (s *Searcher) outcome(query string, res *textindex.Results) (*Outcome, error) {
	var documents uint64
	if res.Failed > 0 {
		n, err := s.reader.DocumentCount()
		if err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
		documents = n
	}

	out := &Outcome{
		Query:   query,
		Matches: make([]Match, 0, len(res.Hits)),
		Count:   describeCount(res, documents),
	}

	meta, ok := s.reader.Metadata()
	for _, hit := range res.Hits {
		resolved := textindex.ResolvePath(hit.Path, meta, ok)
		out.Matches = append(out.Matches, Match{
			Path:     textindex.RelativePath(resolved, s.cfg.WorkDir),
			Resolved: resolved,
			Score:    hit.Score,
			Terms:    hit.MatchedTerms(),
			Excerpt:  s.excerpt(resolved, hit),
		})
	}
	return out, nil
}

// excerpt re-reads the file to highlight it. Any failure yields no excerpt.
func (s *Searcher) excerpt(path string, hit textindex.Hit) []string {
	if len(hit.Locations) == 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("Cannot highlight match", "path", path, "error", err)
		return nil
	}

	decoded := s.cfg.Decoder.DecodeAs(hit.Encoding, data)
	fragments := s.cfg.Highlighter.Excerpt(decoded.Text, hit.Locations)
	if len(fragments) == 0 {
		slog.Debug("Match locations do not fit the file anymore", "path", path)
	}
	return fragments
}

// Info describes the index.
type Info struct {
	IndexDir string
	// BaseDir is empty when the index records none.
	BaseDir   string
	Documents uint64
	TopTerms  []textindex.TermStats
	// Terms holds statistics for the analyzed forms of the requested terms.
	Terms []textindex.TermStats
}

// Info reports index statistics, including per-term statistics for terms.
func (s *Searcher) Info(ctx context.Context, terms ...string) (*Info, error) {
	docs, err := s.reader.DocumentCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	top, err := s.reader.TopTerms(domain.FieldContent, s.cfg.TopTerms)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(s.reader.Dir())
	if err != nil {
		dir = s.reader.Dir()
	}
	meta, _ := s.reader.Metadata()

	info := &Info{
		IndexDir:  dir,
		BaseDir:   meta.BaseDir,
		Documents: docs,
		TopTerms:  top,
	}

	for _, term := range terms {
		stats, err := s.reader.TermStats(ctx, domain.FieldContent, term)
		if err != nil {
			return nil, err
		}
		info.Terms = append(info.Terms, stats...)
	}
	return info, nil
}

// TermStats reports statistics for the analyzed forms of term. It is empty
// when analysis removes the term entirely, as for stop words.
func (s *Searcher) TermStats(ctx context.Context, term string) ([]textindex.TermStats, error) {
	return s.reader.TermStats(ctx, domain.FieldContent, term)
}
