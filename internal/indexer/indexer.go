// Package indexer builds a fresh index from a list of files.
package indexer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sha1n/washer/internal/analysis"
	"github.com/sha1n/washer/internal/domain"
	"github.com/sha1n/washer/internal/textdecode"
	"github.com/sha1n/washer/internal/textindex"
)

var (
	// ErrNotFound is reported for paths that do not exist
	ErrNotFound = errors.New("not found")

	// ErrIsDirectory is reported for paths that name a directory
	ErrIsDirectory = errors.New("is a directory")
)

// Failure records a path that could not be indexed.
type Failure struct {
	Path string
	Err  error
}

// Report summarizes an indexing run.
type Report struct {
	IndexDir string
	// Indexed holds the absolute paths of the indexed files, in input order.
	Indexed  []string
	Failures []Failure
	// Committed is false when nothing was indexed and the previous index,
	// if any, was left as it was.
	Committed bool
}

// Count returns the number of indexed files.
func (r Report) Count() int {
	return len(r.Indexed)
}

// Config holds the dependencies of a Driver.
type Config struct {
	IndexDir string
	// BaseDir is recorded in the index and used to store paths relative to
	// it. Defaults to the working directory.
	BaseDir     string
	Decoder     *textdecode.Detector
	Builder     *analysis.Builder
	LockTimeout time.Duration
	// OnFile, if set, is called once per input path after it was processed.
	// err is nil when the file was added.
	OnFile func(path string, err error)
}

// Driver indexes files.
type Driver struct {
	cfg Config
}

// New creates a Driver. Missing decoder and builder take their defaults.
func New(cfg Config) *Driver {
	if cfg.Decoder == nil {
		cfg.Decoder = textdecode.Default()
	}
	if cfg.Builder == nil {
		cfg.Builder = analysis.NewBuilder(analysis.Options{})
	}
	return &Driver{cfg: cfg}
}

// IndexFiles replaces the index with one holding paths, analyzed for
// languages. Per-file problems are reported in the Report; the returned
// error is reserved for failures of the index itself.
func (d *Driver) IndexFiles(paths []string, languages []string) (report Report, err error) {
	indexDir, err := filepath.Abs(d.cfg.IndexDir)
	if err != nil {
		return Report{}, fmt.Errorf("failed to resolve index directory: %w", err)
	}
	baseDir, err := d.baseDir()
	if err != nil {
		return Report{}, err
	}
	report.IndexDir = indexDir

	chain := d.cfg.Builder.Build(languages)
	slog.Debug("Analysis chain built", "languages", chain.Languages(), "stages", len(chain.Stages()))
	slog.Debug("Decoding candidates", "encodings", d.cfg.Decoder.Names())

	writer, err := textindex.Create(indexDir, chain, textindex.Options{LockTimeout: d.cfg.LockTimeout})
	if err != nil {
		return report, err
	}
	defer func() {
		if derr := writer.Discard(); derr != nil && err == nil {
			err = derr
		}
	}()

	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		abs, ferr := d.indexFile(writer, path, baseDir, seen)
		if ferr != nil {
			var fileErr *fileError
			if !errors.As(ferr, &fileErr) {
				return report, ferr
			}
			report.Failures = append(report.Failures, Failure{Path: path, Err: fileErr.err})
			slog.Debug("File skipped", "path", path, "error", fileErr.err)
			d.notify(path, fileErr.err)
			continue
		}
		if abs != "" {
			report.Indexed = append(report.Indexed, abs)
		}
		d.notify(path, nil)
	}

	if report.Count() == 0 {
		slog.Info("No files indexed, keeping previous index", "dir", indexDir)
		return report, nil
	}

	if err := writer.Commit(textindex.Metadata{BaseDir: baseDir}); err != nil {
		return report, err
	}
	report.Committed = true

	slog.Info("Index committed", "dir", indexDir, "files", report.Count(), "failures", len(report.Failures))
	return report, nil
}

// fileError marks a per-file failure that does not abort the run.
type fileError struct {
	err error
}

func (e *fileError) Error() string {
	return e.err.Error()
}

// indexFile adds one file and returns its absolute path, or an empty path if
// the file was already added during this run.
func (d *Driver) indexFile(w *textindex.Writer, path, baseDir string, seen map[string]bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &fileError{err: err}
	}
	if seen[abs] {
		return "", nil
	}

	abs, data, err := ReadFile(abs)
	if err != nil {
		return "", &fileError{err: err}
	}

	decoded := d.cfg.Decoder.Decode(data)
	if decoded.Lossy {
		slog.Warn("File decoded with substitutions", "path", abs)
	}
	slog.Debug("File decoded", "path", abs, "encoding", decoded.Encoding, "lossy", decoded.Lossy)

	doc := domain.Document{
		Path:     textindex.RelativePath(abs, baseDir),
		Encoding: decoded.Encoding,
		Content:  decoded.Text,
	}
	if err := w.Add(abs, doc); err != nil {
		return "", err
	}

	seen[abs] = true
	return abs, nil
}

func (d *Driver) notify(path string, err error) {
	if d.cfg.OnFile != nil {
		d.cfg.OnFile(path, err)
	}
}

func (d *Driver) baseDir() (string, error) {
	if d.cfg.BaseDir != "" {
		return filepath.Abs(d.cfg.BaseDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// ReadFile resolves path to an absolute path and reads it. Missing files and
// directories are reported as ErrNotFound and ErrIsDirectory.
func ReadFile(path string) (abs string, data []byte, err error) {
	abs, err = filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil, ErrNotFound
		}
		return abs, nil, err
	}
	if info.IsDir() {
		return abs, nil, ErrIsDirectory
	}

	data, err = os.ReadFile(abs)
	if err != nil {
		return abs, nil, err
	}
	return abs, data, nil
}
