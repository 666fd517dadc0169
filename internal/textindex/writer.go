package textindex

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/sha1n/washer/internal/analysis"
	"github.com/sha1n/washer/internal/domain"
)

const (
	// MaxBatchSize is the maximum number of documents per batch
	MaxBatchSize = 100

	// MaxBatchBytes is the maximum bytes per batch (10MB)
	MaxBatchBytes = 10 * 1024 * 1024

	// DefaultLockTimeout is how long Create waits for a concurrent build to finish.
	DefaultLockTimeout = 10 * time.Second

	indexMetaFilename = "index_meta.json"
	stagingIndexName  = "index"
	previousIndexName = "previous"
)

var (
	// ErrNotAnIndex is returned when the target directory holds something other than an index
	ErrNotAnIndex = errors.New("directory exists and is not an index")

	// ErrWriterClosed is returned when using a writer after Commit or Discard
	ErrWriterClosed = errors.New("index writer is closed")
)

// Options configures index creation.
type Options struct {
	LockTimeout time.Duration
}

// Writer is a write-exclusive session building a fresh index. Documents are
// written to a staging directory; Commit swaps it into place, so readers see
// either the previous index or the complete new one.
type Writer struct {
	dir        string
	staging    string
	path       string
	index      bleve.Index
	batch      *bleve.Batch
	batchBytes int
	count      int
	lock       *FileLock
	closed     bool
}

// Exists reports whether dir holds an index.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, indexMetaFilename))
	return err == nil
}

// Create starts building a new index that will replace whatever index is at
// dir. Exactly one of Commit or Discard must follow; deferring Discard is
// safe since it is a no-op after Commit.
func Create(dir string, chain *analysis.Chain, opts Options) (w *Writer, err error) {
	dir = filepath.Clean(dir)
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index parent directory: %w", err)
	}

	lock := NewFileLock(dir)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !acquired {
		slog.Info("Index is being built by another process, waiting", "lock", lock.Path(), "timeout", opts.LockTimeout)
		if err := lock.Lock(opts.LockTimeout); err != nil {
			return nil, err
		}
	}
	defer func() {
		if err != nil {
			_ = lock.Unlock()
		}
	}()

	if err := checkReplaceable(dir); err != nil {
		return nil, err
	}

	indexMapping, err := NewMapping(chain)
	if err != nil {
		return nil, err
	}

	staging, err := os.MkdirTemp(filepath.Dir(dir), "."+filepath.Base(dir)+".staging-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	path := filepath.Join(staging, stagingIndexName)
	index, err := bleve.New(path, indexMapping)
	if err != nil {
		_ = os.RemoveAll(staging)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	slog.Debug("Index build started", "dir", dir, "staging", staging, "languages", chain.Languages())

	return &Writer{
		dir:     dir,
		staging: staging,
		path:    path,
		index:   index,
		batch:   index.NewBatch(),
		lock:    lock,
	}, nil
}

// checkReplaceable refuses to replace anything but a missing directory, an
// empty one, or an existing index.
func checkReplaceable(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat index directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotAnIndex, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read index directory: %w", err)
	}
	if len(entries) == 0 || Exists(dir) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotAnIndex, dir)
}

// Dir returns the directory the index is committed to.
func (w *Writer) Dir() string {
	return w.dir
}

// Count returns the number of documents added so far.
func (w *Writer) Count() int {
	return w.count
}

// Add indexes doc under id.
func (w *Writer) Add(id string, doc domain.Document) error {
	if w.closed {
		return ErrWriterClosed
	}

	if err := w.batch.Index(id, doc); err != nil {
		return fmt.Errorf("failed to index %s: %w", id, err)
	}
	w.count++
	w.batchBytes += len(doc.Content)

	if w.batch.Size() >= MaxBatchSize || w.batchBytes >= MaxBatchBytes {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.batch.Size() == 0 {
		return nil
	}
	if err := w.index.Batch(w.batch); err != nil {
		return fmt.Errorf("batch index failed: %w", err)
	}
	w.batch = w.index.NewBatch()
	w.batchBytes = 0
	return nil
}

// Commit makes the new index visible at Dir, replacing the previous one, and
// records meta alongside it. On failure the previous index is left in place.
func (w *Writer) Commit(meta Metadata) (err error) {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true
	defer w.release()

	if err := w.flush(); err != nil {
		_ = w.index.Close()
		return err
	}
	if err := w.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	if err := meta.Save(w.path); err != nil {
		return err
	}

	if err := swap(w.path, w.dir, filepath.Join(w.staging, previousIndexName)); err != nil {
		return err
	}

	slog.Debug("Index committed", "dir", w.dir, "documents", w.count)
	return nil
}

// Discard abandons the build. The index at Dir is untouched.
func (w *Writer) Discard() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer w.release()

	if err := w.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}

	slog.Debug("Index build discarded", "dir", w.dir)
	return nil
}

func (w *Writer) release() {
	if err := os.RemoveAll(w.staging); err != nil {
		slog.Warn("Failed to remove staging directory", "path", w.staging, "error", err)
	}
	if err := w.lock.Unlock(); err != nil {
		slog.Warn("Failed to release index lock", "path", w.lock.Path(), "error", err)
	}
}

// swap moves src to dst, parking any existing dst at backup and restoring it
// if the move fails.
func swap(src, dst, backup string) error {
	parked := false
	if _, err := os.Stat(dst); err == nil {
		if err := os.Rename(dst, backup); err != nil {
			return fmt.Errorf("failed to move previous index aside: %w", err)
		}
		parked = true
	}

	if err := os.Rename(src, dst); err != nil {
		if parked {
			if rerr := os.Rename(backup, dst); rerr != nil {
				slog.Error("Failed to restore previous index", "path", dst, "error", rerr)
			}
		}
		return fmt.Errorf("failed to install new index: %w", err)
	}
	return nil
}
