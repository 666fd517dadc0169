package textindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockSuffix is appended to an index directory to form its lock file path.
const LockSuffix = ".lock"

var (
	// ErrLockTimeout indicates another process kept the index locked for longer than the timeout
	ErrLockTimeout = errors.New("index is locked by another process")
)

// FileLock serializes index builds across processes. It wraps an advisory
// flock(2) lock on a file beside the index directory, so the lock survives
// the directory being swapped out.
// The lock is released automatically if the process exits or crashes.
type FileLock struct {
	path  string
	flock *flock.Flock
}

// NewFileLock creates a lock guarding the index at dir.
func NewFileLock(dir string) *FileLock {
	path := filepath.Clean(dir) + LockSuffix
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns false without error when another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return acquired, nil
}

// Lock acquires the lock, waiting up to timeout for another holder to
// release it. Returns ErrLockTimeout if the timeout expires first.
func (l *FileLock) Lock(timeout time.Duration) error {
	return l.LockWithContext(context.Background(), timeout)
}

// LockWithContext is like Lock but also stops waiting when ctx is canceled.
func (l *FileLock) LockWithContext(ctx context.Context, timeout time.Duration) error {
	if err := l.ensureDir(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acquired, err := l.flock.TryLockContext(ctx, 50*time.Millisecond)
	if acquired {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || err == nil {
		return fmt.Errorf("%w: %s", ErrLockTimeout, l.path)
	}
	return fmt.Errorf("failed to acquire lock: %w", err)
}

// Unlock releases the lock. It is safe to call on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

func (l *FileLock) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	return nil
}
