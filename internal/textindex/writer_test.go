package textindex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sha1n/washer/internal/analysis"
	"github.com/sha1n/washer/internal/domain"
)

// closeIndex is a helper to close an index in tests and fail on error
func closeIndex(t *testing.T, idx io.Closer) {
	t.Helper()
	if err := idx.Close(); err != nil {
		t.Errorf("Failed to close index: %v", err)
	}
}

func testChain() *analysis.Chain {
	return analysis.NewBuilder(analysis.Options{}).Build([]string{"en"})
}

// buildIndex creates and commits an index at dir holding docs, keyed by ID.
func buildIndex(t *testing.T, dir string, docs map[string]string) {
	t.Helper()

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer func() { _ = w.Discard() }()

	for id, content := range docs {
		doc := domain.Document{Path: id, Encoding: "utf-8", Content: content}
		if err := w.Add(id, doc); err != nil {
			t.Fatalf("Add(%q) failed: %v", id, err)
		}
	}
	if err := w.Commit(Metadata{BaseDir: "/base"}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func TestCreate_CommitMakesIndexVisible(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if Exists(dir) {
		t.Error("Index should not be visible before commit")
	}

	if err := w.Add("a.txt", domain.Document{Path: "a.txt", Encoding: "utf-8", Content: "apple"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if w.Count() != 1 {
		t.Errorf("Count() = %d, want 1", w.Count())
	}
	if err := w.Commit(Metadata{BaseDir: "/base"}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !Exists(dir) {
		t.Fatal("Index should exist after commit")
	}
	meta, ok, err := LoadMetadata(dir)
	if err != nil || !ok {
		t.Fatalf("LoadMetadata() = %v, %v", ok, err)
	}
	if meta.BaseDir != "/base" {
		t.Errorf("BaseDir = %q, want /base", meta.BaseDir)
	}

	entries, err := os.ReadDir(filepath.Dir(dir))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "idx" && e.Name() != "idx"+LockSuffix {
			t.Errorf("Unexpected leftover entry %q", e.Name())
		}
	}
}

func TestWriter_UseAfterClose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Commit(Metadata{}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := w.Add("x", domain.Document{}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Add after commit error = %v, want ErrWriterClosed", err)
	}
	if err := w.Commit(Metadata{}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Commit after commit error = %v, want ErrWriterClosed", err)
	}
	if err := w.Discard(); err != nil {
		t.Errorf("Discard after commit error = %v, want nil", err)
	}
}

func TestWriter_DiscardKeepsPreviousIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	buildIndex(t, dir, map[string]string{"old.txt": "banana"})

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Add("new.txt", domain.Document{Path: "new.txt", Content: "cherry"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := w.Discard(); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeIndex(t, r)

	count, err := r.DocumentCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("DocumentCount() = %d, want 1", count)
	}
}

func TestCreate_ReplacesPreviousIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	buildIndex(t, dir, map[string]string{"a.txt": "banana", "b.txt": "banana"})
	buildIndex(t, dir, map[string]string{"c.txt": "cherry"})

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeIndex(t, r)

	count, err := r.DocumentCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("DocumentCount() = %d, want 1", count)
	}
}

func TestCreate_RefusesNonIndexDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "precious.txt"), []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Create(dir, testChain(), Options{})
	if !errors.Is(err, ErrNotAnIndex) {
		t.Fatalf("Create() error = %v, want ErrNotAnIndex", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "precious.txt")); err != nil {
		t.Errorf("Existing file should be untouched: %v", err)
	}
}

func TestCreate_AcceptsEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Commit(Metadata{}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if !Exists(dir) {
		t.Error("Index should exist after commit")
	}
}

func TestCreate_LockedByConcurrentBuild(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer func() { _ = w.Discard() }()

	_, err = Create(dir, testChain(), Options{LockTimeout: 100 * time.Millisecond})
	if !errors.Is(err, ErrLockTimeout) {
		t.Errorf("Second Create() error = %v, want ErrLockTimeout", err)
	}
}

func TestWriter_FlushesLargeBatches(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	w, err := Create(dir, testChain(), Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer func() { _ = w.Discard() }()

	n := MaxBatchSize*2 + 7
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("files/%03d.txt", i)
		if err := w.Add(id, domain.Document{Path: id, Content: "kiwi"}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if err := w.Commit(Metadata{}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	r, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer closeIndex(t, r)

	count, err := r.DocumentCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != uint64(n) {
		t.Errorf("DocumentCount() = %d, want %d", count, n)
	}
}
