package textindex

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MetadataFilename is the sidecar file stored inside the index directory.
const MetadataFilename = "washer.meta"

const keyBaseDir = "basedir"

// Metadata records how stored paths are to be interpreted.
type Metadata struct {
	// BaseDir is the absolute working directory at indexing time. Relative
	// stored paths are resolved against it.
	BaseDir string
}

// LoadMetadata reads the sidecar from the index directory. The boolean is
// false when the index carries no sidecar, which is not an error.
func LoadMetadata(dir string) (Metadata, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, false, nil
		}
		return Metadata{}, false, fmt.Errorf("failed to read index metadata: %w", err)
	}

	var meta Metadata
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case keyBaseDir:
			meta.BaseDir = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Metadata{}, false, fmt.Errorf("failed to parse index metadata: %w", err)
	}

	return meta, true, nil
}

// Save writes the sidecar into dir atomically.
func (m Metadata) Save(dir string) error {
	if strings.ContainsAny(m.BaseDir, "\r\n") {
		return fmt.Errorf("base directory contains a line break: %q", m.BaseDir)
	}

	path := filepath.Join(dir, MetadataFilename)
	data := []byte(keyBaseDir + "=" + m.BaseDir + "\n")

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename metadata file: %w", err)
	}

	return nil
}
