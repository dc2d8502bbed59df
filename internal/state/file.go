package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists the document as a JSON file.
//
// Writes go through a temp file and rename, which is atomic enough for the
// single-writer assumption; no partial-write recovery guarantee is made.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed store at path.
// A nil logger falls back to slog.Default().
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads and decodes the document. Missing, unreadable, or malformed
// files yield a fresh empty state; the failure is logged, never raised.
func (fs *FileStore) Load() *State {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Warn("state file unreadable, starting empty",
				"path", fs.path, "error", err)
		}
		return NewState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		fs.logger.Warn("state file malformed, starting empty",
			"path", fs.path, "error", err)
		return NewState()
	}
	return st.normalize()
}

// Save serializes the complete document and replaces the backing file.
func (fs *FileStore) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, fs.path)
}
