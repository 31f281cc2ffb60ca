package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements the Store interface using filesystem-based
// persistence. Designs live in a directory structure
// <baseDir>/designs/<id>/ with design.json, matrix.csv and trace.jsonl.
//
// Thread-safety: atomic file operations (rename) only, no locks needed.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a new filesystem-based store.
// The baseDir is created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

// designDir returns the directory path for a given design ID.
func (fs *FSStore) designDir(id string) string {
	return filepath.Join(fs.baseDir, "designs", id)
}

// designPath returns the path to the design.json file.
func (fs *FSStore) designPath(id string) string {
	return filepath.Join(fs.designDir(id), "design.json")
}

// SaveDesign atomically saves a design using the temp file + rename
// pattern, and writes a matrix.csv next to it for spreadsheet use.
func (fs *FSStore) SaveDesign(id string, d *SavedDesign) error {
	if id == "" {
		return fmt.Errorf("design ID cannot be empty")
	}
	if d == nil {
		return fmt.Errorf("design cannot be nil")
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid design: %w", err)
	}

	dir := fs.designDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create design directory: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize design: %w", err)
	}

	tempPath := fs.designPath(id) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp design file: %w", err)
	}
	finalPath := fs.designPath(id)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename design file: %w", err)
	}

	csvPath := filepath.Join(dir, "matrix.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create matrix.csv: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, d.Names, d.Matrix); err != nil {
		return fmt.Errorf("failed to write matrix.csv: %w", err)
	}

	slog.Debug("Design saved", "id", id, "path", finalPath)
	return nil
}

// LoadDesign retrieves the design with the given ID.
func (fs *FSStore) LoadDesign(id string) (*SavedDesign, error) {
	if id == "" {
		return nil, fmt.Errorf("design ID cannot be empty")
	}

	path := fs.designPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{ID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat design file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}

	var d SavedDesign
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to deserialize design: %w", err)
	}

	slog.Debug("Design loaded", "id", id, "path", path)
	return &d, nil
}

// ListDesigns returns metadata for all stored designs.
func (fs *FSStore) ListDesigns() ([]DesignInfo, error) {
	designsDir := filepath.Join(fs.baseDir, "designs")

	if _, err := os.Stat(designsDir); os.IsNotExist(err) {
		return []DesignInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat designs directory: %w", err)
	}

	entries, err := os.ReadDir(designsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read designs directory: %w", err)
	}

	var infos []DesignInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if _, err := os.Stat(fs.designPath(id)); os.IsNotExist(err) {
			continue
		}
		d, err := fs.LoadDesign(id)
		if err != nil {
			slog.Warn("Failed to load design for listing", "id", id, "error", err)
			continue
		}
		infos = append(infos, d.ToInfo())
	}

	slog.Debug("Listed designs", "count", len(infos))
	return infos, nil
}

// DeleteDesign removes the design directory and all its artifacts.
func (fs *FSStore) DeleteDesign(id string) error {
	if id == "" {
		return fmt.Errorf("design ID cannot be empty")
	}

	dir := fs.designDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{ID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat design directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove design directory: %w", err)
	}

	slog.Debug("Design deleted", "id", id, "path", dir)
	return nil
}
