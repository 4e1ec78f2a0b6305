package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"novelweaver/models"
)

const (
	workspacesFile = "workspaces.json"
	activeIDFile   = "active_workspace"
)

// FileBackend keeps the two snapshot entries as two files in a data
// directory.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (f *FileBackend) Load() ([]models.Workspace, string, error) {
	raw, err := os.ReadFile(filepath.Join(f.dir, workspacesFile))
	if os.IsNotExist(err) {
		return []models.Workspace{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading workspaces snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, "", fmt.Errorf("parsing workspaces snapshot: %w", err)
	}
	if doc.SchemaVersion > SchemaVersion {
		return nil, "", fmt.Errorf("snapshot schema version %d is newer than supported %d", doc.SchemaVersion, SchemaVersion)
	}

	activeID := ""
	if raw, err := os.ReadFile(filepath.Join(f.dir, activeIDFile)); err == nil {
		activeID = strings.TrimSpace(string(raw))
	}

	return doc.Workspaces, activeID, nil
}

func (f *FileBackend) Save(workspaces []models.Workspace, activeID string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	doc := snapshotDocument{
		SchemaVersion: SchemaVersion,
		Workspaces:    workspaces,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing workspaces: %w", err)
	}

	if err := writeAtomic(filepath.Join(f.dir, workspacesFile), raw); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(f.dir, activeIDFile), []byte(activeID))
}

// writeAtomic avoids a torn snapshot if the process dies mid-write.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
