// Package db persists the workspace collection. A snapshot is two keyed
// entries: the JSON-serialized workspace list and the active workspace id.
// Saves are whole-collection; there is no incremental persistence, which is a
// known scalability ceiling for very large libraries.
package db

import (
	"fmt"

	"novelweaver/logutils"
	"novelweaver/models"
)

// SchemaVersion is stored alongside the workspace collection so future
// versions can migrate old snapshots.
const SchemaVersion = 1

type snapshotDocument struct {
	SchemaVersion int                `json:"schema_version"`
	Workspaces    []models.Workspace `json:"workspaces"`
}

// Backend is a durable home for the two snapshot entries.
type Backend interface {
	Load() (workspaces []models.Workspace, activeID string, err error)
	Save(workspaces []models.Workspace, activeID string) error
}

// Open selects a backend by driver name.
func Open(driver, dataDir, databaseURL string) (Backend, error) {
	switch driver {
	case "", "file":
		return NewFileBackend(dataDir), nil
	case "postgres":
		return NewPostgresBackend(databaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// Restore loads a snapshot, falling back to an empty collection when the
// stored data is missing or malformed. It never fails to the caller.
func Restore(b Backend) ([]models.Workspace, string) {
	workspaces, activeID, err := b.Load()
	if err != nil {
		logutils.Log.WithError(err).Warn("failed to load workspaces from storage, starting empty")
		return []models.Workspace{}, ""
	}
	if workspaces == nil {
		workspaces = []models.Workspace{}
	}
	return workspaces, activeID
}
