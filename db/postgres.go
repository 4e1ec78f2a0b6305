package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"novelweaver/models"
)

const (
	keyWorkspaces = "workspaces"
	keyActiveID   = "active_workspace_id"
)

type snapshotEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value;type:text"`
	UpdatedAt time.Time
}

func (snapshotEntry) TableName() string { return "snapshot_entries" }

// PostgresBackend stores the two snapshot entries as rows of a key-value
// table, for deployments that want the collection off the local disk.
type PostgresBackend struct {
	db *gorm.DB
}

func NewPostgresBackend(databaseURL string) (*PostgresBackend, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 newLogger,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	if err := gdb.AutoMigrate(&snapshotEntry{}); err != nil {
		return nil, fmt.Errorf("migrating snapshot table: %w", err)
	}

	return &PostgresBackend{db: gdb}, nil
}

func (p *PostgresBackend) Load() ([]models.Workspace, string, error) {
	var entry snapshotEntry
	err := p.db.First(&entry, "key = ?", keyWorkspaces).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Workspace{}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading workspaces snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal([]byte(entry.Value), &doc); err != nil {
		return nil, "", fmt.Errorf("parsing workspaces snapshot: %w", err)
	}
	if doc.SchemaVersion > SchemaVersion {
		return nil, "", fmt.Errorf("snapshot schema version %d is newer than supported %d", doc.SchemaVersion, SchemaVersion)
	}

	activeID := ""
	var idEntry snapshotEntry
	if err := p.db.First(&idEntry, "key = ?", keyActiveID).Error; err == nil {
		activeID = strings.TrimSpace(idEntry.Value)
	}

	return doc.Workspaces, activeID, nil
}

func (p *PostgresBackend) Save(workspaces []models.Workspace, activeID string) error {
	doc := snapshotDocument{
		SchemaVersion: SchemaVersion,
		Workspaces:    workspaces,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializing workspaces: %w", err)
	}

	entries := []snapshotEntry{
		{Key: keyWorkspaces, Value: string(raw), UpdatedAt: time.Now().UTC()},
		{Key: keyActiveID, Value: activeID, UpdatedAt: time.Now().UTC()},
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&e).Error; err != nil {
				return fmt.Errorf("upserting %s: %w", e.Key, err)
			}
		}
		return nil
	})
}
