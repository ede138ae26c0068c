// Package memory is the durable backing for per-user interaction logs: one
// row per user name holding the ordered event list. The orchestrator owns the
// in-memory list and rewrites the row on every change.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexmorgen/vibeforge/internal/logging"
	"github.com/alexmorgen/vibeforge/internal/models"
)

type userMemory struct {
	UserName   string `gorm:"primaryKey;size:255"`
	EventsJSON string `gorm:"type:text"`
	UpdatedAt  time.Time
}

func (userMemory) TableName() string { return "user_memories" }

type Store struct {
	db  *gorm.DB
	log *logging.Logger
}

func Open(path string, log *logging.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open memory db: %w", err)
	}
	if err := db.AutoMigrate(&userMemory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate memory db: %w", err)
	}
	return &Store{db: db, log: log.With("component", "memory")}, nil
}

// Load returns the stored event list for a user, or nil when none exists.
// A stored blob that no longer parses is a hard error; there is no schema
// migration or corruption recovery.
func (s *Store) Load(userName string) ([]models.MemoryEvent, error) {
	var row userMemory
	err := s.db.First(&row, "user_name = ?", userName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load memory for %q: %w", userName, err)
	}
	var events []models.MemoryEvent
	if err := json.Unmarshal([]byte(row.EventsJSON), &events); err != nil {
		return nil, fmt.Errorf("stored memory for %q is malformed: %w", userName, err)
	}
	return events, nil
}

// Save rewrites the user's row with the full event list.
func (s *Store) Save(userName string, events []models.MemoryEvent) error {
	blob, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal memory for %q: %w", userName, err)
	}
	row := userMemory{UserName: userName, EventsJSON: string(blob), UpdatedAt: time.Now()}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"events_json", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save memory for %q: %w", userName, err)
	}
	return nil
}

// Wipe removes the user's log entirely.
func (s *Store) Wipe(userName string) error {
	if err := s.db.Delete(&userMemory{}, "user_name = ?", userName).Error; err != nil {
		return fmt.Errorf("wipe memory for %q: %w", userName, err)
	}
	s.log.Info("memory wiped", "user", userName)
	return nil
}
