package infrastructure

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/NikiWay00/modern-video-downloader/internal/domain"
)

// SQLiteHistoryRepository implements domain.HistoryRepository with a
// local SQLite database.
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (creating if needed) the history
// database at dbPath and migrates its schema.
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if err := EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Record persists one terminal download outcome
func (r *SQLiteHistoryRepository) Record(entry *domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// Recent returns the most recently finished entries, newest first
func (r *SQLiteHistoryRepository) Recent(limit int) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	err := r.db.Order("finished_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

// CountByOutcome counts entries with the given terminal outcome
func (r *SQLiteHistoryRepository) CountByOutcome(outcome string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.HistoryEntry{}).
		Where("outcome = ?", outcome).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}
