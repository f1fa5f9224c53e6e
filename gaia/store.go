package gaia

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TaskRecord is one persisted task outcome. A task may appear once per
// run, so repeated runs keep their full history.
type TaskRecord struct {
	ID         uint      `gorm:"primaryKey"`
	RunID      string    `gorm:"index;size:64"`
	TaskID     string    `gorm:"index;size:64"`
	Level      int       `gorm:""`
	Question   string    `gorm:"type:text"`
	TrueAnswer string    `gorm:"type:text"`
	Response   string    `gorm:"type:text"`
	Status     string    `gorm:"size:16"`
	DurationMS int64     `gorm:""`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Store persists task outcomes in sqlite.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the sqlite database at path.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&TaskRecord{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// Save persists one task outcome.
func (s *Store) Save(ctx context.Context, rec *TaskRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("save task record: %w", err)
	}
	return nil
}

// ByRun returns the records of one run, oldest first.
func (s *Store) ByRun(ctx context.Context, runID string) ([]TaskRecord, error) {
	var records []TaskRecord
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return records, nil
}

// ByTask returns every recorded outcome of one task across runs.
func (s *Store) ByTask(ctx context.Context, taskID string) ([]TaskRecord, error) {
	var records []TaskRecord
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
