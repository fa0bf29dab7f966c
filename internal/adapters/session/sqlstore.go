package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const sessionDirPerm = 0o700

// entry is one persisted key/value pair.
type entry struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

func (entry) TableName() string { return "session_entries" }

// SQLStore keeps the session in a sqlite file so it survives restarts.
type SQLStore struct {
	conn *gorm.DB
}

// OpenSQLStore opens (creating if needed) the sqlite store at path.
func OpenSQLStore(path string, debug bool) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, sessionDirPerm); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", ErrSessionStore, dir, err)
		}
	}

	gormConfig := &gorm.Config{}
	if !debug {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	conn, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to database: %w", ErrSessionStore, err)
	}
	if debug {
		conn = conn.Debug()
	}

	if err := conn.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("%w: running auto migrate: %w", ErrSessionStore, err)
	}
	return &SQLStore{conn: conn}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var e entry
	err := s.conn.WithContext(ctx).Where("name = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", ErrSessionStore, key, err)
	}
	return e.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	e := entry{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrSessionStore, key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.conn.WithContext(ctx).Where("name IN ?", keys).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("%w: delete: %w", ErrSessionStore, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	db, err := s.conn.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	return db.Close()
}
