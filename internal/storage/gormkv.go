package storage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// kvEntry is the row shape backing GormKV: one row per logical key.
type kvEntry struct {
	Key   string `gorm:"primaryKey;size:255"`
	Value string `gorm:"type:text;not null"`
}

func (kvEntry) TableName() string { return "kv_entries" }

// GormKV is the durable KV adapter. It keeps the whole persistence port in a
// single two-column table so the repository's whole-collection JSON contract
// is independent of the SQL dialect underneath. Calls complete before
// returning, preserving the synchronous appearance the managers rely on.
type GormKV struct {
	db *gorm.DB
}

// Open connects to the database named by dsn and migrates the kv_entries
// table. A dsn starting with postgres:// or postgresql:// selects the
// postgres driver; anything else is treated as a sqlite path or URI.
func Open(dsn string) (*GormKV, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty DSN", ErrUnavailable)
	}
	var dial gorm.Dialector
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrUnavailable, err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate kv_entries: %v", ErrUnavailable, err)
	}
	return &GormKV{db: db}, nil
}

// NewGormKV wraps an already-open gorm DB, migrating the kv_entries table.
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("%w: migrate kv_entries: %v", ErrUnavailable, err)
	}
	return &GormKV{db: db}, nil
}

// Get implements KV.
func (g *GormKV) Get(key string) (string, bool, error) {
	var row kvEntry
	err := g.db.Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapDBError("read", key, err)
	}
	return row.Value, true, nil
}

// Set implements KV.
func (g *GormKV) Set(key, value string) error {
	row := kvEntry{Key: key, Value: value}
	err := g.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return wrapDBError("write", key, err)
	}
	return nil
}

// Remove implements KV.
func (g *GormKV) Remove(key string) error {
	err := g.db.Where("key = ?", key).Delete(&kvEntry{}).Error
	if err != nil {
		return wrapDBError("delete", key, err)
	}
	return nil
}

// wrapDBError translates driver failures into the port's error categories.
// Disk- or database-full conditions map to the quota category; everything
// else means the medium is unusable.
func wrapDBError(op, key string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "no space left") {
		return fmt.Errorf("%w: %s %q: %v", ErrQuotaExceeded, op, key, err)
	}
	return fmt.Errorf("%w: %s %q: %v", ErrUnavailable, op, key, err)
}
