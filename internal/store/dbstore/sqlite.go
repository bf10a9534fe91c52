package dbstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/yiblet/scribe/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// importBatchSize bounds the rows written per INSERT during Import.
const importBatchSize = 500

// containsClause matches command as a literal, case-sensitive substring.
// Needs case_sensitive_like, which is set per connection in NewSQLiteStore.
const containsClause = `command LIKE '%' || ? || '%' ESCAPE '\'`

// SQLiteStore is a SQLite-backed implementation of store.Index
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

var _ store.Index = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the index database at dbPath.
// Opening an existing database is safe: the schema migration is idempotent.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	// PRAGMAs below are per connection, so keep exactly one.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA case_sensitive_like = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&HistoryModel{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Insert stores a single command
func (s *SQLiteStore) Insert(ctx context.Context, command string, timestamp int64) (store.Entry, error) {
	model := &HistoryModel{
		Command:   command,
		Timestamp: timestamp,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return store.Entry{}, fmt.Errorf("failed to insert command: %w", err)
	}
	return model.ToEntry(), nil
}

// Import stores entries in order inside a single transaction
func (s *SQLiteStore) Import(ctx context.Context, entries []store.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	models := make([]*HistoryModel, len(entries))
	for i, entry := range entries {
		models[i] = &HistoryModel{
			Command:   entry.Command,
			Timestamp: entry.Timestamp,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(models, importBatchSize).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import commands: %w", err)
	}

	return len(models), nil
}

// Find returns the closest match at or beyond the cursor in its direction
func (s *SQLiteStore) Find(ctx context.Context, query string, cursor store.Cursor) (*store.Entry, error) {
	q := s.db.WithContext(ctx).Where(containsClause, escapeLike(query))

	id, anchored := cursor.ID()
	switch cursor.Direction {
	case store.Older:
		if anchored {
			q = q.Where("id <= ?", id)
		}
		q = q.Order("id DESC")
	case store.Newer:
		if anchored {
			q = q.Where("id >= ?", id)
		}
		q = q.Order("id ASC")
	default:
		return nil, fmt.Errorf("unknown direction: %d", cursor.Direction)
	}

	var models []HistoryModel
	if err := q.Limit(1).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	entry := models[0].ToEntry()
	return &entry, nil
}

// Matches returns entries containing query, newest first
func (s *SQLiteStore) Matches(ctx context.Context, query string, limit int) ([]store.Entry, error) {
	q := s.db.WithContext(ctx).
		Where(containsClause, escapeLike(query)).
		Order("id DESC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	var models []HistoryModel
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	entries := make([]store.Entry, len(models))
	for i := range models {
		entries[i] = models[i].ToEntry()
	}

	return entries, nil
}

// Count returns the total number of rows
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&HistoryModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count commands: %w", err)
	}
	return int(count), nil
}

// Reset removes all rows. AUTOINCREMENT keeps IDs from being reused.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&HistoryModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// escapeLike escapes LIKE wildcards so query matches literally
func escapeLike(query string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
}
