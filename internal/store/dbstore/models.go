package dbstore

import (
	"github.com/yiblet/scribe/internal/store"
)

// HistoryModel is one row of the history table.
type HistoryModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Command   string `gorm:"type:text;not null"`
	Timestamp int64  `gorm:"not null"` // Unix seconds
}

// TableName returns the table name for HistoryModel
func (HistoryModel) TableName() string {
	return "history"
}

// ToEntry converts the GORM model to a store.Entry
func (m *HistoryModel) ToEntry() store.Entry {
	return store.Entry{
		ID:        m.ID,
		Command:   m.Command,
		Timestamp: m.Timestamp,
	}
}
