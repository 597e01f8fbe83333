package domain

import "time"

// KVEntry is one key of the key-value substrate when it is backed by a SQL database.
// Value holds the JSON document for the whole collection addressed by Key.
type KVEntry struct {
	Key       string    `gorm:"type:text;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for KVEntry.
func (KVEntry) TableName() string {
	return "kv_entries"
}
