package models

import "time"

// StoreEntry is one key of the durable device store.
type StoreEntry struct {
	Origin    string    `gorm:"column:origin;primaryKey;size:64"`
	Key       string    `gorm:"column:key;primaryKey;size:128"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (StoreEntry) TableName() string { return "store_entries" }
