package models

import "time"

// InventoryItem is a lendable tool, addressed by its inventory code.
type InventoryItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:64;uniqueIndex;not null" json:"code" yaml:"code"`
	Name        string    `gorm:"size:120;not null" json:"name" yaml:"name"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	Location    string    `gorm:"size:120" json:"location" yaml:"location"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}
