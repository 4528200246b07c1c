// Package models defines the persisted entities and API error types.
package models

import "time"

// User is a principal known to the lending system. Credentials live with the
// identity provider that issues tokens.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:120;index" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
