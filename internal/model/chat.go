package model

import "time"

// ChatConfig stores the destination group chat, looked up once by name
// and persisted. Singleton row, ID is always 1.
type ChatConfig struct {
	ID        uint `gorm:"primaryKey"`
	ChatID    string
	ChatName  string
	UpdatedAt time.Time
}
