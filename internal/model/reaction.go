package model

import "time"

// Reaction records an acknowledgment observed on a dispatched message.
// The bot appends a row when it sees one; the lifecycle reads them back
// when reconciling completions.
type Reaction struct {
	ID        uint   `gorm:"primaryKey"`
	MessageID string `gorm:"index"`
	Emoji     string
	Sender    string
	CreatedAt time.Time
}
