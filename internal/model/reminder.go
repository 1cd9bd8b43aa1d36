package model

import "time"

// Reminder statuses. Transitions only move forward:
// upcoming -> sent -> completed.
const (
	StatusUpcoming  = "upcoming"
	StatusSent      = "sent"
	StatusCompleted = "completed"
)

// Reminder is one dated occurrence of a Task. At most one exists per
// (task, due date); the composite unique index backs the insert-or-ignore
// semantics the lifecycle relies on.
type Reminder struct {
	ID          uint      `gorm:"primaryKey"`
	TaskID      string    `gorm:"index:idx_task_due,unique"`
	DueDate     time.Time `gorm:"index:idx_task_due,unique"`
	MessageID   string    `gorm:"index"`
	Status      string    `gorm:"default:upcoming;index"`
	SentAt      *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
