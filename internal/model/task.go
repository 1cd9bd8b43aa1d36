package model

import "time"

// Task is a recurring obligation imported from the task file.
// Recurrence holds the JSON rule document, e.g. {"type":"monthly","dayOfMonth":5}.
type Task struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"uniqueIndex"`
	Description string
	Assignee    string
	Recurrence  string
	Timezone    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Reminders   []Reminder `gorm:"foreignKey:TaskID"`
}
