package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thikhinab/wa-reminders/internal/model"
)

// ReminderRepository handles the reminder lifecycle records.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// CreateIfAbsent inserts a reminder for (taskID, dueDate). A duplicate
// pair is silently absorbed; the unique index makes repeated calls safe
// across crashed or overlapping cycles.
func (r *ReminderRepository) CreateIfAbsent(ctx context.Context, taskID string, dueDate time.Time) error {
	reminder := model.Reminder{
		TaskID:  taskID,
		DueDate: dueDate.UTC(),
		Status:  model.StatusUpcoming,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "due_date"}},
			DoNothing: true,
		}).
		Create(&reminder).Error
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// FindForDate returns the reminder for the task on the given due date, or
// nil when none exists yet.
func (r *ReminderRepository) FindForDate(ctx context.Context, taskID string, dueDate time.Time) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND due_date = ?", taskID, dueDate.UTC()).
		First(&reminder).Error
	switch {
	case err == nil:
		return &reminder, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find reminder: %w", err)
	}
}

// ListUpcomingDueBetween returns upcoming reminders with due_date in
// [start, end).
func (r *ReminderRepository) ListUpcomingDueBetween(ctx context.Context, start, end time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date >= ? AND due_date < ?", model.StatusUpcoming, start.UTC(), end.UTC()).
		Order("due_date ASC, id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	return reminders, nil
}

// ListSentBefore returns sent reminders last touched before ts.
func (r *ReminderRepository) ListSentBefore(ctx context.Context, ts time.Time) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.StatusSent, ts.UTC()).
		Order("due_date ASC, id ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("list sent reminders: %w", err)
	}
	return reminders, nil
}

// UpdateDispatch records a (re-)dispatch: message id and status are set
// and updated_at is refreshed.
func (r *ReminderRepository) UpdateDispatch(ctx context.Context, id uint, messageID, status string, sentAt time.Time) error {
	updates := map[string]interface{}{
		"message_id": messageID,
		"status":     status,
		"sent_at":    sentAt.UTC(),
		"updated_at": sentAt.UTC(),
	}
	// UpdateColumns keeps the supplied updated_at authoritative instead of
	// letting the auto-timestamp hook overwrite it.
	err := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).UpdateColumns(updates).Error
	if err != nil {
		return fmt.Errorf("update reminder dispatch: %w", err)
	}
	return nil
}

// MarkCompleted moves a reminder to its terminal state.
func (r *ReminderRepository) MarkCompleted(ctx context.Context, id uint, completedAt time.Time) error {
	updates := map[string]interface{}{
		"status":       model.StatusCompleted,
		"completed_at": completedAt.UTC(),
		"updated_at":   completedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).UpdateColumns(updates).Error
	if err != nil {
		return fmt.Errorf("complete reminder: %w", err)
	}
	return nil
}
