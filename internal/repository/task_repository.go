package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thikhinab/wa-reminders/internal/model"
)

// TaskRepository handles persistence of task templates.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// UpsertTasks inserts each task unless one with the same title already
// exists. Conflicting rows are left untouched, so re-importing the task
// file is a no-op.
func (r *TaskRepository) UpsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "title"}},
			DoNothing: true,
		}).
		Create(&tasks).Error
	if err != nil {
		return fmt.Errorf("upsert tasks: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &task, nil
}
