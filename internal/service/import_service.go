package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/thikhinab/wa-reminders/internal/model"
	"github.com/thikhinab/wa-reminders/internal/recurrence"
	"github.com/thikhinab/wa-reminders/internal/repository"
)

// TaskSpec is one entry in the task file.
type TaskSpec struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Assignee    string          `json:"assignee"`
	Recurrence  json.RawMessage `json:"recurrence"`
	Timezone    string          `json:"timezone"`
}

// ImportService syncs the task file into the store. Import is
// insert-or-ignore by title: re-importing an existing task changes
// nothing, so the file can be loaded on every start.
type ImportService struct {
	taskRepo        *repository.TaskRepository
	defaultTimezone string
}

func NewImportService(taskRepo *repository.TaskRepository, defaultTimezone string) *ImportService {
	return &ImportService{taskRepo: taskRepo, defaultTimezone: defaultTimezone}
}

// ImportFile loads and imports the JSON task file at path.
func (s *ImportService) ImportFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read task file: %w", err)
	}
	var specs []TaskSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return 0, fmt.Errorf("parse task file: %w", err)
	}
	return s.Import(ctx, specs)
}

// Import validates the specs and upserts them. Every spec must carry a
// title and a parseable recurrence; a bad entry fails the whole import so
// a broken task file is noticed at startup rather than silently skipped.
func (s *ImportService) Import(ctx context.Context, specs []TaskSpec) (int, error) {
	tasks := make([]model.Task, 0, len(specs))
	for i, spec := range specs {
		title := strings.TrimSpace(spec.Title)
		if title == "" {
			return 0, fmt.Errorf("task %d: title is required", i)
		}
		if _, err := recurrence.Parse(string(spec.Recurrence)); err != nil {
			return 0, fmt.Errorf("task %q: %w", title, err)
		}
		timezone := strings.TrimSpace(spec.Timezone)
		if timezone == "" {
			timezone = s.defaultTimezone
		}
		tasks = append(tasks, model.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: strings.TrimSpace(spec.Description),
			Assignee:    strings.TrimSpace(spec.Assignee),
			Recurrence:  string(spec.Recurrence),
			Timezone:    timezone,
		})
	}

	if err := s.taskRepo.UpsertTasks(ctx, tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}
