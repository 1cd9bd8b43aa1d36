package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/thikhinab/wa-reminders/internal/model"
	"github.com/thikhinab/wa-reminders/internal/recurrence"
	"github.com/thikhinab/wa-reminders/internal/repository"
)

// LifecycleService runs one reminder cycle: reconcile completions,
// materialize new reminders, dispatch due ones, re-dispatch stale ones.
// It keeps no state between runs; every decision re-derives from the
// store, so an interrupted cycle is safe to re-run.
type LifecycleService struct {
	taskRepo     *repository.TaskRepository
	reminderRepo *repository.ReminderRepository
	channel      Channel
	defaultZone  *time.Location
	logger       *slog.Logger

	// Now supplies the cycle's notion of time. Tests override it.
	Now func() time.Time
}

func NewLifecycleService(taskRepo *repository.TaskRepository, reminderRepo *repository.ReminderRepository, channel Channel, defaultZone *time.Location, logger *slog.Logger) *LifecycleService {
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleService{
		taskRepo:     taskRepo,
		reminderRepo: reminderRepo,
		channel:      channel,
		defaultZone:  defaultZone,
		logger:       logger,
		Now:          time.Now,
	}
}

// RunCycle executes the four lifecycle steps in order against the given
// destination chat. Per-item failures are logged and skipped; store
// failures abort the cycle.
func (s *LifecycleService) RunCycle(ctx context.Context, destination string) error {
	now := s.Now().UTC()

	if err := s.reconcileCompletions(ctx, now); err != nil {
		return fmt.Errorf("reconcile completions: %w", err)
	}
	if err := s.materializeReminders(ctx, now); err != nil {
		return fmt.Errorf("materialize reminders: %w", err)
	}
	if err := s.dispatchDue(ctx, destination, now); err != nil {
		return fmt.Errorf("dispatch due: %w", err)
	}
	if err := s.redispatchStale(ctx, destination, now); err != nil {
		return fmt.Errorf("redispatch stale: %w", err)
	}
	return nil
}

// reconcileCompletions moves sent reminders whose message picked up a
// thumbs-up to completed.
func (s *LifecycleService) reconcileCompletions(ctx context.Context, now time.Time) error {
	reminders, err := s.reminderRepo.ListSentBefore(ctx, now)
	if err != nil {
		return err
	}

	for _, reminder := range reminders {
		reactions, err := s.channel.MessageReactions(ctx, reminder.MessageID)
		if err != nil {
			s.logger.Error("fetch reactions failed",
				"reminder_id", reminder.ID,
				"message_id", reminder.MessageID,
				"error", err)
			continue
		}
		if !hasThumbsUp(reactions) {
			continue
		}
		if err := s.reminderRepo.MarkCompleted(ctx, reminder.ID, now); err != nil {
			return err
		}
		s.logger.Info("reminder completed",
			"reminder_id", reminder.ID,
			"task_id", reminder.TaskID)
	}
	return nil
}

// materializeReminders ensures every task has a reminder for its next
// computed due date. The lookup is scoped to that exact date, so a
// completed reminder from a past occurrence never blocks the next one.
func (s *LifecycleService) materializeReminders(ctx context.Context, now time.Time) error {
	tasks, err := s.taskRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		rule, err := recurrence.Parse(task.Recurrence)
		if err != nil {
			s.logger.Error("skip task with bad recurrence",
				"task_id", task.ID,
				"title", task.Title,
				"error", err)
			continue
		}

		due, err := rule.NextDue(now.In(s.taskZone(task)))
		if err != nil {
			s.logger.Error("compute due date failed",
				"task_id", task.ID,
				"error", err)
			continue
		}

		existing, err := s.reminderRepo.FindForDate(ctx, task.ID, due)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := s.reminderRepo.CreateIfAbsent(ctx, task.ID, due); err != nil {
			return err
		}
		s.logger.Info("reminder materialized",
			"task_id", task.ID,
			"title", task.Title,
			"due_date", due.Format(time.DateOnly))
	}
	return nil
}

// dispatchDue sends every upcoming reminder due within the current UTC
// day and marks it sent.
func (s *LifecycleService) dispatchDue(ctx context.Context, destination string, now time.Time) error {
	todayStart := startOfUTCDay(now)
	reminders, err := s.reminderRepo.ListUpcomingDueBetween(ctx, todayStart, todayStart.Add(24*time.Hour))
	if err != nil {
		return err
	}

	for _, reminder := range reminders {
		task, err := s.taskRepo.FindByID(ctx, reminder.TaskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("reminder references missing task",
				"reminder_id", reminder.ID,
				"task_id", reminder.TaskID)
			continue
		}
		if err != nil {
			return err
		}

		messageID, err := s.channel.SendMessage(ctx, destination, reminderText(task, false), taskMentions(task))
		if err != nil {
			s.logger.Error("send reminder failed",
				"reminder_id", reminder.ID,
				"title", task.Title,
				"error", err)
			continue
		}
		if err := s.reminderRepo.UpdateDispatch(ctx, reminder.ID, messageID, model.StatusSent, now); err != nil {
			return err
		}
		s.logger.Info("reminder sent",
			"reminder_id", reminder.ID,
			"title", task.Title,
			"message_id", messageID)
	}
	return nil
}

// redispatchStale re-sends reminders that were sent on a previous UTC day
// and never acknowledged. They stay sent, with a fresh message id, so the
// nag repeats daily until someone reacts.
func (s *LifecycleService) redispatchStale(ctx context.Context, destination string, now time.Time) error {
	todayStart := startOfUTCDay(now)
	reminders, err := s.reminderRepo.ListSentBefore(ctx, todayStart)
	if err != nil {
		return err
	}

	for _, reminder := range reminders {
		task, err := s.taskRepo.FindByID(ctx, reminder.TaskID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("reminder references missing task",
				"reminder_id", reminder.ID,
				"task_id", reminder.TaskID)
			continue
		}
		if err != nil {
			return err
		}

		messageID, err := s.channel.SendMessage(ctx, destination, reminderText(task, true), taskMentions(task))
		if err != nil {
			s.logger.Error("resend reminder failed",
				"reminder_id", reminder.ID,
				"title", task.Title,
				"error", err)
			continue
		}
		if err := s.reminderRepo.UpdateDispatch(ctx, reminder.ID, messageID, model.StatusSent, now); err != nil {
			return err
		}
		s.logger.Info("reminder re-sent",
			"reminder_id", reminder.ID,
			"title", task.Title,
			"message_id", messageID)
	}
	return nil
}

func (s *LifecycleService) taskZone(task model.Task) *time.Location {
	if task.Timezone == "" {
		return s.defaultZone
	}
	loc, err := time.LoadLocation(task.Timezone)
	if err != nil {
		s.logger.Warn("unknown timezone, using default",
			"task_id", task.ID,
			"timezone", task.Timezone)
		return s.defaultZone
	}
	return loc
}

func startOfUTCDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func reminderText(task *model.Task, followUp bool) string {
	var b strings.Builder
	if followUp {
		b.WriteString("🔁 <b>Still open</b>\n")
	} else {
		b.WriteString("🔔 <b>Reminder</b>\n")
	}
	b.WriteString(html.EscapeString(strings.TrimSpace(task.Title)))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		b.WriteString(fmt.Sprintf("\n📝 %s", html.EscapeString(desc)))
	}
	b.WriteString("\n\nReact with 👍 when done.")
	return b.String()
}

func taskMentions(task *model.Task) []string {
	if assignee := strings.TrimSpace(task.Assignee); assignee != "" {
		return []string{assignee}
	}
	return nil
}

// hasThumbsUp reports whether any reaction is a thumbs-up equivalent.
// The prefix match covers skin-tone variants.
func hasThumbsUp(reactions []Reaction) bool {
	for _, reaction := range reactions {
		emoji := strings.TrimSpace(reaction.Emoji)
		if strings.HasPrefix(emoji, "👍") || emoji == "+1" {
			return true
		}
	}
	return false
}
