package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thikhinab/wa-reminders/internal/model"
)

// ChatRepository stores the destination group chat as a singleton row.
type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Destination returns the persisted chat id, or "" when none was stored.
func (r *ChatRepository) Destination(ctx context.Context) (string, error) {
	var cfg model.ChatConfig
	err := r.db.WithContext(ctx).First(&cfg, 1).Error
	switch {
	case err == nil:
		return cfg.ChatID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", nil
	default:
		return "", fmt.Errorf("load chat config: %w", err)
	}
}

// SaveDestination persists the resolved chat, replacing any previous row.
func (r *ChatRepository) SaveDestination(ctx context.Context, chatID, chatName string) error {
	cfg := model.ChatConfig{ID: 1, ChatID: chatID, ChatName: chatName}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("save chat config: %w", err)
	}
	return nil
}
