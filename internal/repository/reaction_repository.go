package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/thikhinab/wa-reminders/internal/model"
)

// ReactionRepository logs acknowledgments observed on dispatched messages.
type ReactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

func (r *ReactionRepository) Add(ctx context.Context, messageID, emoji, sender string) error {
	reaction := model.Reaction{MessageID: messageID, Emoji: emoji, Sender: sender}
	if err := r.db.WithContext(ctx).Create(&reaction).Error; err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

func (r *ReactionRepository) ListByMessage(ctx context.Context, messageID string) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	return reactions, nil
}
