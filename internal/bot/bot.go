package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/thikhinab/wa-reminders/internal/repository"
	"github.com/thikhinab/wa-reminders/internal/service"
)

// Bot is the Telegram implementation of service.Channel.
//
// Telegram's bot API has no call to fetch a message's reactions, so the
// bot observes acknowledgments instead: while polling it records short
// replies to its own messages into the reaction log, and MessageReactions
// reads that log back. Group chats seen while polling are remembered by
// title so the destination can be resolved by name.
type Bot struct {
	api          *tgbotapi.BotAPI
	reactionRepo *repository.ReactionRepository
	logger       *slog.Logger

	mu    sync.Mutex
	chats map[string]int64
}

func New(token string, reactionRepo *repository.ReactionRepository, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:          api,
		reactionRepo: reactionRepo,
		logger:       logger,
		chats:        make(map[string]int64),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		b.observeChat(update.Message.Chat)
		b.observeAck(ctx, update.Message)
	}

	return nil
}

// SendMessage delivers an HTML-formatted message to the destination chat,
// appending a mention line for the assignees.
func (b *Bot) SendMessage(ctx context.Context, destination, text string, mentions []string) (string, error) {
	chatID, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad destination %q: %w", destination, err)
	}

	if line := mentionLine(mentions); line != "" {
		text += "\n" + line
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := b.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// MessageReactions returns the acknowledgments recorded for a message.
func (b *Bot) MessageReactions(ctx context.Context, messageID string) ([]service.Reaction, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, service.ErrMessageNotFound
	}
	stored, err := b.reactionRepo.ListByMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	reactions := make([]service.Reaction, 0, len(stored))
	for _, r := range stored {
		reactions = append(reactions, service.Reaction{Emoji: r.Emoji, Sender: r.Sender})
	}
	return reactions, nil
}

// ResolveDestination maps a group chat title to its chat id. The chat
// must have produced at least one update since the bot started.
func (b *Bot) ResolveDestination(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chatID, ok := b.chats[name]; ok {
		return strconv.FormatInt(chatID, 10), nil
	}
	return "", fmt.Errorf("%w: chat %q not seen yet", service.ErrDestinationUnknown, name)
}

func (b *Bot) observeChat(chat *tgbotapi.Chat) {
	if !chat.IsGroup() && !chat.IsSuperGroup() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chats[chat.Title] = chat.ID
}

// observeAck records a short reply to one of the bot's messages as a
// reaction on that message.
func (b *Bot) observeAck(ctx context.Context, msg *tgbotapi.Message) {
	if msg.ReplyToMessage == nil || msg.From == nil {
		return
	}
	if msg.ReplyToMessage.From == nil || msg.ReplyToMessage.From.ID != b.api.Self.ID {
		return
	}
	emoji := strings.TrimSpace(msg.Text)
	if emoji == "" || utf8.RuneCountInString(emoji) > 8 {
		return
	}

	messageID := strconv.Itoa(msg.ReplyToMessage.MessageID)
	if err := b.reactionRepo.Add(ctx, messageID, emoji, msg.From.UserName); err != nil {
		b.logger.Error("record reaction failed",
			"message_id", messageID,
			"error", err)
		return
	}
	b.logger.Info("reaction recorded",
		"message_id", messageID,
		"emoji", emoji,
		"sender", msg.From.UserName)
}

func mentionLine(mentions []string) string {
	var parts []string
	for _, mention := range mentions {
		mention = strings.TrimSpace(mention)
		if mention == "" {
			continue
		}
		if !strings.HasPrefix(mention, "@") {
			mention = "@" + mention
		}
		parts = append(parts, html.EscapeString(mention))
	}
	if len(parts) == 0 {
		return ""
	}
	return "👤 " + strings.Join(parts, " ")
}
