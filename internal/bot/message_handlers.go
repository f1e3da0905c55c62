package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smrz/internal/source"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const noURLText = `✖️ Send me a link to an article, a YouTube video or an audio / video file\.`

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return errors.New("message has no chat")
	}

	chatID := message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		text := strings.TrimSpace(message.Text)
		if text == "" {
			text = strings.TrimSpace(message.Caption)
		}

		switch {
		case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
			return b.handleStartCommand(ctx, chatID)
		case strings.HasPrefix(text, "/menu"):
			return b.handleMenuCommand(ctx, chatID)
		case strings.HasPrefix(text, "/usage"):
			return b.handleUsageCommand(ctx, chatID)
		case strings.HasPrefix(text, "/markdown"):
			return b.handleMarkdownCommand(ctx, strings.TrimPrefix(text, "/markdown"), chatID)
		default:
			return b.handleSharedText(ctx, text, chatID)
		}
	})
}

// handleSharedText summarizes the first link found in text.
func (b *Bot) handleSharedText(ctx context.Context, text string, chatID int64) error {
	rawURL, ok := source.FindURL(text)
	if !ok {
		return b.sendMessageWithKeyboard(ctx, chatID, noURLText, b.menuKeyboard)
	}

	result, err := b.pipeline.Summarize(ctx, rawURL)
	if err != nil {
		return b.replyFailure(ctx, chatID, fmt.Errorf("summarize %s: %w", rawURL, err))
	}

	if err = b.sendLongMessage(ctx, chatID, result.Summary, b.returnKeyboard); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	return nil
}

func (b *Bot) replyFailure(ctx context.Context, chatID int64, err error) error {
	errs := []error{err}

	if sendErr := b.sendMessageWithKeyboard(ctx, chatID, "❌ Failed\\.", b.returnKeyboard); sendErr != nil {
		errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
	}

	return errors.Join(errs...)
}
