package bot

import (
	"context"
	"fmt"
	"strings"

	"smrz/internal/database"
	"smrz/internal/markdown"
	"smrz/internal/source"
)

const welcomeText = `🤖 *Welcome to smrz\!*

I turn links into short summaries\. I can help you:

– Summarize an article, a YouTube video or an audio / video file when you send or share a link
– Get the full text as Markdown with /markdown followed by a link
– See model usage and cost with /usage`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleMarkdownCommand(ctx context.Context, text string, chatID int64) error {
	rawURL, ok := source.FindURL(text)
	if !ok {
		return b.sendMessageWithKeyboard(ctx, chatID, noURLText, b.returnKeyboard)
	}

	result, err := b.pipeline.Markdown(ctx, rawURL)
	if err != nil {
		return b.replyFailure(ctx, chatID, fmt.Errorf("extract markdown %s: %w", rawURL, err))
	}

	if err = b.sendLongMessage(ctx, chatID, result.Content, b.returnKeyboard); err != nil {
		return fmt.Errorf("send markdown: %w", err)
	}

	return nil
}

func (b *Bot) handleUsageCommand(ctx context.Context, chatID int64) error {
	totals, err := b.usage.UsageTotals(ctx)
	if err != nil {
		return b.replyFailure(ctx, chatID, fmt.Errorf("get usage totals: %w", err))
	}

	if len(totals) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, "✖️ No model calls are recorded yet\\.", b.returnKeyboard)
	}

	return b.sendMessageWithKeyboard(ctx, chatID, formatUsage(totals), b.returnKeyboard)
}

func formatUsage(totals []database.ModelUsage) string {
	var message strings.Builder
	message.WriteString("📊 *Model usage:*\n\n")

	var cost float64
	for _, u := range totals {
		cost += u.Cost
		message.WriteString(markdown.EscapeV2(fmt.Sprintf(
			"– %s (%s): %d calls, %d prompt + %d completion tokens, cost %.4f\n",
			u.Model,
			u.Provider,
			u.Calls,
			u.PromptTokens,
			u.CompletionTokens,
			u.Cost,
		)))
	}

	message.WriteString(markdown.EscapeV2(fmt.Sprintf("\nTotal cost %.4f", cost)))

	return message.String()
}
