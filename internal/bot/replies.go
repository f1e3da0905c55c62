package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"smrz/internal/markdown"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMessageMaxLength is counted in UTF-16 code units, as Telegram does.
const telegramMessageMaxLength = 4096

// sendLongMessage escapes plain text and sends it in as many messages as the
// length limit requires. Only the last message carries the keyboard.
func (b *Bot) sendLongMessage(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]tgbotapi.InlineKeyboardButton,
) error {
	chunks := splitMessage(text, telegramMessageMaxLength)
	if len(chunks) == 0 {
		return errors.New("message is empty")
	}

	for i, chunk := range chunks {
		var kb [][]tgbotapi.InlineKeyboardButton
		if i == len(chunks)-1 {
			kb = keyboard
		}

		if err := b.sendMessageWithKeyboard(ctx, chatID, chunk, kb); err != nil {
			return fmt.Errorf("send part %d of %d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

// splitMessage escapes text for MarkdownV2 and cuts it into chunks of at most
// limit units. Cuts happen between lines when possible and never inside an
// escape sequence.
func splitMessage(text string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		size = 0
	}

	add := func(escaped string, n int) {
		sep := 0
		if current.Len() > 0 {
			sep = 1
		}

		if size+sep+n > limit {
			flush()
			sep = 0
		}

		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(escaped)
		size += sep + n
	}

	for _, line := range strings.Split(text, "\n") {
		escaped := markdown.EscapeV2(line)
		if n := textLen(escaped); n <= limit {
			add(escaped, n)
			continue
		}

		for _, piece := range splitLine(line, limit) {
			add(piece, textLen(piece))
		}
	}

	flush()

	return chunks
}

// splitLine cuts one line that does not fit into a message on rune
// boundaries and escapes every piece.
func splitLine(line string, limit int) []string {
	var (
		pieces  []string
		current strings.Builder
		size    int
	)

	for _, r := range line {
		escaped := markdown.EscapeV2(string(r))
		n := textLen(escaped)

		if size+n > limit && current.Len() > 0 {
			pieces = append(pieces, current.String())
			current.Reset()
			size = 0
		}

		current.WriteString(escaped)
		size += n
	}

	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}

func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
