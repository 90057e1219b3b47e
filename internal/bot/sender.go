package bot

import (
	"context"
	"fmt"
	"unicode/utf16"

	tbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/roastbot/internal/relay"
)

// maxMessageLength is Telegram's limit for one text message, in UTF-16 code units.
const maxMessageLength = 4096

// Sender implements relay.Sender on the Telegram Bot API.
type Sender struct {
	tg *tbot.Bot
}

func NewSender(tg *tbot.Bot) *Sender {
	return &Sender{tg: tg}
}

// Send posts reply as a single message.
func (s *Sender) Send(ctx context.Context, reply relay.OutboundReply) error {
	_, err := s.tg.SendMessage(ctx, &tbot.SendMessageParams{
		ChatID: reply.ConversationID,
		Text:   clip(reply.Text, maxMessageLength),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Typing shows the typing indicator while the model works.
func (s *Sender) Typing(ctx context.Context, conversationID int64) error {
	_, err := s.tg.SendChatAction(ctx, &tbot.SendChatActionParams{
		ChatID: conversationID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		return fmt.Errorf("send chat action: %w", err)
	}
	return nil
}

// clip cuts text to at most n UTF-16 code units, the unit Telegram
// measures message length in. Runes are never split.
func clip(text string, n int) string {
	if utf16Len(text) <= n {
		return text
	}

	used := 0
	for i, r := range text {
		w := utf16.RuneLen(r)
		if used+w > n-1 { // keep one unit for the ellipsis
			return text[:i] + "…"
		}
		used += w
	}
	return text
}

func utf16Len(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}
