package bot

import (
	"strings"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/j0lvera/roastbot/internal/relay"
)

const startCommand = "/start"

// Classify turns a Telegram update into a relay event. Updates that are
// not user text, and commands other than /start, are ignored.
func Classify(update *models.Update) (relay.Event, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return relay.Event{}, false
	}

	msg := update.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return relay.Event{}, false
	}

	inbound := relay.InboundMessage{
		ConversationID: msg.Chat.ID,
		SenderID:       msg.From.ID,
		Text:           msg.Text,
		ReceivedAt:     receivedAt(msg.Date),
	}

	if strings.HasPrefix(text, "/") {
		if commandName(text) != startCommand {
			return relay.Event{}, false
		}
		return relay.Event{Kind: relay.KindStart, Message: inbound}, true
	}

	return relay.Event{Kind: relay.KindText, Message: inbound}, true
}

// commandName strips the payload and any @botname suffix.
func commandName(text string) string {
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return name
}

func receivedAt(date int) time.Time {
	if date <= 0 {
		return time.Now()
	}
	return time.Unix(int64(date), 0)
}
