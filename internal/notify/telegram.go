package notify

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"
)

// TelegramSink sends each message as its own Telegram message, since the
// cards are already sized for chat display.
type TelegramSink struct {
	bot  *tele.Bot
	chat *tele.Chat
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errEmptyToken
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &TelegramSink{bot: b, chat: &tele.Chat{ID: chatID}}, nil
}

func (t *TelegramSink) Send(_ context.Context, messages []string) error {
	var firstErr error
	for _, m := range messages {
		_, err := t.bot.Send(t.chat, m, &tele.SendOptions{
			ParseMode:             tele.ModeMarkdown,
			DisableWebPagePreview: true,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var errEmptyToken = errString("telegram token is empty")

type errString string

func (e errString) Error() string { return string(e) }
