// Package telegram implements the outbound send capability over the Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mdminegoub-netizen/suqya-bot/internal/notifier"
)

const (
	clientTimeout = 15 * time.Second
	sendAttempts  = 3
	retryDelay    = 500 * time.Millisecond
)

type Sender struct {
	bot *tgbotapi.BotAPI
}

func NewSender(token string) (*Sender, error) {
	client := &http.Client{Timeout: clientTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize bot: %w", err)
	}
	return &Sender{bot: bot}, nil
}

// Send delivers one message, retrying transient transport errors with
// backoff. Permanent rejections (the user blocked the bot, the chat is gone)
// fail immediately.
func (s *Sender) Send(ctx context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)

	err := retry.Do(
		func() error {
			if _, err := s.bot.Send(msg); err != nil {
				if isPermanent(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(sendAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return &notifier.DeliveryError{UserID: userID, Err: err}
	}
	return nil
}

// isPermanent reports whether the Bot API rejected the message for a reason
// retrying cannot fix.
func isPermanent(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") ||
		strings.Contains(msg, "chat not found") ||
		strings.Contains(msg, "user is deactivated")
}
