// Package notify pushes booking events to the site managers.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"penzion/internal/models"
)

// Notifier delivers short operational messages to staff.
type Notifier interface {
	NewRequest(site string, req *models.Request) error
	ReservationCommitted(site string, res *models.Reservation) error
}

// TelegramNotifier sends manager notifications through a Telegram bot.
type TelegramNotifier struct {
	api      *tgbotapi.BotAPI
	managers []int64
	logger   *zerolog.Logger
}

// NewTelegramNotifier connects the bot. Manager chat ids come from config.
func NewTelegramNotifier(token string, managers []int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{api: api, managers: managers, logger: logger}, nil
}

func (n *TelegramNotifier) NewRequest(site string, req *models.Request) error {
	text := fmt.Sprintf("New stay request at %s\n%s (%s)\n%s – %s, %d nights, %d people\nID: %s",
		site, req.GuestName, req.Contact,
		req.Arrival.Format(models.DateFormatCZ), req.Departure.Format(models.DateFormatCZ),
		req.Nights, req.People, req.ReqID)
	return n.broadcast(text)
}

func (n *TelegramNotifier) ReservationCommitted(site string, res *models.Reservation) error {
	text := fmt.Sprintf("Reservation committed at %s\n%s, %d rooms, total %.0f\nID: %s",
		site, res.Header.GuestName, len(res.ActiveLines()), res.TotalPrice(), res.Header.ID)
	return n.broadcast(text)
}

func (n *TelegramNotifier) broadcast(text string) error {
	var lastErr error
	for _, chatID := range n.managers {
		if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Manager notification failed")
			lastErr = err
		}
	}
	return lastErr
}

// NopNotifier is used when no bot token is configured.
type NopNotifier struct{}

func (NopNotifier) NewRequest(string, *models.Request) error               { return nil }
func (NopNotifier) ReservationCommitted(string, *models.Reservation) error { return nil }
