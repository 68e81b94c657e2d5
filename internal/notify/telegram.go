package notify

import (
	"context"
	"fmt"
	"strings"

	"turfbook/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender is the part of tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier forwards admin-relevant client events to a Telegram chat.
// With an empty token it only logs.
type TelegramNotifier struct {
	bot    Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		if logger != nil {
			logger.Warn().Msg("telegram bot token is empty, admin alerts disabled")
		}
		return &TelegramNotifier{chatID: chatID, logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// NewTelegramNotifierWithSender is used when the bot is constructed elsewhere.
func NewTelegramNotifierWithSender(bot Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

// Subscribe wires the notifier to the event bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.onBooking("*New booking*"))
	bus.Subscribe(events.EventBookingCancelled, n.onBooking("*Booking cancelled*"))
	bus.Subscribe(events.EventImagesUploaded, n.onTurf("Images uploaded"))
	bus.Subscribe(events.EventImagesDeleted, n.onTurf("Images deleted"))
	bus.Subscribe(events.EventTurfSaved, n.onTurf("Turf saved"))
	bus.Subscribe(events.EventTurfDeleted, n.onTurf("Turf deleted"))
}

func (n *TelegramNotifier) onBooking(title string) events.EventHandler {
	return func(event *events.Event) error {
		var p events.BookingEventPayload
		if err := event.Decode(&p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		text := fmt.Sprintf("%s\n\nBooking #%d\nTurf: %s\nDate: %s\nSlots: %s\nAmount: ₹%s",
			title, p.BookingID, escape(p.TurfName), escape(p.Date), escape(strings.Join(p.Slots, ", ")), p.TotalAmount.StringFixed(2))
		return n.send(context.Background(), text)
	}
}

func (n *TelegramNotifier) onTurf(title string) events.EventHandler {
	return func(event *events.Event) error {
		var p events.TurfEventPayload
		if err := event.Decode(&p); err != nil {
			return fmt.Errorf("decode %s: %w", event.Type, err)
		}
		text := fmt.Sprintf("*%s*\n\nTurf #%d %s", title, p.TurfID, escape(p.TurfName))
		if p.Count > 0 {
			text += fmt.Sprintf("\nImages: %d", p.Count)
		}
		return n.send(context.Background(), text)
	}
}

// escape quotes free text for ModeMarkdown.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func (n *TelegramNotifier) send(ctx context.Context, text string) error {
	if n.bot == nil {
		if n.logger != nil {
			n.logger.Debug().Str("text", text).Msg("notification skipped (bot disabled)")
		}
		return nil
	}
	if n.chatID == 0 {
		if n.logger != nil {
			n.logger.Debug().Str("text", text).Msg("notification skipped (no chat_id)")
		}
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		if n.logger != nil {
			n.logger.Error().Err(err).Int64("chat_id", n.chatID).Msg("failed to send telegram notification")
		}
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}
