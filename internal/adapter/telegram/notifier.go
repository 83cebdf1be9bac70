package telegram

import (
	"context"
	"fmt"

	"promo-order-bot/internal/core/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Notifier sends payment-resolution messages back to the originating chat.
// Delivery is best effort: send failures are logged and swallowed so they
// never block a verification task.
type Notifier struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, log zerolog.Logger) *Notifier {
	return &Notifier{
		api: api,
		log: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

func (n *Notifier) NotifyOrderResolved(_ context.Context, order *domain.Order, chatID int64) {
	if chatID <= 0 {
		return
	}

	var text string
	switch order.Payment.Status {
	case domain.PaymentStatusConfirmed:
		text = fmt.Sprintf(
			"✅ *Payment confirmed!*\n\nOrder `%s` is now active.\nProject: %s\nPaid: %s on %s\nService runs until %s.",
			order.ID, order.Project.Name, order.Payment.Amount, order.Payment.Network,
			order.Service.EndDate.Format("2006-01-02 15:04 MST"),
		)
	case domain.PaymentStatusFailed:
		hash := ""
		if order.HasTxnHash() {
			hash = fmt.Sprintf("\nTransaction: `%s`", *order.Payment.TxnHash)
		}
		text = fmt.Sprintf(
			"❌ *Payment verification failed.*\n\nWe could not confirm the payment of %s on %s for order `%s`.%s\n"+
				"If you did pay, contact support with your transaction hash.",
			order.Payment.Amount, order.Payment.Network, order.ID, hash,
		)
	default:
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warn().Err(err).
			Str("order_id", order.ID.String()).
			Int64("chat_id", chatID).
			Msg("sending resolution notification")
	}
}
