package telegram

import (
	"context"
	"fmt"

	"promo-order-bot/config"
	"promo-order-bot/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Bot runs the order-intake wizard and the operator commands over Telegram
// long polling.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      config.TelegramConfig
	sessions ports.SessionStore
	orders   ports.OrderService
	verifier ports.Verifier
	pricing  ports.Pricing
	wallets  ports.ChainOracle
	log      zerolog.Logger
}

func NewBot(
	api *tgbotapi.BotAPI,
	cfg config.TelegramConfig,
	sessions ports.SessionStore,
	orders ports.OrderService,
	verifier ports.Verifier,
	pricing ports.Pricing,
	wallets ports.ChainOracle,
	log zerolog.Logger,
) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		orders:   orders,
		verifier: verifier,
		pricing:  pricing,
		wallets:  wallets,
		log:      log.With().Str("component", "telegram_bot").Logger(),
	}
}

// Run polls for updates until the context ends.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.log.Info().Str("bot", b.api.Self.UserName).Msg("telegram bot polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("recovered while handling update")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleWizardInput(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.startWizard(ctx, msg)
	case "cancel":
		b.cancelWizard(ctx, msg)
	case "orders":
		b.listUserOrders(ctx, msg)
	case "resubmit":
		b.resubmitTxnHash(ctx, msg)
	case "help":
		b.reply(msg.Chat.ID, helpText(b.cfg.IsAdmin(userID)))

	// Operator commands.
	case "verify":
		b.adminOnly(msg, func() { b.adminVerify(ctx, msg) })
	case "pending":
		b.adminOnly(msg, func() { b.adminPending(ctx, msg) })
	case "stats":
		b.adminOnly(msg, func() { b.adminStats(ctx, msg) })
	case "status":
		b.adminOnly(msg, func() { b.adminStatus(msg) })

	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

func (b *Bot) adminOnly(msg *tgbotapi.Message, fn func()) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, "This command is restricted to operators.")
		return
	}
	fn()
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("sending message")
	}
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("sending message with keyboard")
	}
}

func helpText(isAdmin bool) string {
	text := "*Promo order bot*\n\n" +
		"/start - order a promotion\n" +
		"/orders - your orders and their payment status\n" +
		"/resubmit <order id> <txn hash> - correct the transaction hash on a pending order\n" +
		"/cancel - abandon the current order\n"
	if isAdmin {
		text += "\n*Operator commands*\n" +
			"/verify <order id> - force a payment check now\n" +
			"/pending - orders awaiting payment\n" +
			"/stats - order counters and revenue\n" +
			"/status - active verification tasks\n"
	}
	return text
}

func shortID(id fmt.Stringer) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
