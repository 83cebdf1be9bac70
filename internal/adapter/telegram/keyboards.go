package telegram

import (
	"fmt"

	"promo-order-bot/internal/core/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data is "<kind>:<value>"; the wizard switches on kind.
const (
	cbBlockchain = "blockchain"
	cbService    = "service"
	cbDuration   = "duration"
	cbNetwork    = "network"
	cbPaid       = "paid"
	cbCancel     = "cancel"
)

func cb(kind, value string) string {
	return kind + ":" + value
}

func networkKeyboard(kind string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("BSC", cb(kind, string(domain.NetworkBSC))),
			tgbotapi.NewInlineKeyboardButtonData("Ethereum", cb(kind, string(domain.NetworkEthereum))),
			tgbotapi.NewInlineKeyboardButtonData("Base", cb(kind, string(domain.NetworkBase))),
		),
	)
}

func serviceKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📌 Pinned post", cb(cbService, string(domain.ServicePin))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Buy bot", cb(cbService, string(domain.ServiceBuyBot))),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔥 Combo (pin + buy bot)", cb(cbService, string(domain.ServiceCombo))),
		),
	)
}

func durationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("48h - $50", cb(cbDuration, "48")),
			tgbotapi.NewInlineKeyboardButtonData("96h - $100", cb(cbDuration, "96")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("144h - $150", cb(cbDuration, "144")),
			tgbotapi.NewInlineKeyboardButtonData("1 week - $150", cb(cbDuration, "168")),
		),
	)
}

func paymentConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I've sent the payment", cb(cbPaid, "yes")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel order", cb(cbCancel, "order")),
		),
	)
}

func paymentInstructions(amount fmt.Stringer, network domain.Network, wallet string) string {
	return fmt.Sprintf(
		"*Payment*\n\nSend exactly *%s* in the native coin on *%s* to:\n\n`%s`\n\n"+
			"Press the button below once the transfer is sent, then paste the transaction hash.",
		amount, network, wallet,
	)
}
