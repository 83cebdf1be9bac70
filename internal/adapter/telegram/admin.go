package telegram

import (
	"context"
	"fmt"
	"strings"

	"promo-order-bot/internal/core/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// adminVerify forces an immediate on-chain check: /verify <order id>.
func (b *Bot) adminVerify(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	orderID, err := uuid.Parse(arg)
	if err != nil {
		b.reply(msg.Chat.ID, "Usage: `/verify <order id>`")
		return
	}

	status, err := b.verifier.ManualVerify(ctx, orderID)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Verification failed: %v", err))
		return
	}

	switch status {
	case domain.PaymentStatusConfirmed:
		b.reply(msg.Chat.ID, fmt.Sprintf("✅ Order `%s` is CONFIRMED.", shortID(orderID)))
	case domain.PaymentStatusFailed:
		b.reply(msg.Chat.ID, fmt.Sprintf("❌ Order `%s` is FAILED.", shortID(orderID)))
	default:
		b.reply(msg.Chat.ID, fmt.Sprintf("⏳ Order `%s` is still PENDING - the transaction didn't validate yet.", shortID(orderID)))
	}
}

func (b *Bot) adminPending(ctx context.Context, msg *tgbotapi.Message) {
	orders, err := b.orders.ListPending(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Could not list pending orders: %v", err))
		return
	}
	if len(orders) == 0 {
		b.reply(msg.Chat.ID, "No pending orders. 🎉")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d pending order(s)*\n\n", len(orders))
	for i := range orders {
		o := &orders[i]
		fmt.Fprintf(&sb, "`%s` - %s, %s on %s, $%s (created %s)\n",
			shortID(o.ID), o.Project.Name, o.Service.Type, o.Payment.Network,
			o.TotalPrice, o.CreatedAt.Format("Jan 2 15:04"),
		)
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) adminStats(ctx context.Context, msg *tgbotapi.Message) {
	stats, err := b.orders.Stats(ctx)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Could not load stats: %v", err))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"*Order stats*\n\nTotal: %d\nPending: %d\nConfirmed: %d\nFailed: %d\nRevenue: $%s",
		stats.TotalOrders, stats.Pending, stats.Confirmed, stats.Failed, stats.TotalRevenue,
	))
}

func (b *Bot) adminStatus(msg *tgbotapi.Message) {
	active := b.verifier.Active()
	if len(active) == 0 {
		b.reply(msg.Chat.ID, "No active verification tasks.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d active verification task(s)*\n\n", len(active))
	for _, id := range active {
		fmt.Fprintf(&sb, "`%s`\n", shortID(id))
	}
	b.reply(msg.Chat.ID, sb.String())
}

// listUserOrders shows a user their own orders: /orders.
func (b *Bot) listUserOrders(ctx context.Context, msg *tgbotapi.Message) {
	orders, err := b.orders.ListByUser(ctx, msg.From.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("listing user orders")
		b.reply(msg.Chat.ID, "Could not load your orders right now, try again later.")
		return
	}
	if len(orders) == 0 {
		b.reply(msg.Chat.ID, "You have no orders yet. Send /start to create one!")
		return
	}

	var sb strings.Builder
	sb.WriteString("*Your orders*\n\n")
	for i := range orders {
		o := &orders[i]
		fmt.Fprintf(&sb, "%s `%s` - %s, %s, $%s\n",
			statusEmoji(o.Payment.Status), shortID(o.ID), o.Project.Name, o.Service.Type, o.TotalPrice,
		)
	}
	b.reply(msg.Chat.ID, sb.String())
}

// resubmitTxnHash corrects the transaction hash on a user's own pending
// order: /resubmit <order id> <txn hash>. Verification restarts with a fresh
// attempt budget against the new hash.
func (b *Bot) resubmitTxnHash(ctx context.Context, msg *tgbotapi.Message) {
	idArg, hashArg, ok := strings.Cut(strings.TrimSpace(msg.CommandArguments()), " ")
	orderID, err := uuid.Parse(strings.TrimSpace(idArg))
	if !ok || err != nil {
		b.reply(msg.Chat.ID, "Usage: `/resubmit <order id> <txn hash>`")
		return
	}

	order, err := b.orders.ResubmitTxnHash(ctx, orderID, msg.From.ID, strings.TrimSpace(hashArg))
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Could not update the transaction hash: %v", err))
		return
	}

	b.verifier.Stop(order.ID)
	b.verifier.Start(order.ID, msg.Chat.ID)
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"🔁 Transaction hash updated for order `%s`. I'll verify the payment and let you know.",
		shortID(order.ID),
	))
}

func statusEmoji(status domain.PaymentStatus) string {
	switch status {
	case domain.PaymentStatusConfirmed:
		return "✅"
	case domain.PaymentStatusFailed:
		return "❌"
	default:
		return "⏳"
	}
}
