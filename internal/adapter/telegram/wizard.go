package telegram

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"promo-order-bot/internal/core/domain"
	"promo-order-bot/internal/core/ports"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	contractRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	txnHashRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

const startDateLayout = "2006-01-02 15:04"

func (b *Bot) startWizard(ctx context.Context, msg *tgbotapi.Message) {
	session := domain.NewSession(msg.From.ID, msg.Chat.ID, msg.From.UserName)
	if err := b.sessions.Save(ctx, session); err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("saving new session")
		b.reply(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}
	b.reply(msg.Chat.ID, "Let's set up your promotion! 🚀\n\nWhat is your *project name*?")
}

func (b *Bot) cancelWizard(ctx context.Context, msg *tgbotapi.Message) {
	if err := b.sessions.Clear(ctx, msg.From.ID); err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("clearing session")
	}
	b.reply(msg.Chat.ID, "Order cancelled. Send /start to begin again.")
}

// handleWizardInput routes free-text messages to the step the session is
// waiting on. Messages outside a session get a gentle nudge.
func (b *Bot) handleWizardInput(ctx context.Context, msg *tgbotapi.Message) {
	session, err := b.sessions.Get(ctx, msg.From.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("loading session")
		return
	}
	if session == nil {
		b.reply(msg.Chat.ID, "Send /start to order a promotion.")
		return
	}

	text := strings.TrimSpace(msg.Text)

	switch session.Step {
	case domain.StepProjectName:
		b.stepProjectName(ctx, session, text)
	case domain.StepSocialLink:
		b.stepSocialLink(ctx, session, text)
	case domain.StepContract:
		b.stepContract(ctx, session, text)
	case domain.StepDescription:
		b.stepDescription(ctx, session, text)
	case domain.StepPinnedPosts:
		b.stepPinnedPosts(ctx, session, text)
	case domain.StepStartDate:
		b.stepStartDate(ctx, session, text)
	case domain.StepTxnHash:
		b.stepTxnHash(ctx, session, text)
	case domain.StepBlockchain, domain.StepServiceType, domain.StepDuration,
		domain.StepPaymentNetwork, domain.StepPaymentConfirm:
		b.reply(session.ChatID, "Please use the buttons above to continue.")
	default:
		b.reply(session.ChatID, "Session got confused - send /start to begin again.")
	}
}

// handleCallback routes inline-button presses.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	// Acknowledge immediately so the button stops spinning.
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("acking callback")
	}

	// Inline-mode callbacks carry no message; the wizard only sends chat
	// keyboards, so there is nothing to route them to.
	if q.Message == nil {
		return
	}

	kind, value, ok := strings.Cut(q.Data, ":")
	if !ok {
		return
	}

	if kind == cbCancel {
		b.cancelWizard(ctx, &tgbotapi.Message{From: q.From, Chat: q.Message.Chat})
		return
	}

	session, err := b.sessions.Get(ctx, q.From.ID)
	if err != nil || session == nil {
		b.reply(q.Message.Chat.ID, "Session expired - send /start to begin again.")
		return
	}

	switch {
	case kind == cbBlockchain && session.Step == domain.StepBlockchain:
		b.stepBlockchain(ctx, session, value)
	case kind == cbService && session.Step == domain.StepServiceType:
		b.stepServiceType(ctx, session, value)
	case kind == cbDuration && session.Step == domain.StepDuration:
		b.stepDuration(ctx, session, value)
	case kind == cbNetwork && session.Step == domain.StepPaymentNetwork:
		b.stepPaymentNetwork(ctx, session, value)
	case kind == cbPaid && session.Step == domain.StepPaymentConfirm:
		b.stepPaymentConfirm(ctx, session)
	default:
		// Stale button from an earlier step; ignore.
	}
}

func (b *Bot) advance(ctx context.Context, session *domain.Session, next domain.Step) bool {
	session.Step = next
	if err := b.sessions.Save(ctx, session); err != nil {
		b.log.Error().Err(err).Int64("user_id", session.UserID).Msg("saving session")
		b.reply(session.ChatID, "Something went wrong, please resend that.")
		return false
	}
	return true
}

func (b *Bot) stepProjectName(ctx context.Context, session *domain.Session, text string) {
	if text == "" || len(text) > 100 {
		b.reply(session.ChatID, "Please send a project name (up to 100 characters).")
		return
	}
	session.Draft.ProjectName = text
	if b.advance(ctx, session, domain.StepSocialLink) {
		b.reply(session.ChatID, "Got it! Now send your main *social link* (Twitter/X, Telegram, or website).")
	}
}

func (b *Bot) stepSocialLink(ctx context.Context, session *domain.Session, text string) {
	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		b.reply(session.ChatID, "That doesn't look like a link. Please send a full URL starting with https://")
		return
	}

	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "twitter.com"), strings.Contains(host, "x.com"):
		session.Draft.Links.Twitter = text
	case strings.Contains(host, "t.me"), strings.Contains(host, "telegram.me"):
		session.Draft.Links.Telegram = text
	default:
		session.Draft.Links.Website = text
	}

	if b.advance(ctx, session, domain.StepContract) {
		b.reply(session.ChatID, "Now send the token *contract address* (0x...).")
	}
}

func (b *Bot) stepContract(ctx context.Context, session *domain.Session, text string) {
	if !contractRe.MatchString(text) {
		b.reply(session.ChatID, "Contract addresses are 0x followed by 40 hex characters. Try again.")
		return
	}
	session.Draft.ContractAddress = text
	if b.advance(ctx, session, domain.StepBlockchain) {
		b.replyWithKeyboard(session.ChatID, "Which *blockchain* is the token on?", networkKeyboard(cbBlockchain))
	}
}

func (b *Bot) stepBlockchain(ctx context.Context, session *domain.Session, value string) {
	network := domain.Network(value)
	if !network.Valid() {
		return
	}
	session.Draft.Blockchain = network
	if b.advance(ctx, session, domain.StepDescription) {
		b.reply(session.ChatID, "Send a short *description* of the project (or `-` to skip).")
	}
}

func (b *Bot) stepDescription(ctx context.Context, session *domain.Session, text string) {
	if text != "-" {
		if len(text) > 500 {
			b.reply(session.ChatID, "Please keep the description under 500 characters.")
			return
		}
		session.Draft.Description = text
	}
	if b.advance(ctx, session, domain.StepServiceType) {
		b.replyWithKeyboard(session.ChatID, "Choose a *service*:", serviceKeyboard())
	}
}

func (b *Bot) stepServiceType(ctx context.Context, session *domain.Session, value string) {
	serviceType := domain.ServiceType(value)
	switch serviceType {
	case domain.ServicePin, domain.ServiceBuyBot, domain.ServiceCombo:
	default:
		return
	}
	session.Draft.ServiceType = serviceType

	if serviceType == domain.ServiceBuyBot {
		// No pins to configure.
		if b.advance(ctx, session, domain.StepDuration) {
			b.replyWithKeyboard(session.ChatID, "For how long?", durationKeyboard())
		}
		return
	}
	if b.advance(ctx, session, domain.StepPinnedPosts) {
		b.reply(session.ChatID, "How many *pinned posts*? (1-10)")
	}
}

func (b *Bot) stepPinnedPosts(ctx context.Context, session *domain.Session, text string) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > 10 {
		b.reply(session.ChatID, "Please send a number between 1 and 10.")
		return
	}
	session.Draft.PinnedPosts = n
	if b.advance(ctx, session, domain.StepDuration) {
		b.replyWithKeyboard(session.ChatID, "For how long?", durationKeyboard())
	}
}

func (b *Bot) stepDuration(ctx context.Context, session *domain.Session, value string) {
	hours, err := strconv.Atoi(value)
	if err != nil || !b.pricing.ValidDuration(hours) {
		return
	}
	price, err := b.pricing.PriceFor(hours)
	if err != nil {
		return
	}
	session.Draft.DurationHours = hours
	session.Draft.TotalPrice = price
	if b.advance(ctx, session, domain.StepStartDate) {
		b.reply(session.ChatID, fmt.Sprintf(
			"%s\n\nWhen should it *start*? Send a date like `2026-09-15 18:00` (UTC), or `now`.",
			b.pricing.Breakdown(hours),
		))
	}
}

func (b *Bot) stepStartDate(ctx context.Context, session *domain.Session, text string) {
	var start time.Time
	if strings.EqualFold(text, "now") {
		start = time.Now().UTC()
	} else {
		parsed, err := time.Parse(startDateLayout, text)
		if err != nil {
			b.reply(session.ChatID, "Dates look like `2026-09-15 18:00` (UTC). Try again, or send `now`.")
			return
		}
		if parsed.Before(time.Now().UTC().Add(-time.Hour)) {
			b.reply(session.ChatID, "That date is in the past. Pick a future start, or send `now`.")
			return
		}
		start = parsed.UTC()
	}
	session.Draft.StartDate = start
	if b.advance(ctx, session, domain.StepPaymentNetwork) {
		b.replyWithKeyboard(session.ChatID, "Which network will you *pay* on?", networkKeyboard(cbNetwork))
	}
}

func (b *Bot) stepPaymentNetwork(ctx context.Context, session *domain.Session, value string) {
	network := domain.Network(value)
	if !network.Valid() {
		return
	}
	session.Draft.PaymentNetwork = network

	wallet, err := b.wallets.WalletAddress(network)
	if err != nil {
		b.log.Error().Err(err).Str("network", value).Msg("resolving deposit address")
		b.reply(session.ChatID, "That network is unavailable right now, please pick another.")
		return
	}

	if b.advance(ctx, session, domain.StepPaymentConfirm) {
		b.replyWithKeyboard(
			session.ChatID,
			paymentInstructions(session.Draft.TotalPrice, network, wallet),
			paymentConfirmKeyboard(),
		)
	}
}

func (b *Bot) stepPaymentConfirm(ctx context.Context, session *domain.Session) {
	if b.advance(ctx, session, domain.StepTxnHash) {
		b.reply(session.ChatID, "Great! Paste the *transaction hash* (0x...) so we can verify it.")
	}
}

func (b *Bot) stepTxnHash(ctx context.Context, session *domain.Session, text string) {
	if !txnHashRe.MatchString(text) {
		b.reply(session.ChatID, "Transaction hashes are 0x followed by 64 hex characters. Try again.")
		return
	}

	order, err := b.orders.Create(ctx, ports.CreateOrderRequest{
		UserID:   session.UserID,
		Username: session.Username,
		Draft:    session.Draft,
		TxnHash:  text,
	})
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", session.UserID).Msg("creating order")
		b.reply(session.ChatID, "Could not create the order, please try again in a moment.")
		return
	}

	if err := b.sessions.Clear(ctx, session.UserID); err != nil {
		b.log.Warn().Err(err).Int64("user_id", session.UserID).Msg("clearing finished session")
	}

	b.verifier.Start(order.ID, session.ChatID)

	b.reply(session.ChatID, fmt.Sprintf(
		"📝 Order `%s` created!\n\nWe're verifying your payment on chain - "+
			"you'll get a message here as soon as it confirms. Check progress any time with /orders.",
		order.ID,
	))
}
