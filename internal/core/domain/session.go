package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Step identifies the wizard step a user session is waiting on.
// Each step accepts exactly one kind of input; the wizard switches
// exhaustively over these values.
type Step string

const (
	StepProjectName    Step = "project_name"
	StepSocialLink     Step = "social_link"
	StepContract       Step = "contract_address"
	StepBlockchain     Step = "blockchain"
	StepDescription    Step = "description"
	StepServiceType    Step = "service_type"
	StepPinnedPosts    Step = "pinned_posts"
	StepDuration       Step = "duration"
	StepStartDate      Step = "start_date"
	StepPaymentNetwork Step = "payment_network"
	StepPaymentConfirm Step = "payment_confirm"
	StepTxnHash        Step = "txn_hash"
)

// OrderDraft accumulates wizard input. Fields are only meaningful once the
// session has passed the step that fills them.
type OrderDraft struct {
	ProjectName     string          `json:"project_name,omitempty"`
	Links           SocialLinks     `json:"links"`
	ContractAddress string          `json:"contract_address,omitempty"`
	Blockchain      Network         `json:"blockchain,omitempty"`
	Description     string          `json:"description,omitempty"`
	ServiceType     ServiceType     `json:"service_type,omitempty"`
	PinnedPosts     int             `json:"pinned_posts,omitempty"`
	DurationHours   int             `json:"duration_hours,omitempty"`
	StartDate       time.Time       `json:"start_date,omitempty"`
	PaymentNetwork  Network         `json:"payment_network,omitempty"`
	TotalPrice      decimal.Decimal `json:"total_price"`
}

// Session is the ephemeral wizard state for one Telegram user.
type Session struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	ChatID    int64      `json:"chat_id"`
	Step      Step       `json:"step"`
	Draft     OrderDraft `json:"draft"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewSession starts a wizard session at the first step.
func NewSession(userID, chatID int64, username string) *Session {
	return &Session{
		UserID:    userID,
		Username:  username,
		ChatID:    chatID,
		Step:      StepProjectName,
		CreatedAt: time.Now().UTC(),
	}
}
