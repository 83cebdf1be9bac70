package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Network identifies a supported blockchain.
type Network string

const (
	NetworkBSC      Network = "bsc"
	NetworkEthereum Network = "ethereum"
	NetworkBase     Network = "base"
)

// Valid reports whether the network is one of the supported chains.
func (n Network) Valid() bool {
	switch n {
	case NetworkBSC, NetworkEthereum, NetworkBase:
		return true
	}
	return false
}

// ServiceType represents the promotion service being purchased.
type ServiceType string

const (
	ServicePin    ServiceType = "pin"
	ServiceBuyBot ServiceType = "buybot"
	ServiceCombo  ServiceType = "combo"
)

// PaymentStatus represents the lifecycle state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// IsTerminal returns true if the status permits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusConfirmed || s == PaymentStatusFailed
}

// SocialLinks holds the project's public links collected by the wizard.
type SocialLinks struct {
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Website  string `json:"website,omitempty"`
}

// ProjectDetails describes the project being promoted.
type ProjectDetails struct {
	Name            string      `json:"name"`
	ContractAddress string      `json:"contract_address"`
	Blockchain      Network     `json:"blockchain"`
	Description     string      `json:"description,omitempty"`
	Links           SocialLinks `json:"links"`
}

// ServiceConfig describes what was ordered and for how long.
type ServiceConfig struct {
	Type          ServiceType `json:"type"`
	PinnedPosts   int         `json:"pinned_posts,omitempty"`
	DurationHours int         `json:"duration_hours"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
}

// PaymentInfo holds everything needed to verify the order's payment on chain.
type PaymentInfo struct {
	Network       Network         `json:"network"`
	Amount        decimal.Decimal `json:"amount"` // expected native-coin amount
	WalletAddress string          `json:"wallet_address"`
	TxnHash       *string         `json:"txn_hash,omitempty"`
	Status        PaymentStatus   `json:"status"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	FailedAt      *time.Time      `json:"failed_at,omitempty"`
}

// Order is the unit of work: one promotion purchase awaiting payment.
// Orders are never deleted; payment status moves PENDING -> CONFIRMED or
// PENDING -> FAILED exactly once.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserID     int64           `json:"user_id"`
	Username   string          `json:"username,omitempty"`
	Project    ProjectDetails  `json:"project"`
	Service    ServiceConfig   `json:"service"`
	Payment    PaymentInfo     `json:"payment"`
	TotalPrice decimal.Decimal `json:"total_price"`
	AdminNotes string          `json:"admin_notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Resolved returns true if the payment reached a terminal state.
func (o *Order) Resolved() bool {
	return o.Payment.Status.IsTerminal()
}

// HasTxnHash reports whether the user already submitted a transaction hash.
func (o *Order) HasTxnHash() bool {
	return o.Payment.TxnHash != nil && *o.Payment.TxnHash != ""
}
