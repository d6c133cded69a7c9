package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the reconciliation state of a gateway transaction.
type TransactionStatus string

const (
	TransactionStatusInitiated TransactionStatus = "INITIATED"
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusReversed  TransactionStatus = "REVERSED"
)

// IsTerminal reports whether no further transition is driven by verification or webhooks.
// SUCCESS may still be reversed externally.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusFailed || s == TransactionStatusReversed
}

// Narration prefixes distinguish funding from payout transactions.
const (
	NarrationTopUpPrefix  = "top_up_"
	NarrationCreditPrefix = "credit_"
)

// Kind is the narration kind used as a metrics label.
type Kind string

const (
	KindTopUp  Kind = "top_up"
	KindCredit Kind = "credit"
	KindOther  Kind = "other"
)

// Transaction mirrors one gateway charge (top-up) or transfer (credit).
// ID is the gateway reference.
type Transaction struct {
	ID              string            `json:"id"`
	GiveawayID      string            `json:"giveaway_id"`
	ParticipantID   *int64            `json:"participant_id,omitempty"`
	Narration       string            `json:"narration"`
	Amount          decimal.Decimal   `json:"amount"`
	Status          TransactionStatus `json:"status"`
	GatewayResponse *string           `json:"gateway_response,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func TopUpNarration(reference string) string {
	return NarrationTopUpPrefix + reference
}

func CreditNarration(reference string) string {
	return NarrationCreditPrefix + reference
}

func (t *Transaction) IsTopUp() bool {
	return strings.HasPrefix(t.Narration, NarrationTopUpPrefix)
}

func (t *Transaction) IsCredit() bool {
	return strings.HasPrefix(t.Narration, NarrationCreditPrefix)
}

func (t *Transaction) Kind() Kind {
	switch {
	case t.IsTopUp():
		return KindTopUp
	case t.IsCredit():
		return KindCredit
	default:
		return KindOther
	}
}
