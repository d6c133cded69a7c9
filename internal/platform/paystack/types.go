package paystack

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	Currency       = "NGN"
	TransferSource = "balance"
	RecipientNuban = "nuban"
)

// Gateway status strings for charges and transfers.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Webhook event names.
const (
	EventChargeSuccess    = "charge.success"
	EventTransferSuccess  = "transfer.success"
	EventTransferFailed   = "transfer.failed"
	EventTransferReversed = "transfer.reversed"
)

// envelope is the common response shape of every API call.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ToMinorUnits converts naira to kobo, dropping any fraction of a kobo.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Truncate(0).IntPart()
}

// FromMinorUnits converts kobo to naira.
func FromMinorUnits(kobo int64) decimal.Decimal {
	return decimal.New(kobo, -2)
}

type InitializeRequest struct {
	Reference string
	Amount    decimal.Decimal
	Email     string
}

type initializePayload struct {
	Reference   string   `json:"reference"`
	Amount      string   `json:"amount"`
	Currency    string   `json:"currency"`
	Channels    []string `json:"channels"`
	CallbackURL string   `json:"callback_url"`
	Email       string   `json:"email"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Verification is the gateway view of a charge.
type Verification struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	Amount          int64  `json:"amount"`
}

type Recipient struct {
	Name          string
	AccountNumber string
	BankCode      string
}

type recipientPayload struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type Transfer struct {
	Reference string
	Recipient string
	Amount    decimal.Decimal
}

type transferItem struct {
	Reference string `json:"reference"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
}

type bulkTransferPayload struct {
	Source    string         `json:"source"`
	Currency  string         `json:"currency"`
	Transfers []transferItem `json:"transfers"`
}

// TransferResult is the per-transfer acknowledgement of a bulk submission.
type TransferResult struct {
	Reference    string `json:"reference"`
	Recipient    string `json:"recipient"`
	Amount       int64  `json:"amount"`
	TransferCode string `json:"transfer_code"`
	Status       string `json:"status"`
}

type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Event is an inbound webhook notification.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Reference       string `json:"reference"`
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	Reason          string `json:"reason"`
	Amount          int64  `json:"amount"`
}

// ParseEvent decodes a webhook body. A body without an event name or reference is rejected.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, &TransportError{Op: "webhook", Err: err}
	}
	if ev.Event == "" || ev.Data.Reference == "" {
		return nil, &TransportError{Op: "webhook", Message: "event or reference missing"}
	}
	return &ev, nil
}

// ResponseText returns the free-text outcome reported for an event.
func (d EventData) ResponseText() string {
	if d.GatewayResponse != "" {
		return d.GatewayResponse
	}
	return d.Reason
}
