package models

import "time"

// Participant is one entry in a giveaway. Unique per (giveaway, account number).
type Participant struct {
	ID            int64     `json:"id"`
	GiveawayID    string    `json:"giveaway_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	BankCode      string    `json:"bank_code"`
	AccountNumber string    `json:"account_number"`
	IsEligible    bool      `json:"is_eligible"`
	IsWinner      bool      `json:"is_winner"`
	IsPaid        bool      `json:"is_paid"`
	RecipientCode *string   `json:"recipient_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasRecipient reports whether the gateway issued a payout recipient code.
func (p *Participant) HasRecipient() bool {
	return p.RecipientCode != nil && *p.RecipientCode != ""
}
