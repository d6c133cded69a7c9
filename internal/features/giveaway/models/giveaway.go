package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidParticipantsCount = errors.New("number of participants must be between 5 and 1000")
	ErrInvalidWinnersCount      = errors.New("number of winners must be between 1 and 200 and less than number of participants")
	ErrInvalidAmount            = errors.New("amount must be between 1000 and 10000000")
	ErrInvalidNetAmount         = errors.New("net amount must be less than amount")
)

const (
	MinParticipants = 5
	MaxParticipants = 1000
	MinWinners      = 1
	MaxWinners      = 200
)

var (
	MinAmount = decimal.NewFromInt(1000)
	MaxAmount = decimal.NewFromInt(10_000_000)
	// NetAmountRate is the share of the prize paid out to winners after fees.
	NetAmountRate = decimal.RequireFromString("0.96")
)

// GiveawayStatus represents the lifecycle state of a giveaway.
type GiveawayStatus string

const (
	GiveawayStatusCreated GiveawayStatus = "CREATED" // waiting for funding
	GiveawayStatusActive  GiveawayStatus = "ACTIVE"  // funded, accepting participants
	GiveawayStatusEnded   GiveawayStatus = "ENDED"   // end time passed, terminal
)

// DurationType is the unit of a giveaway duration.
type DurationType string

const (
	DurationMinutes DurationType = "MINUTES"
	DurationHours   DurationType = "HOURS"
	DurationDays    DurationType = "DAYS"
)

// EndTime returns now + length units of d.
func (d DurationType) EndTime(now time.Time, length int) (time.Time, error) {
	if length <= 0 {
		return time.Time{}, fmt.Errorf("duration length must be > 0")
	}
	switch d {
	case DurationMinutes:
		return now.Add(time.Duration(length) * time.Minute), nil
	case DurationHours:
		return now.Add(time.Duration(length) * time.Hour), nil
	case DurationDays:
		return now.AddDate(0, 0, length), nil
	default:
		return time.Time{}, fmt.Errorf("unknown duration type %q", d)
	}
}

// Giveaway is the aggregate owned by its creator.
type Giveaway struct {
	ID                   string          `json:"id"`
	CreatorID            int64           `json:"creator_id"`
	Title                string          `json:"title"`
	Description          string          `json:"description,omitempty"`
	Slug                 string          `json:"slug"`
	NumberOfParticipants int             `json:"number_of_participants"`
	NumberOfWinners      int             `json:"number_of_winners"`
	IsPublic             bool            `json:"is_public"`
	IsCreatorAnonymous   bool            `json:"is_creator_anonymous"`
	PasswordHash         *string         `json:"-"`
	IsCategoryQuiz       bool            `json:"is_category_quiz"`
	QuizCategory         int             `json:"quiz_category,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	NetAmount            decimal.Decimal `json:"net_amount"`
	Status               GiveawayStatus  `json:"status"`
	HasWinners           bool            `json:"has_winners"`
	PaidWinners          bool            `json:"paid_winners"`
	EndAt                time.Time       `json:"end_at"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// ComputeNetAmount returns amount * 0.96 rounded to two decimal places.
func ComputeNetAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(NetAmountRate).Round(2)
}

// Validate checks the creation invariants.
func (g *Giveaway) Validate() error {
	if g.NumberOfParticipants < MinParticipants || g.NumberOfParticipants > MaxParticipants {
		return ErrInvalidParticipantsCount
	}
	if g.NumberOfWinners < MinWinners || g.NumberOfWinners > MaxWinners || g.NumberOfWinners >= g.NumberOfParticipants {
		return ErrInvalidWinnersCount
	}
	if g.Amount.LessThan(MinAmount) || g.Amount.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	if !g.NetAmount.LessThan(g.Amount) {
		return ErrInvalidNetAmount
	}
	return nil
}

// HasEnded reports whether end time has passed at now.
func (g *Giveaway) HasEnded(now time.Time) bool {
	return !g.EndAt.After(now)
}

// RequiresPassword reports whether joining is gated by an entry password.
func (g *Giveaway) RequiresPassword() bool {
	return !g.IsPublic && g.PasswordHash != nil
}
