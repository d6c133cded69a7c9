package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-settlement/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound     = errors.New("giveaway not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrDuplicateParticipant = errors.New("participant with this account number already joined")
	ErrGiveawayFull         = errors.New("giveaway reached its participant limit")
)

// WinnerSelectionTx is a unit of work holding a row lock on one giveaway.
// Nothing is visible to other callers until Commit.
type WinnerSelectionTx interface {
	Giveaway() *models.Giveaway
	HasSuccessfulTopUp(ctx context.Context) (bool, error)
	EligibleParticipants(ctx context.Context) ([]models.Participant, error)
	// MarkWinners sets is_winner on the given participants and has_winners on the giveaway.
	MarkWinners(ctx context.Context, participantIDs []int64) error
	Commit() error
	Rollback() error
}

type GiveawayRepository interface {
	Create(ctx context.Context, g *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)

	// ExpireEnded moves every non-ENDED giveaway with end_at <= now to ENDED in one statement.
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)

	// ListAwaitingWinners returns ids of ENDED giveaways with has_winners=false.
	ListAwaitingWinners(ctx context.Context) ([]string, error)
	BeginWinnerSelection(ctx context.Context, id string) (WinnerSelectionTx, error)

	// ListAwaitingPayout returns ENDED giveaways with has_winners=true and paid_winners=false.
	ListAwaitingPayout(ctx context.Context) ([]models.Giveaway, error)
	// MarkPaidWhenSettled sets paid_winners on giveaways whose winners are all paid.
	MarkPaidWhenSettled(ctx context.Context) (int64, error)
}

type ParticipantRepository interface {
	// Create returns ErrDuplicateParticipant when the account number already joined the giveaway
	// and ErrGiveawayFull when number_of_participants is reached. The capacity check and insert
	// hold a lock on the giveaway row.
	Create(ctx context.Context, p *models.Participant) error
	CountByGiveaway(ctx context.Context, giveawayID string) (int, error)
	GetByAccount(ctx context.Context, giveawayID, accountNumber string) (*models.Participant, error)
	// MarkEligible flips is_eligible false->true; returns false if it was already set.
	MarkEligible(ctx context.Context, giveawayID, accountNumber string) (bool, error)

	ListWinners(ctx context.Context, giveawayID string) ([]models.Participant, error)
	ListWinnersWithoutRecipient(ctx context.Context, limit int) ([]models.Participant, error)
	SetRecipientCode(ctx context.Context, participantID int64, code string) error
}
