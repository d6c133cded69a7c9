package service

import (
	"context"
	stderrors "errors"

	"giveaway-settlement/internal/common/errors"
	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/repository"

	"go.uber.org/zap"
)

// InitialEligibility is the is_eligible value of a new participant: true unless a quiz gates entry.
func InitialEligibility(g *models.Giveaway) bool {
	return !g.IsCategoryQuiz
}

// EligibilityEngine grants winner candidacy. Eligibility is never revoked.
type EligibilityEngine struct {
	participants repository.ParticipantRepository
	logger       *zap.Logger
}

func NewEligibilityEngine(participants repository.ParticipantRepository, logger *zap.Logger) *EligibilityEngine {
	return &EligibilityEngine{participants: participants, logger: logger}
}

// GrantEligibility marks the participant eligible. It reports whether the flag changed;
// granting twice is a no-op.
func (e *EligibilityEngine) GrantEligibility(ctx context.Context, giveawayID, accountNumber string) (bool, error) {
	changed, err := e.participants.MarkEligible(ctx, giveawayID, accountNumber)
	if err != nil {
		return false, errors.NewDatabaseError("mark participant eligible", err)
	}
	if changed {
		e.logger.Info("Participant became eligible",
			zap.String("giveaway_id", giveawayID),
			zap.String("account_number", accountNumber),
		)
		return true, nil
	}

	if _, err := e.participants.GetByAccount(ctx, giveawayID, accountNumber); err != nil {
		if stderrors.Is(err, repository.ErrParticipantNotFound) {
			return false, errors.New(errors.ErrCodeParticipantNotFound, "Participant not found").
				WithDetail("giveaway_id", giveawayID)
		}
		return false, errors.NewDatabaseError("get participant", err)
	}
	return false, nil
}
