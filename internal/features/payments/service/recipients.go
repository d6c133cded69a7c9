package service

import (
	"context"

	"giveaway-settlement/internal/common/errors"
	grepo "giveaway-settlement/internal/features/giveaway/repository"
	"giveaway-settlement/internal/platform/paystack"

	"go.uber.org/zap"
)

const defaultRecipientBatch = 100

// RecipientRegistrar issues gateway recipient codes for winners so they can be paid.
type RecipientRegistrar struct {
	participants grepo.ParticipantRepository
	gateway      Gateway
	batchSize    int
	logger       *zap.Logger
}

func NewRecipientRegistrar(participants grepo.ParticipantRepository, gateway Gateway, batchSize int, logger *zap.Logger) *RecipientRegistrar {
	if batchSize <= 0 {
		batchSize = defaultRecipientBatch
	}
	return &RecipientRegistrar{
		participants: participants,
		gateway:      gateway,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Run registers one batch of unpaid winners without a recipient code.
// Gateway failures leave the winner for the next run.
func (r *RecipientRegistrar) Run(ctx context.Context) (int, error) {
	winners, err := r.participants.ListWinnersWithoutRecipient(ctx, r.batchSize)
	if err != nil {
		return 0, errors.NewDatabaseError("list winners without recipient", err)
	}

	registered := 0
	for _, w := range winners {
		if ctx.Err() != nil {
			return registered, ctx.Err()
		}
		code, ok := r.gateway.CreateTransferRecipient(ctx, paystack.Recipient{
			Name:          w.Name,
			AccountNumber: w.AccountNumber,
			BankCode:      w.BankCode,
		})
		if !ok {
			continue
		}
		if err := r.participants.SetRecipientCode(ctx, w.ID, code); err != nil {
			r.logger.Error("Failed to store recipient code",
				zap.Int64("participant_id", w.ID),
				zap.Error(err),
			)
			continue
		}
		registered++
	}

	if registered > 0 {
		r.logger.Info("Registered transfer recipients", zap.Int("count", registered), zap.Int("pending", len(winners)-registered))
	}
	return registered, nil
}
