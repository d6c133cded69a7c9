package service

import (
	"context"

	"giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/giveaway/models/dto"
	"giveaway-settlement/internal/platform/paystack"
)

type GiveawayService interface {
	Create(ctx context.Context, creatorID int64, req *dto.CreateGiveawayRequest) (*models.Giveaway, error)
	GetByID(ctx context.Context, id string) (*dto.GiveawayResponse, error)
	// CheckEntryPassword validates the password of a private giveaway before the join form.
	CheckEntryPassword(ctx context.Context, id, password string) error
	// Join runs the join preconditions, validates the bank account and creates the participant.
	// A quiz participant that is not yet eligible gets its existing row back so a new quiz can be
	// issued; any other repeat join is a duplicate.
	Join(ctx context.Context, userID int64, giveawayID string, req *dto.JoinRequest) (*models.Participant, *models.Giveaway, error)
}

// AccountResolver validates bank account details with the payment gateway.
type AccountResolver interface {
	ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*paystack.ResolvedAccount, error)
}
