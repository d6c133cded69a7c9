package repository

import (
	"context"
	"errors"

	"giveaway-settlement/internal/features/payments/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository interface {
	// Create stamps CreatedAt and UpdatedAt when they are zero.
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// Transition moves a transaction to `to` only if its current status is one of `from`.
	// It returns false when the predicate did not match (already transitioned).
	Transition(ctx context.Context, id string, from []models.TransactionStatus, to models.TransactionStatus, gatewayResponse *string) (bool, error)

	// SettleTopUp marks a funding transaction SUCCESS and moves its giveaway CREATED->ACTIVE atomically.
	// Both updates are predicate-gated, so repeating it is a no-op.
	SettleTopUp(ctx context.Context, id string, gatewayResponse *string) (bool, error)

	// SettleCredit marks a payout transaction SUCCESS and its participant paid atomically.
	SettleCredit(ctx context.Context, id string, gatewayResponse *string) (bool, error)

	// PayoutCredits returns, per participant of a giveaway, the credit transaction that decides
	// whether a payout may be submitted: any SUCCESS or PENDING credit wins over an INITIATED one,
	// which wins over FAILED or REVERSED. Ties go to the newest row.
	PayoutCredits(ctx context.Context, giveawayID string) (map[int64]models.Transaction, error)
}
