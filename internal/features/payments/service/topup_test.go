package service

import (
	"context"
	"testing"

	"giveaway-settlement/internal/common/errors"
	gmodels "giveaway-settlement/internal/features/giveaway/models"
	"giveaway-settlement/internal/features/payments/models"
	"giveaway-settlement/internal/platform/paystack"
	"giveaway-settlement/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTopUpFixture(status gmodels.GiveawayStatus) (*memstore.Store, *fakeGateway, TopUpService) {
	store := memstore.New()
	store.AddGiveaway(testGiveaway("g1", status))
	gw := newFakeGateway()
	return store, gw, NewTopUpService(store.Giveaways(), store.Transactions(), gw, zap.NewNop())
}

func TestInitiateTopUp(t *testing.T) {
	store, gw, svc := newTopUpFixture(gmodels.GiveawayStatusCreated)

	res, err := svc.Initiate(context.Background(), 1, "creator@example.com", "g1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Reference)
	assert.Contains(t, res.AuthorizationURL, res.Reference)
	require.Len(t, gw.initialized, 1)
	assert.Equal(t, "10000", gw.initialized[0].Amount.String())
	assert.Equal(t, "creator@example.com", gw.initialized[0].Email)

	txn := store.Transaction(res.Reference)
	assert.Equal(t, models.TransactionStatusInitiated, txn.Status)
	assert.True(t, txn.IsTopUp())
	assert.Equal(t, "g1", txn.GiveawayID)
	assert.Nil(t, txn.ParticipantID)
	assert.False(t, txn.CreatedAt.IsZero())
}

func TestInitiateTopUp_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  gmodels.GiveawayStatus
		userID  int64
		email   string
		id      string
		wantErr errors.ErrorCode
	}{
		{"not owner", gmodels.GiveawayStatusCreated, 2, "a@b.co", "g1", errors.ErrCodeNotOwner},
		{"already funded", gmodels.GiveawayStatusActive, 1, "a@b.co", "g1", errors.ErrCodeConflict},
		{"unknown giveaway", gmodels.GiveawayStatusCreated, 1, "a@b.co", "nope", errors.ErrCodeGiveawayNotFound},
		{"bad email", gmodels.GiveawayStatusCreated, 1, "not-an-email", "g1", errors.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, gw, svc := newTopUpFixture(tt.status)

			_, err := svc.Initiate(context.Background(), tt.userID, tt.email, tt.id)
			assert.True(t, errors.HasCode(err, tt.wantErr), "got %v", err)
			assert.Empty(t, gw.initialized)
			assert.Empty(t, store.TransactionsOf("g1"))
		})
	}
}

func TestInitiateTopUp_GatewayFailure(t *testing.T) {
	store, gw, svc := newTopUpFixture(gmodels.GiveawayStatusCreated)
	gw.initErr = &paystack.TransportError{Op: "initialize", StatusCode: 500}

	_, err := svc.Initiate(context.Background(), 1, "creator@example.com", "g1")
	assert.True(t, errors.HasCode(err, errors.ErrCodeExternalAPI))
	assert.Empty(t, store.TransactionsOf("g1"))
}
