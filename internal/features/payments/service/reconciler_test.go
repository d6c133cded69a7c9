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
)

func fundingFixture(t *testing.T) (*memstore.Store, *fakeGateway) {
	t.Helper()
	store := memstore.New()
	store.AddGiveaway(testGiveaway("g1", gmodels.GiveawayStatusCreated))
	addTopUp(store, "ref-top", "g1", models.TransactionStatusInitiated)
	return store, newFakeGateway()
}

func TestVerify_LiveModeSettlesTopUp(t *testing.T) {
	store, gw := fundingFixture(t)
	gw.verify["ref-top"] = &paystack.Verification{Reference: "ref-top", Status: paystack.StatusSuccess, GatewayResponse: "Approved"}

	out, err := newReconciler(store, gw, true).Verify(context.Background(), "ref-top")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusSuccess, out.Status)
	assert.Equal(t, "g1", out.GiveawayID)
	assert.Equal(t, msgTopUpSuccess, out.Message)
	assert.Equal(t, gmodels.GiveawayStatusActive, store.Giveaway("g1").Status)
	txn := store.Transaction("ref-top")
	require.NotNil(t, txn.GatewayResponse)
	assert.Equal(t, "Approved", *txn.GatewayResponse)
}

func TestVerify_TestModeWaitsForWebhook(t *testing.T) {
	store, gw := fundingFixture(t)
	gw.verify["ref-top"] = &paystack.Verification{Reference: "ref-top", Status: paystack.StatusSuccess}
	r := newReconciler(store, gw, false)

	out, err := r.Verify(context.Background(), "ref-top")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, out.Status)
	assert.Equal(t, msgTopUpPending, out.Message)
	assert.Equal(t, gmodels.GiveawayStatusCreated, store.Giveaway("g1").Status)

	ev := &paystack.Event{Event: paystack.EventChargeSuccess, Data: paystack.EventData{Reference: "ref-top", Status: "success"}}
	require.NoError(t, r.HandleWebhook(context.Background(), ev))

	assert.Equal(t, models.TransactionStatusSuccess, store.Transaction("ref-top").Status)
	assert.Equal(t, gmodels.GiveawayStatusActive, store.Giveaway("g1").Status)
}

func TestVerify_Failed(t *testing.T) {
	store, gw := fundingFixture(t)
	gw.verify["ref-top"] = &paystack.Verification{Reference: "ref-top", Status: paystack.StatusFailed, GatewayResponse: "Declined"}

	out, err := newReconciler(store, gw, true).Verify(context.Background(), "ref-top")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusFailed, out.Status)
	assert.Equal(t, msgTopUpFailed, out.Message)
	assert.Equal(t, "Declined", *store.Transaction("ref-top").GatewayResponse)
	assert.Equal(t, gmodels.GiveawayStatusCreated, store.Giveaway("g1").Status)
}

func TestVerify_StillProcessingLeavesStateUnchanged(t *testing.T) {
	store, gw := fundingFixture(t)

	out, err := newReconciler(store, gw, true).Verify(context.Background(), "ref-top")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusInitiated, out.Status)
	assert.Equal(t, msgTopUpPending, out.Message)
}

func TestVerify_TerminalSkipsGateway(t *testing.T) {
	store, gw := fundingFixture(t)
	addTopUp(store, "ref-done", "g1", models.TransactionStatusFailed)

	out, err := newReconciler(store, gw, true).Verify(context.Background(), "ref-done")
	require.NoError(t, err)

	assert.Equal(t, models.TransactionStatusFailed, out.Status)
	assert.Zero(t, gw.verifyCount())
}

func TestVerify_UnknownReference(t *testing.T) {
	store, gw := fundingFixture(t)

	_, err := newReconciler(store, gw, true).Verify(context.Background(), "nope")
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransactionNotFound))
	assert.Zero(t, gw.verifyCount())
}

func TestVerify_TransportErrorIsRetryable(t *testing.T) {
	store, gw := fundingFixture(t)
	gw.verifyErr = &paystack.TransportError{Op: "verify", StatusCode: 502, Message: "bad gateway"}

	_, err := newReconciler(store, gw, true).Verify(context.Background(), "ref-top")
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsTransport())
	assert.True(t, paystack.IsTransport(err))
	assert.Equal(t, models.TransactionStatusInitiated, store.Transaction("ref-top").Status)
}

func TestHandleWebhook_ChargeSuccessIsIdempotent(t *testing.T) {
	store, gw := fundingFixture(t)
	r := newReconciler(store, gw, true)
	ev := &paystack.Event{Event: paystack.EventChargeSuccess, Data: paystack.EventData{Reference: "ref-top", GatewayResponse: "Successful"}}

	require.NoError(t, r.HandleWebhook(context.Background(), ev))
	require.NoError(t, r.HandleWebhook(context.Background(), ev))

	assert.Equal(t, models.TransactionStatusSuccess, store.Transaction("ref-top").Status)
	assert.Equal(t, gmodels.GiveawayStatusActive, store.Giveaway("g1").Status)
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	store, gw := fundingFixture(t)
	ev := &paystack.Event{Event: paystack.EventChargeSuccess, Data: paystack.EventData{Reference: "missing"}}

	err := newReconciler(store, gw, true).HandleWebhook(context.Background(), ev)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransactionNotFound))
}

func TestHandleWebhook_IgnoresUnknownEvents(t *testing.T) {
	store, gw := fundingFixture(t)
	ev := &paystack.Event{Event: "subscription.create", Data: paystack.EventData{Reference: "ref-top"}}

	assert.NoError(t, newReconciler(store, gw, true).HandleWebhook(context.Background(), ev))
	assert.Equal(t, models.TransactionStatusInitiated, store.Transaction("ref-top").Status)
}

func TestHandleWebhook_TransferLifecycle(t *testing.T) {
	store := memstore.New()
	store.AddGiveaway(testGiveaway("g1", gmodels.GiveawayStatusEnded))
	ids := addWinners(store, "g1", 1, true)
	addCredit(store, "ref-credit", "g1", ids[0], models.TransactionStatusPending)
	r := newReconciler(store, newFakeGateway(), true)
	ctx := context.Background()

	ev := func(name string) *paystack.Event {
		return &paystack.Event{Event: name, Data: paystack.EventData{Reference: "ref-credit"}}
	}

	require.NoError(t, r.HandleWebhook(ctx, ev(paystack.EventTransferSuccess)))
	assert.Equal(t, models.TransactionStatusSuccess, store.Transaction("ref-credit").Status)
	assert.True(t, store.Participant(ids[0]).IsPaid)

	// a late failure does not undo a settled payout
	require.NoError(t, r.HandleWebhook(ctx, ev(paystack.EventTransferFailed)))
	assert.Equal(t, models.TransactionStatusSuccess, store.Transaction("ref-credit").Status)

	require.NoError(t, r.HandleWebhook(ctx, ev(paystack.EventTransferReversed)))
	assert.Equal(t, models.TransactionStatusReversed, store.Transaction("ref-credit").Status)
	assert.True(t, store.Participant(ids[0]).IsPaid)
}

func TestHandleWebhook_TransferFailed(t *testing.T) {
	store := memstore.New()
	store.AddGiveaway(testGiveaway("g1", gmodels.GiveawayStatusEnded))
	ids := addWinners(store, "g1", 1, true)
	addCredit(store, "ref-credit", "g1", ids[0], models.TransactionStatusInitiated)

	ev := &paystack.Event{Event: paystack.EventTransferFailed, Data: paystack.EventData{Reference: "ref-credit", Reason: "Account closed"}}
	require.NoError(t, newReconciler(store, newFakeGateway(), true).HandleWebhook(context.Background(), ev))

	txn := store.Transaction("ref-credit")
	assert.Equal(t, models.TransactionStatusFailed, txn.Status)
	require.NotNil(t, txn.GatewayResponse)
	assert.Equal(t, "Account closed", *txn.GatewayResponse)
	assert.False(t, store.Participant(ids[0]).IsPaid)
}

func TestApplyTransferEvent_IgnoresTopUps(t *testing.T) {
	store, gw := fundingFixture(t)

	changed, err := newReconciler(store, gw, true).ApplyTransferEvent(context.Background(), "ref-top", paystack.StatusSuccess, "")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.TransactionStatusInitiated, store.Transaction("ref-top").Status)
}

func TestSettle_StoreFailure(t *testing.T) {
	store, gw := fundingFixture(t)
	store.Errors["SettleTopUp"] = assert.AnError
	ev := &paystack.Event{Event: paystack.EventChargeSuccess, Data: paystack.EventData{Reference: "ref-top"}}

	err := newReconciler(store, gw, true).HandleWebhook(context.Background(), ev)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseError))
	assert.Equal(t, models.TransactionStatusInitiated, store.Transaction("ref-top").Status)
}
